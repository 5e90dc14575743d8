package model

import "time"

// Config is the full runtime configuration. It is constructed once at
// process start and passed by reference into component constructors;
// nothing reads configuration ad hoc mid-pipeline.
type Config struct {
	Primary      PrimaryConfig     `yaml:"primary"`
	Fallback     FallbackConfig    `yaml:"fallback"`
	Engine       EngineConfig      `yaml:"engine"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting"`
	Output       OutputConfig      `yaml:"output"`
}

// PrimaryConfig configures the networked primary record store.
type PrimaryConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
	// Timeout bounds every primary lookup so failover triggers promptly
	// instead of hanging the request.
	Timeout time.Duration `yaml:"timeout"`
}

// FallbackConfig configures the local filesystem-backed fallback store.
type FallbackConfig struct {
	Dir string `yaml:"dir"`
	// TableTTL controls how long parsed registry and alert tables are kept
	// before rereading the files. Evidence bundles are never cached.
	TableTTL time.Duration `yaml:"table_ttl"`
}

// EngineConfig configures the external analysis engine.
type EngineConfig struct {
	Provider   string        `yaml:"provider"`
	Model      string        `yaml:"model"`
	APIKey     string        `yaml:"-"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxTokens  int           `yaml:"max_tokens"`
	HTTPProxy  string        `yaml:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy"`
}

// ConcurrencyConfig configures batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// RateLimitConfig throttles calls to the analysis engine.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
	Pretty  bool `yaml:"pretty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Primary: PrimaryConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "vira:",
			Timeout:   3 * time.Second,
		},
		Fallback: FallbackConfig{
			Dir:      "./data",
			TableTTL: time.Minute,
		},
		Engine: EngineConfig{
			Provider:  "openai",
			Timeout:   60 * time.Second,
			MaxTokens: 1024,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Output: OutputConfig{
			Pretty: true,
		},
	}
}
