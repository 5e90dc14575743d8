package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/veraengine/vira/internal/model"
	"github.com/veraengine/vira/internal/pipeline"
)

var (
	outJSON       string
	timeout       time.Duration
	redisAddr     string
	dataDir       string
	engineName    string
	engineModel   string
	engineTimeout time.Duration
	noPretty      bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <token-id>",
	Short: "Analyze the risk profile of a single asset",
	Long: `Analyze aggregates three data sources for one asset token:
- Token metadata linking the asset to a land registry record
- The registry record and gazette alerts naming its owner
- The deed of assignment document

The evidence is submitted to the analysis engine and the verdict is
classified into a final report with status Success, Not Found,
Partial Success, or Failed.

Example:
  vira analyze NGA-LAG-001
  vira analyze NGA-LAG-001 --json report.json
  vira analyze NGA-LAG-001 --engine anthropic --engine-model claude-3-5-sonnet-20241022`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "write the final report to this path instead of stdout")
	analyzeCmd.Flags().BoolVar(&noPretty, "no-pretty", false, "emit compact JSON")

	// Store flags
	analyzeCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "primary store address (default from config, localhost:6379)")
	analyzeCmd.Flags().StringVar(&dataDir, "data-dir", "", "fallback dataset directory (default from config, ./data)")

	// Engine flags
	analyzeCmd.Flags().StringVar(&engineName, "engine", "openai", "analysis engine provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&engineModel, "engine-model", "", "analysis engine model name")
	analyzeCmd.Flags().DurationVar(&engineTimeout, "engine-timeout", 60*time.Second, "upper bound on one engine call; expiry fails the request")

	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	tokenID := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	analyzer, err := pipeline.NewAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	report := analyzer.Analyze(ctx, tokenID)

	renderer := pipeline.NewRenderer(cfg.Output.Pretty)
	if err := renderer.RenderJSON(report, outJSON); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if outJSON != "" {
		renderer.RenderSummary(report, os.Stderr)
	}

	return nil
}

// effectiveConfig layers the config file and environment over the built-in
// defaults. Flags are applied on top by buildConfig; this is also what
// `config show` renders.
func effectiveConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("primary.addr"); v != "" {
		cfg.Primary.Addr = v
	}
	if v := viper.GetString("primary.password"); v != "" {
		cfg.Primary.Password = v
	}
	if v := viper.GetDuration("primary.timeout"); v > 0 {
		cfg.Primary.Timeout = v
	}
	if v := viper.GetString("fallback.dir"); v != "" {
		cfg.Fallback.Dir = v
	}
	if v := viper.GetDuration("fallback.table_ttl"); v > 0 {
		cfg.Fallback.TableTTL = v
	}
	if v := viper.GetString("engine.provider"); v != "" {
		cfg.Engine.Provider = v
	}
	if v := viper.GetString("engine.model"); v != "" {
		cfg.Engine.Model = v
	}
	if v := viper.GetDuration("engine.timeout"); v > 0 {
		cfg.Engine.Timeout = v
	}
	if v := viper.GetInt("engine.max_tokens"); v > 0 {
		cfg.Engine.MaxTokens = v
	}
	if v := viper.GetFloat64("rate_limiting.requests_per_second"); v > 0 {
		cfg.RateLimiting.RequestsPerSecond = v
	}
	if v := viper.GetInt("rate_limiting.burst_size"); v > 0 {
		cfg.RateLimiting.BurstSize = v
	}
	if v := viper.GetInt("concurrency.workers"); v > 0 {
		cfg.Concurrency.Workers = v
	}

	return cfg
}

// buildConfig assembles the runtime configuration once, from defaults, the
// config file, environment, and flags, before any component is constructed.
// Engine flags override the file/env layer only when explicitly set, so the
// documented hierarchy holds despite their non-empty defaults.
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := effectiveConfig()

	flags := cmd.Flags()
	if redisAddr != "" {
		cfg.Primary.Addr = redisAddr
	}
	if dataDir != "" {
		cfg.Fallback.Dir = dataDir
	}
	if flags.Changed("engine") {
		cfg.Engine.Provider = engineName
	}
	if flags.Changed("engine-model") {
		cfg.Engine.Model = engineModel
	}
	if flags.Changed("engine-timeout") {
		cfg.Engine.Timeout = engineTimeout
	}
	cfg.Output.Verbose = verbose
	cfg.Output.Pretty = !noPretty

	if err := loadEngineCredentials(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEngineCredentials pulls provider credentials from the environment.
func loadEngineCredentials(cfg *model.Config) error {
	switch cfg.Engine.Provider {
	case "openai":
		cfg.Engine.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Engine.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.Engine.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.Engine.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.Engine.BaseURL = baseURL
		}
	}
	return nil
}
