package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/veraengine/vira/internal/model"
)

// NewProvider creates an analysis engine provider based on configuration.
// An empty provider name returns (nil, nil): the engine is disabled.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown analysis engine provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.EngineConfig to llm.Config.
func ConfigFromModel(engine model.EngineConfig) Config {
	return Config{
		Provider:   engine.Provider,
		Model:      engine.Model,
		APIKey:     engine.APIKey,
		BaseURL:    engine.BaseURL,
		Timeout:    int(engine.Timeout / time.Second),
		MaxTokens:  engine.MaxTokens,
		HTTPProxy:  engine.HTTPProxy,
		HTTPSProxy: engine.HTTPSProxy,
		NoProxy:    engine.NoProxy,
	}
}
