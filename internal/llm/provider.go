// Package llm contains the analysis engine providers and the request
// builder that serializes evidence bundles into bounded-size prompts.
package llm

import (
	"context"

	"github.com/veraengine/vira/internal/model"
)

// Provider is the narrow contract to an external analysis engine: an
// evidence payload goes in, free-form text expected to contain one
// JSON-shaped object comes out. No schema is enforced at this level;
// parsing and validation happen in the normalizer.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Analyze submits an evidence bundle for risk assessment and returns
	// the engine's raw reply. A single failure is terminal for the
	// request; the pipeline never retries engine calls.
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)

	// IsAvailable checks if the provider is properly configured and
	// reachable.
	IsAvailable(ctx context.Context) bool
}

// AnalyzeRequest is the input for one engine call.
type AnalyzeRequest struct {
	// Bundle is the compiled evidence for the asset under analysis.
	Bundle model.EvidenceBundle

	// Prompt overrides the built prompt when non-empty.
	Prompt string

	// Model is the specific model to use (provider-specific).
	Model string

	// MaxTokens limits the response length.
	MaxTokens int
}

// AnalyzeResponse is the engine's raw reply.
type AnalyzeResponse struct {
	// Text is the unparsed reply body.
	Text string

	// Model is the model that generated the reply.
	Model string

	// TokensUsed tracks token consumption.
	TokensUsed int
}

// Config holds analysis engine provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Model:     "",
		Timeout:   60,
		MaxTokens: 1024,
	}
}

// systemInstruction pins the engine to structured output. The normalizer
// still treats the reply as untrusted text.
const systemInstruction = `You are VIRA, a comprehensive risk oracle for tokenized Nigerian real estate assets. Your task is to analyze property data from multiple sources and generate a detailed structured JSON risk assessment report.

CRITICAL: Respond ONLY with the JSON object. No markdown, no explanations, no additional text.`
