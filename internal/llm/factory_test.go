package llm

import (
	"testing"
	"time"

	"github.com/veraengine/vira/internal/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantErr  bool
		wantNil  bool
	}{
		{"openai", Config{Provider: "openai", APIKey: "sk-test"}, "openai", false, false},
		{"openai without key", Config{Provider: "openai"}, "", true, false},
		{"anthropic", Config{Provider: "anthropic", APIKey: "sk-ant-test"}, "anthropic", false, false},
		{"claude alias", Config{Provider: "claude", APIKey: "sk-ant-test"}, "anthropic", false, false},
		{"case insensitive", Config{Provider: "OpenAI", APIKey: "sk-test"}, "openai", false, false},
		{"disabled", Config{Provider: ""}, "", false, true},
		{"unknown", Config{Provider: "gemini"}, "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)

			if tt.wantErr {
				if err == nil {
					t.Fatal("want error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider: %v", err)
			}
			if tt.wantNil {
				if p != nil {
					t.Fatalf("want nil provider, got %v", p.Name())
				}
				return
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestConfigFromModel(t *testing.T) {
	engine := model.EngineConfig{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		APIKey:    "sk-test",
		Timeout:   90 * time.Second,
		MaxTokens: 2048,
	}

	cfg := ConfigFromModel(engine)

	if cfg.Timeout != 90 {
		t.Errorf("Timeout = %d seconds, want 90", cfg.Timeout)
	}
	if cfg.Provider != "openai" || cfg.Model != "gpt-4o-mini" || cfg.MaxTokens != 2048 {
		t.Errorf("config not carried over: %+v", cfg)
	}
}
