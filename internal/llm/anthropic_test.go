package llm

import (
	"net/http"
	"testing"
)

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(Config{}); err == nil {
		t.Error("want error without an API key")
	}
}

func TestNewAnthropicProvider_HonorsProxyConfig(t *testing.T) {
	p, err := NewAnthropicProvider(Config{
		APIKey:     "sk-ant-test",
		HTTPSProxy: "http://proxy.local:3128",
	})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	transport, ok := p.httpClient.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport is %T, want *http.Transport", p.httpClient.Transport)
	}

	req, _ := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil)
	u, err := transport.Proxy(req)
	if err != nil {
		t.Fatalf("proxy resolution: %v", err)
	}
	if u == nil || u.Host != "proxy.local:3128" {
		t.Errorf("engine call proxied via %v, want proxy.local:3128", u)
	}
}
