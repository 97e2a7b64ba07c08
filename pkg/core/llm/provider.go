package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// ProviderConfig carries per-provider settings. Empty fields fall back to the
// provider's environment variable and built-in defaults.
type ProviderConfig struct {
	Model   string `yaml:"model" mapstructure:"model"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// Known provider names.
const (
	ProviderDeepSeek = "deepseek"
	ProviderDoubao   = "doubao"
	ProviderGemini   = "gemini"
	ProviderKimi     = "kimi"
	ProviderOpenAI   = "openai"
	ProviderQwen     = "qwen"
)

// OptionJSON asks a provider for a JSON-only response.
const OptionJSON = "json"

var defaultHTTPClient = &http.Client{Timeout: 120 * time.Second}

// NewProvider builds a provider by name.
func NewProvider(name string, cfg ProviderConfig) (Provider, error) {
	switch name {
	case ProviderGemini:
		return &GeminiProvider{Model: cfg.Model, APIKey: cfg.APIKey}, nil
	case ProviderQwen:
		return &QwenProvider{Model: cfg.Model, APIKey: cfg.APIKey, BaseURL: cfg.BaseURL}, nil
	case ProviderDeepSeek, ProviderOpenAI, ProviderKimi, ProviderDoubao:
		return NewChatProvider(name, cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}

// NewProviders builds every known provider, applying per-name overrides.
func NewProviders(overrides map[string]ProviderConfig) map[string]Provider {
	out := make(map[string]Provider)
	for _, name := range Names() {
		p, err := NewProvider(name, overrides[name])
		if err != nil {
			continue
		}
		out[name] = p
	}
	return out
}

// Names lists the known provider names in sorted order.
func Names() []string {
	return []string{ProviderDeepSeek, ProviderDoubao, ProviderGemini, ProviderKimi, ProviderOpenAI, ProviderQwen}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func envKey(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

func wantsJSON(options map[string]interface{}) bool {
	v, ok := options[OptionJSON].(bool)
	return ok && v
}
