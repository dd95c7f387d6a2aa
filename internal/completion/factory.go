package completion

import (
	"fmt"
	"time"
)

// ProviderSettings is the provider-selection slice of the app config,
// kept here so the factory does not depend on the config package.
type ProviderSettings struct {
	Provider string // "gemini" (default) or "openai"
	APIKey   string
	Model    string
	BaseURL  string // OpenAI-compatible endpoints only
	Timeout  time.Duration
}

// NewClient builds a completion client for the configured provider.
// The credential is always caller-supplied; an empty key is an error,
// never a silent default.
func NewClient(s ProviderSettings) (Client, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	switch s.Provider {
	case "", "gemini":
		return NewGeminiClient(s.APIKey, s.Model)
	case "openai":
		return NewOpenAIClientWithConfig(OpenAIConfig{
			APIKey:  s.APIKey,
			BaseURL: s.BaseURL,
			Model:   s.Model,
			Timeout: s.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", s.Provider)
	}
}
