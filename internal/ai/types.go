package ai

import (
	"time"
)

// ProviderConfig contains configuration for a provider
type ProviderConfig struct {
	// Name is the provider identifier
	Name string `json:"name"`

	// Type is the provider type (mock, openai, ollama)
	Type string `json:"type"`

	// APIKey for authentication
	APIKey string `json:"api_key,omitempty"`

	// BaseURL for the API endpoint
	BaseURL string `json:"base_url,omitempty"`

	// Model is the model to use
	Model string `json:"model,omitempty"`

	// MaxTokens limits the suggestion length
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature for requests
	Temperature float64 `json:"temperature,omitempty"`

	// Timeout for requests
	Timeout time.Duration `json:"timeout,omitempty"`
}

// Validate checks fields common to every provider type
func (c *ProviderConfig) Validate() error {
	if c == nil {
		return NewConfigurationError("", "config", "configuration is required")
	}
	if c.MaxTokens < 0 {
		return NewConfigurationError(c.Type, "max_tokens", "must be non-negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return NewConfigurationError(c.Type, "temperature", "must be between 0 and 2")
	}
	if c.Timeout < 0 {
		return NewConfigurationError(c.Type, "timeout", "must be non-negative")
	}
	return nil
}
