package openai

import (
	"time"

	"github.com/yildizm/CodeLens/internal/ai"
)

// Config holds OpenAI-specific configuration
type Config struct {
	// APIKey for authentication; empty selects placeholder mode
	APIKey string `json:"api_key"`

	// BaseURL is the OpenAI-compatible API endpoint
	BaseURL string `json:"base_url"`

	// Model is the chat model to use
	Model string `json:"model"`

	// MaxTokens limits the completion length
	MaxTokens int `json:"max_tokens"`

	// Temperature for requests
	Temperature float64 `json:"temperature"`

	// Timeout for each request
	Timeout time.Duration `json:"timeout"`

	// MaxRetries for failed requests
	MaxRetries int `json:"max_retries"`
}

// DefaultConfig returns a default OpenAI configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
		MaxTokens:   512,
		Temperature: 0.2,
		Timeout:     30 * time.Second,
		MaxRetries:  2,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ai.NewConfigurationError(Name, "base_url", "base URL is required")
	}

	if c.Model == "" {
		return ai.NewConfigurationError(Name, "model", "model is required")
	}

	if c.MaxTokens <= 0 {
		return ai.NewConfigurationError(Name, "max_tokens", "max tokens must be positive")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return ai.NewConfigurationError(Name, "temperature", "temperature must be between 0 and 2")
	}

	if c.MaxRetries < 0 {
		return ai.NewConfigurationError(Name, "max_retries", "max retries must be non-negative")
	}

	return nil
}

// ToProviderConfig converts OpenAI config to generic provider config
func (c *Config) ToProviderConfig() *ai.ProviderConfig {
	return &ai.ProviderConfig{
		Name:        Name,
		Type:        Name,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
	}
}

// FromProviderConfig creates OpenAI config from generic provider config
func FromProviderConfig(pc *ai.ProviderConfig) *Config {
	config := DefaultConfig()

	config.APIKey = pc.APIKey

	if pc.BaseURL != "" {
		config.BaseURL = pc.BaseURL
	}

	if pc.Model != "" {
		config.Model = pc.Model
	}

	if pc.MaxTokens > 0 {
		config.MaxTokens = pc.MaxTokens
	}

	if pc.Temperature > 0 {
		config.Temperature = pc.Temperature
	}

	if pc.Timeout > 0 {
		config.Timeout = pc.Timeout
	}

	return config
}
