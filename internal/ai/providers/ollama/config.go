package ollama

import (
	"net/url"
	"time"

	"github.com/yildizm/CodeLens/internal/ai"
)

// Config holds Ollama-specific configuration
type Config struct {
	// BaseURL is the Ollama API endpoint
	BaseURL string `json:"base_url"`

	// Model is the model to use
	Model string `json:"model"`

	// Timeout bounds a single generation
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns a default Ollama configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:11434",
		Model:   "llama3.2",
		Timeout: 60 * time.Second,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ai.NewConfigurationError(Name, "base_url", "base URL is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ai.NewConfigurationError(Name, "base_url", "invalid base URL: "+c.BaseURL)
	}

	if c.Model == "" {
		return ai.NewConfigurationError(Name, "model", "model is required")
	}

	if c.Timeout < 0 {
		return ai.NewConfigurationError(Name, "timeout", "timeout must be non-negative")
	}

	return nil
}

// ToProviderConfig converts Ollama config to generic provider config
func (c *Config) ToProviderConfig() *ai.ProviderConfig {
	return &ai.ProviderConfig{
		Name:    Name,
		Type:    Name,
		BaseURL: c.BaseURL,
		Model:   c.Model,
		Timeout: c.Timeout,
	}
}

// FromProviderConfig creates Ollama config from generic provider config
func FromProviderConfig(pc *ai.ProviderConfig) *Config {
	config := DefaultConfig()

	if pc.BaseURL != "" {
		config.BaseURL = pc.BaseURL
	}

	if pc.Model != "" {
		config.Model = pc.Model
	}

	if pc.Timeout > 0 {
		config.Timeout = pc.Timeout
	}

	return config
}
