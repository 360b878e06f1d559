package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version   string          `yaml:"version" json:"version"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Client    ClientConfig    `yaml:"client" json:"client"`
	AI        AIConfig        `yaml:"ai" json:"ai"`
	Analyzers AnalyzersConfig `yaml:"analyzers" json:"analyzers"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// ServerConfig configures the HTTP backend
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins" json:"allowed_origins"`
	RateLimit       string        `yaml:"rate_limit" json:"rate_limit"` // ulule format, e.g. "120-M"; empty disables
	MaxBodyBytes    int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	EnableMetrics   bool          `yaml:"enable_metrics" json:"enable_metrics"`
}

// ClientConfig configures how the CLI and TUI talk to the server
type ClientConfig struct {
	ServerURL      string        `yaml:"server_url" json:"server_url"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`                 // 0 means no timeout (TUI)
	AnalyzeTimeout time.Duration `yaml:"analyze_timeout" json:"analyze_timeout"` // used by analyze/watch
}

// AIConfig configures refactoring-suggestion providers
type AIConfig struct {
	DefaultProvider string       `yaml:"default_provider" json:"default_provider"`
	OpenAI          OpenAIConfig `yaml:"openai" json:"openai"`
	Ollama          OllamaConfig `yaml:"ollama" json:"ollama"`
}

// OpenAIConfig configures the openai provider
type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key" json:"api_key"`
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	Model       string        `yaml:"model" json:"model"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens"`
	Temperature float64       `yaml:"temperature" json:"temperature"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// OllamaConfig configures the ollama provider
type OllamaConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Host    string `yaml:"host" json:"host"`
	Model   string `yaml:"model" json:"model"`
}

// AnalyzersConfig configures language analyzers
type AnalyzersConfig struct {
	Python PythonAnalyzerConfig `yaml:"python" json:"python"`
	Ruby   bool                 `yaml:"ruby" json:"ruby"`
	Go     bool                 `yaml:"go" json:"go"`
}

// PythonAnalyzerConfig points at the remote python analyzer service
type PythonAnalyzerConfig struct {
	URL     string        `yaml:"url" json:"url"` // empty disables python
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`
	Theme         string `yaml:"theme" json:"theme"` // default|high-contrast|minimal
}

// LoggingConfig configures the logrus sink
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"` // TUI log file; empty discards
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
			RateLimit:       "120-M",
			MaxBodyBytes:    1 << 20, // 1MB
			EnableMetrics:   true,
		},
		Client: ClientConfig{
			ServerURL:      "http://localhost:8000",
			Timeout:        0,
			AnalyzeTimeout: 30 * time.Second,
		},
		AI: AIConfig{
			DefaultProvider: "mock",
			OpenAI: OpenAIConfig{
				BaseURL:     "https://api.openai.com/v1",
				Model:       "gpt-4o-mini",
				MaxTokens:   512,
				Temperature: 0.2,
				Timeout:     30 * time.Second,
			},
			Ollama: OllamaConfig{
				Enabled: false,
				Host:    "http://localhost:11434",
				Model:   "llama3.2",
			},
		},
		Analyzers: AnalyzersConfig{
			Python: PythonAnalyzerConfig{
				URL:     "http://localhost:8001",
				Timeout: 30 * time.Second,
			},
			Ruby: true,
			Go:   true,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
			Theme:         "default",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServerConfig(); err != nil {
		return err
	}
	if err := c.validateClientConfig(); err != nil {
		return err
	}
	if err := c.validateAIConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	return c.validateLoggingConfig()
}

func (c *Config) validateServerConfig() error {
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must be non-negative")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must be non-negative")
	}
	return nil
}

func (c *Config) validateClientConfig() error {
	if c.Client.ServerURL != "" {
		u, err := url.Parse(c.Client.ServerURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid server_url: %s", c.Client.ServerURL)
		}
	}
	if c.Client.Timeout < 0 || c.Client.AnalyzeTimeout < 0 {
		return fmt.Errorf("client timeouts must be non-negative")
	}
	return nil
}

// validateAIConfig validates AI-related configuration
func (c *Config) validateAIConfig() error {
	if c.AI.DefaultProvider != "" {
		validProviders := map[string]bool{
			"mock":   true,
			"openai": true,
			"ollama": true,
		}
		if !validProviders[c.AI.DefaultProvider] {
			return fmt.Errorf("invalid AI provider: %s (must be one of: mock, openai, ollama)", c.AI.DefaultProvider)
		}
	}
	if c.AI.OpenAI.Temperature < 0 || c.AI.OpenAI.Temperature > 2 {
		return fmt.Errorf("openai temperature must be between 0 and 2")
	}
	if c.AI.OpenAI.MaxTokens < 0 {
		return fmt.Errorf("openai max_tokens must be non-negative")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

func (c *Config) validateLoggingConfig() error {
	if c.Logging.Format != "" && c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be one of: text, json)", c.Logging.Format)
	}
	return nil
}
