package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.codelens.yaml",               // Project-specific config (highest priority)
	"~/.config/codelens/config.yaml", // User config
	"/etc/codelens/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	getenv      func(string) string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		getenv:      os.Getenv,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.codelens.yaml
// 4. ~/.config/codelens/config.yaml
// 5. /etc/codelens/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if !fileExists(expandedPath) {
				continue
			}
			if err := l.loadFromFile(config, expandedPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile overlays a YAML file onto config. Keys absent from the file
// keep their current value, including booleans.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	overlay := *config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	*config = overlay
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Server
		"CODELENS_SERVER_ADDR":           func(v string) error { config.Server.Addr = v; return nil },
		"CODELENS_SERVER_RATE_LIMIT":     func(v string) error { config.Server.RateLimit = v; return nil },
		"CODELENS_SERVER_MAX_BODY_BYTES": func(v string) error { return parseInt64(v, &config.Server.MaxBodyBytes) },
		"CODELENS_SERVER_ENABLE_METRICS": func(v string) error { return parseBool(v, &config.Server.EnableMetrics) },

		// Client
		"CODELENS_CLIENT_SERVER_URL":      func(v string) error { config.Client.ServerURL = v; return nil },
		"CODELENS_CLIENT_TIMEOUT":         func(v string) error { return parseDuration(v, &config.Client.Timeout) },
		"CODELENS_CLIENT_ANALYZE_TIMEOUT": func(v string) error { return parseDuration(v, &config.Client.AnalyzeTimeout) },

		// AI
		"CODELENS_AI_DEFAULT_PROVIDER": func(v string) error { config.AI.DefaultProvider = v; return nil },
		"CODELENS_AI_OPENAI_API_KEY":   func(v string) error { config.AI.OpenAI.APIKey = v; return nil },
		"CODELENS_AI_OPENAI_BASE_URL":  func(v string) error { config.AI.OpenAI.BaseURL = v; return nil },
		"CODELENS_AI_OPENAI_MODEL":     func(v string) error { config.AI.OpenAI.Model = v; return nil },
		"CODELENS_AI_OPENAI_TIMEOUT":   func(v string) error { return parseDuration(v, &config.AI.OpenAI.Timeout) },
		"CODELENS_AI_OLLAMA_ENABLED":   func(v string) error { return parseBool(v, &config.AI.Ollama.Enabled) },
		"CODELENS_AI_OLLAMA_HOST":      func(v string) error { config.AI.Ollama.Host = v; return nil },
		"CODELENS_AI_OLLAMA_MODEL":     func(v string) error { config.AI.Ollama.Model = v; return nil },

		// Analyzers
		"CODELENS_ANALYZERS_PYTHON_URL":     func(v string) error { config.Analyzers.Python.URL = v; return nil },
		"CODELENS_ANALYZERS_PYTHON_TIMEOUT": func(v string) error { return parseDuration(v, &config.Analyzers.Python.Timeout) },
		"CODELENS_ANALYZERS_RUBY":           func(v string) error { return parseBool(v, &config.Analyzers.Ruby) },
		"CODELENS_ANALYZERS_GO":             func(v string) error { return parseBool(v, &config.Analyzers.Go) },

		// Output
		"CODELENS_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"CODELENS_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"CODELENS_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"CODELENS_OUTPUT_THEME":          func(v string) error { config.Output.Theme = v; return nil },

		// Logging
		"CODELENS_LOGGING_LEVEL":  func(v string) error { config.Logging.Level = v; return nil },
		"CODELENS_LOGGING_FORMAT": func(v string) error { config.Logging.Format = v; return nil },
		"CODELENS_LOGGING_FILE":   func(v string) error { config.Logging.File = v; return nil },
	}

	for envVar, setter := range envMappings {
		if value := l.getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Comma-separated list
	if origins := l.getenv("CODELENS_SERVER_ALLOWED_ORIGINS"); origins != "" {
		config.Server.AllowedOrigins = splitList(origins)
	}

	// The OpenAI SDK convention
	if config.AI.OpenAI.APIKey == "" {
		config.AI.OpenAI.APIKey = l.getenv("OPENAI_API_KEY")
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// WriteConfig writes cfg as YAML to path
func WriteConfig(cfg *Config, path string) error {
	if err := validateConfigPath(path); err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	return os.WriteFile(path, data, 0o600)
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// ExpandPath is the exported form of expandPath for callers outside the package
func ExpandPath(path string) string {
	return expandPath(path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Type conversion helpers

func parseInt64(s string, dst *int64) error {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
