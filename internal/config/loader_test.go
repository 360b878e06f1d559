package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLoader(env map[string]string) *Loader {
	return &Loader{
		configPaths: nil,
		getenv:      func(key string) string { return env[key] },
	}
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	loader := newTestLoader(nil)

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	if cfg.AI.DefaultProvider != "mock" {
		t.Errorf("Expected default AI provider mock, got %s", cfg.AI.DefaultProvider)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	configContent := `version: "1.0"
client:
  server_url: "http://analyzer.internal:9000"
  analyze_timeout: 45s
ai:
  default_provider: "openai"
  openai:
    model: "gpt-4o"
analyzers:
  python:
    url: ""
output:
  default_format: "json"
  verbose: true
`

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	cfg, err := newTestLoader(nil).LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	if cfg.Client.ServerURL != "http://analyzer.internal:9000" {
		t.Errorf("Expected server URL from file, got %s", cfg.Client.ServerURL)
	}
	if cfg.Client.AnalyzeTimeout != 45*time.Second {
		t.Errorf("Expected analyze timeout 45s, got %v", cfg.Client.AnalyzeTimeout)
	}
	if cfg.AI.DefaultProvider != "openai" {
		t.Errorf("Expected AI provider openai, got %s", cfg.AI.DefaultProvider)
	}
	if cfg.AI.OpenAI.Model != "gpt-4o" {
		t.Errorf("Expected model gpt-4o, got %s", cfg.AI.OpenAI.Model)
	}
	if cfg.AI.OpenAI.MaxTokens != 512 {
		t.Errorf("Expected untouched max_tokens 512, got %d", cfg.AI.OpenAI.MaxTokens)
	}
	if cfg.Analyzers.Python.URL != "" {
		t.Errorf("Expected python analyzer disabled, got %q", cfg.Analyzers.Python.URL)
	}
	if !cfg.Analyzers.Ruby {
		t.Errorf("Expected ruby analyzer to stay enabled when absent from file")
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid-config.yaml")

	invalidConfigContent := `version: "1.0"
output:
  default_format: "json
  verbose: true
`

	if err := os.WriteFile(configPath, []byte(invalidConfigContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	if _, err := newTestLoader(nil).LoadConfig(configPath); err == nil {
		t.Error("Expected error loading invalid YAML config, but got none")
	}
}

func TestLoadConfigSearchPriority(t *testing.T) {
	tempDir := t.TempDir()
	system := filepath.Join(tempDir, "system.yaml")
	project := filepath.Join(tempDir, "project.yaml")

	if err := os.WriteFile(system, []byte("output:\n  theme: minimal\n  default_format: markdown\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(project, []byte("output:\n  default_format: json\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader := newTestLoader(nil)
	loader.configPaths = []string{project, system}

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("Expected project file to win, got %s", cfg.Output.DefaultFormat)
	}
	if cfg.Output.Theme != "minimal" {
		t.Errorf("Expected system theme to survive, got %s", cfg.Output.Theme)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	loader := newTestLoader(map[string]string{
		"CODELENS_CLIENT_SERVER_URL":      "http://remote:8000",
		"CODELENS_AI_DEFAULT_PROVIDER":    "ollama",
		"CODELENS_AI_OLLAMA_ENABLED":      "true",
		"CODELENS_OUTPUT_VERBOSE":         "true",
		"CODELENS_SERVER_MAX_BODY_BYTES":  "2048",
		"CODELENS_SERVER_ALLOWED_ORIGINS": "http://a.test, http://b.test",
		"OPENAI_API_KEY":                  "sk-test",
	})
	cfg := DefaultConfig()

	if err := loader.applyEnvOverrides(cfg); err != nil {
		t.Fatalf("Failed to apply env overrides: %v", err)
	}

	if cfg.Client.ServerURL != "http://remote:8000" {
		t.Errorf("Expected server URL override, got %s", cfg.Client.ServerURL)
	}
	if cfg.AI.DefaultProvider != "ollama" || !cfg.AI.Ollama.Enabled {
		t.Errorf("Expected ollama enabled as default, got %s/%v", cfg.AI.DefaultProvider, cfg.AI.Ollama.Enabled)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.Server.MaxBodyBytes != 2048 {
		t.Errorf("Expected max body 2048, got %d", cfg.Server.MaxBodyBytes)
	}
	expectedOrigins := []string{"http://a.test", "http://b.test"}
	if len(cfg.Server.AllowedOrigins) != len(expectedOrigins) {
		t.Fatalf("Expected %d origins, got %v", len(expectedOrigins), cfg.Server.AllowedOrigins)
	}
	for i, origin := range expectedOrigins {
		if cfg.Server.AllowedOrigins[i] != origin {
			t.Errorf("Expected origin %s, got %s", origin, cfg.Server.AllowedOrigins[i])
		}
	}
	if cfg.AI.OpenAI.APIKey != "sk-test" {
		t.Errorf("Expected OPENAI_API_KEY fallback, got %q", cfg.AI.OpenAI.APIKey)
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"invalid int", "CODELENS_SERVER_MAX_BODY_BYTES", "not-a-number"},
		{"invalid bool", "CODELENS_OUTPUT_VERBOSE", "not-a-bool"},
		{"invalid duration", "CODELENS_CLIENT_TIMEOUT", "not-a-duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newTestLoader(map[string]string{tt.envVar: tt.value})
			if err := loader.applyEnvOverrides(DefaultConfig()); err == nil {
				t.Error("Expected error for invalid env var value, but got none")
			}
		})
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Output.Theme = "high-contrast"

	if err := WriteConfig(cfg, path); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := newTestLoader(nil).LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Output.Theme != "high-contrast" {
		t.Errorf("Expected theme high-contrast, got %s", loaded.Output.Theme)
	}
}

func TestParseDuration(t *testing.T) {
	var duration time.Duration

	if err := parseDuration("30s", &duration); err != nil {
		t.Errorf("Failed to parse duration: %v", err)
	}
	if duration != 30*time.Second {
		t.Errorf("Expected 30s, got %v", duration)
	}

	if err := parseDuration("invalid", &duration); err == nil {
		t.Error("Expected error for invalid duration, but got none")
	}
}

func TestParseBool(t *testing.T) {
	var value bool

	if err := parseBool("true", &value); err != nil || !value {
		t.Errorf("Expected true, got %v (%v)", value, err)
	}
	if err := parseBool("not-a-bool", &value); err == nil {
		t.Error("Expected error for invalid bool, but got none")
	}
}

func TestFileExists(t *testing.T) {
	if fileExists("/path/that/does/not/exist") {
		t.Error("Expected file to not exist, but fileExists returned true")
	}

	tempFile := filepath.Join(t.TempDir(), "test-file")
	if err := os.WriteFile(tempFile, []byte("test"), 0o600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if !fileExists(tempFile) {
		t.Error("Expected file to exist, but fileExists returned false")
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{name: "valid yaml file", path: "config.yaml"},
		{name: "valid yml file", path: "config.yml"},
		{name: "path traversal attempt", path: "../../../etc/passwd", wantErr: true, errMsg: "path traversal not allowed"},
		{name: "non-yaml file", path: "config.txt", wantErr: true, errMsg: "config file must have .yaml or .yml extension"},
		{name: "system file access", path: "/etc/passwd.yaml", wantErr: true, errMsg: "access to system files not allowed"},
		{name: "proc filesystem access", path: "/proc/version.yaml", wantErr: true, errMsg: "access to system files not allowed"},
		{name: "relative path with valid extension", path: "./configs/app.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error message to contain '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	if got := expandPath("./config.yaml"); got != "./config.yaml" {
		t.Errorf("Expected relative path unchanged, got %s", got)
	}
	if got := expandPath("~/.config/codelens/config.yaml"); got == "~/.config/codelens/config.yaml" {
		t.Errorf("Expected tilde to be expanded")
	}
}
