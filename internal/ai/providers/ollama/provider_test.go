package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/CodeLens/internal/ai"
)

type generateBody struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system"`
}

func newTestServer(t *testing.T, reply string, got *generateBody) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path '/api/generate', got '%s'", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST method, got '%s'", r.Method)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model":      "llama3.2",
			"created_at": "2025-01-01T00:00:00Z",
			"response":   reply,
			"done":       true,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestProvider_Suggest(t *testing.T) {
	var got generateBody
	server := newTestServer(t, `{"suggestion":"Split the loop body.","changes":["extract parse()"]}`, &got)

	p, err := New(&Config{BaseURL: server.URL, Model: "llama3.2", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	suggestion, err := p.Suggest(context.Background(), &ai.SuggestionRequest{Language: "ruby", Code: "puts 1"})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if want := "Split the loop body.\n- extract parse()"; suggestion != want {
		t.Errorf("Expected %q, got %q", want, suggestion)
	}
	if got.Model != "llama3.2" {
		t.Errorf("Expected model llama3.2, got %q", got.Model)
	}
	if !strings.Contains(got.Prompt, "puts 1") {
		t.Errorf("Expected code in prompt, got %q", got.Prompt)
	}
	if got.System == "" {
		t.Error("Expected system prompt to be set")
	}
}

func TestProvider_EmptyResponse(t *testing.T) {
	server := newTestServer(t, "  ", nil)

	p, err := New(&Config{BaseURL: server.URL, Model: "llama3.2"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = p.Suggest(context.Background(), &ai.SuggestionRequest{Code: "x"})
	if err == nil {
		t.Fatal("Expected error for empty response")
	}
	if !strings.Contains(err.Error(), "empty_response") {
		t.Errorf("Expected empty_response error, got %v", err)
	}
}

func TestProvider_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	p, err := New(&Config{BaseURL: server.URL, Model: "llama3.2", Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = p.Suggest(context.Background(), &ai.SuggestionRequest{Code: "x"})
	if !ai.IsRetryableError(err) {
		t.Errorf("Expected retryable timeout error, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{BaseURL: "http://localhost:11434", Model: "llama3.2"}, false},
		{"missing url", Config{Model: "llama3.2"}, true},
		{"relative url", Config{BaseURL: "localhost", Model: "llama3.2"}, true},
		{"missing model", Config{BaseURL: "http://localhost:11434"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactory(t *testing.T) {
	f := NewFactory()
	if f.Type() != "ollama" {
		t.Errorf("Expected type 'ollama', got %q", f.Type())
	}

	p, err := f.Create(&ai.ProviderConfig{BaseURL: "http://127.0.0.1:11434", Model: "codellama"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Expected name 'ollama', got %q", p.Name())
	}
}
