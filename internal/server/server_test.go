package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/CodeLens/internal/ai"
	"github.com/yildizm/CodeLens/internal/ai/providers/mock"
	"github.com/yildizm/CodeLens/internal/analyzer"
	"github.com/yildizm/CodeLens/internal/api"
	"github.com/yildizm/CodeLens/internal/config"
)

type failingProvider struct{}

func (failingProvider) Name() string { return "broken" }

func (failingProvider) Suggest(context.Context, *ai.SuggestionRequest) (string, error) {
	return "", errors.New("model offline")
}

type testEnv struct {
	server *httptest.Server
}

func newTestEnv(t *testing.T, mutate func(*config.ServerConfig, *analyzer.Registry, *ai.Registry)) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig().Server
	cfg.RateLimit = ""

	analyzers := analyzer.NewRegistry()
	_ = analyzers.Register(analyzer.NewRuby())
	_ = analyzers.Register(analyzer.NewGolang())

	providers := ai.NewRegistry()
	_ = providers.Register(mock.New())
	_ = providers.Register(failingProvider{})

	if mutate != nil {
		mutate(&cfg, analyzers, providers)
	}

	s, err := New(Options{Config: cfg, Analyzers: analyzers, Providers: providers})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{server: ts}
}

func (e *testEnv) post(t *testing.T, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(e.server.URL+api.PathAnalyze, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func detail(t *testing.T, data []byte) string {
	t.Helper()
	var e api.ErrorResponse
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("Expected error payload, got %s", data)
	}
	return e.Detail
}

func TestSupportedLists(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, data := env.get(t, api.PathSupportedLanguages)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if string(data) != "{\"languages\":[\"ruby\",\"go\"]}\n" {
		t.Errorf("Unexpected languages body %q", data)
	}

	_, data = env.get(t, api.PathSupportedProviders)
	var providers api.ProvidersResponse
	if err := json.Unmarshal(data, &providers); err != nil {
		t.Fatal(err)
	}
	if want := []string{"mock", "broken"}; !reflect.DeepEqual(providers.Providers, want) {
		t.Errorf("Expected %v, got %v", want, providers.Providers)
	}
}

func TestAnalyze_Success(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, data := env.post(t, `{"language":"ruby","provider":"mock","code":"eval(\"1\")"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, data)
	}

	var out api.AnalysisResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Language != "ruby" {
		t.Errorf("Expected language ruby, got %q", out.Language)
	}
	if !strings.HasPrefix(out.Analysis.RefactoringSuggestion, "[Mock Suggestion]") {
		t.Errorf("Expected mock suggestion, got %q", out.Analysis.RefactoringSuggestion)
	}
	if len(out.Analysis.Issues) != 1 || out.Analysis.Issues[0].Code != analyzer.IssueRubyEval {
		t.Errorf("Expected RB001 issue, got %v", out.Analysis.Issues)
	}
	if out.Analysis.Metrics[analyzer.MetricLineCount] != 1 {
		t.Errorf("Expected line_count 1, got %v", out.Analysis.Metrics)
	}
}

func TestAnalyze_EmptyProviderUsesDefault(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, data := env.post(t, `{"language":"go","code":"func f() {}"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, data)
	}
	if !strings.Contains(string(data), "[Mock Suggestion]") {
		t.Errorf("Expected default mock provider, got %s", data)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{
			name:       "unsupported language",
			body:       `{"language":"fortran","provider":"mock","code":"..."}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "Language 'fortran' not supported.",
		},
		{
			name:       "unknown provider checked first",
			body:       `{"language":"fortran","provider":"claude","code":"..."}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "LLM Provider 'claude' not supported.",
		},
		{
			name:       "missing language",
			body:       `{"provider":"mock","code":"x"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "field 'language' is required",
		},
		{
			name:       "malformed body",
			body:       `{"language":`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "invalid request body: unexpected EOF",
		},
		{
			name:       "provider failure",
			body:       `{"language":"ruby","provider":"broken","code":"x"}`,
			wantStatus: http.StatusBadGateway,
			wantDetail: "LLM Provider 'broken' failed: model offline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := env.post(t, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if got := detail(t, data); got != tt.wantDetail {
				t.Errorf("Expected detail %q, got %q", tt.wantDetail, got)
			}
		})
	}
}

func TestAnalyze_BodyLimit(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.ServerConfig, _ *analyzer.Registry, _ *ai.Registry) {
		cfg.MaxBodyBytes = 32
	})

	resp, _ := env.post(t, `{"language":"ruby","provider":"mock","code":"`+strings.Repeat("x", 64)+`"}`)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", resp.StatusCode)
	}
}

func TestAnalyze_RemoteAnalyzer(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "busy")
	}))
	defer upstream.Close()

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	env := newTestEnv(t, func(_ *config.ServerConfig, analyzers *analyzer.Registry, _ *ai.Registry) {
		py, _ := analyzer.NewPython(upstream.URL, time.Second)
		_ = analyzers.Register(py)
		gone, _ := analyzer.NewRemote("elixir", "Elixir Analyzer", downURL, time.Second)
		_ = analyzers.Register(gone)
	})

	resp, data := env.post(t, `{"language":"python","provider":"mock","code":"x=1"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected upstream 503, got %d", resp.StatusCode)
	}
	if got := detail(t, data); got != "Python Analyzer error: busy" {
		t.Errorf("Unexpected detail %q", got)
	}

	resp, data = env.post(t, `{"language":"elixir","provider":"mock","code":"x"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", resp.StatusCode)
	}
	if got := detail(t, data); !strings.HasPrefix(got, "Error communicating with Elixir Analyzer: ") {
		t.Errorf("Unexpected detail %q", got)
	}
}

func TestIndexAndHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, data := env.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), "<title>CodeLens</title>") {
		t.Error("Expected index page")
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("Expected request ID header")
	}

	resp, _ = env.get(t, api.PathHealth)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from health, got %d", resp.StatusCode)
	}

	resp, data = env.get(t, "/nope")
	if resp.StatusCode != http.StatusNotFound || detail(t, data) != "Not Found" {
		t.Errorf("Expected JSON 404, got %d %s", resp.StatusCode, data)
	}
}

func TestHandler_Gzip(t *testing.T) {
	env := newTestEnv(t, nil)

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.Header.Get("Content-Encoding") != "gzip" {
		t.Errorf("Expected gzip encoding, got %q", resp.Header.Get("Content-Encoding"))
	}
}

func TestHandler_CORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, env.server.URL+api.PathAnalyze, nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}
}

func TestHandler_RateLimit(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.ServerConfig, _ *analyzer.Registry, _ *ai.Registry) {
		cfg.RateLimit = "2-M"
	})

	for i := 0; i < 2; i++ {
		if resp, _ := env.get(t, api.PathHealth); resp.StatusCode != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, resp.StatusCode)
		}
	}
	if resp, _ := env.get(t, api.PathHealth); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", resp.StatusCode)
	}
}

func TestNew_InvalidRateLimit(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.RateLimit = "lots"

	_, err := New(Options{Config: cfg, Analyzers: analyzer.NewRegistry(), Providers: ai.NewRegistry()})
	if err == nil {
		t.Error("Expected error for invalid rate limit")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.get(t, api.PathSupportedLanguages)

	resp, data := env.get(t, api.PathMetrics)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), "codelens_http_requests_total") {
		t.Error("Expected request counter in metrics output")
	}
}
