package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yildizm/CodeLens/internal/api"
)

// Python issue codes, assigned to the plain-text issues the service returns
const (
	IssuePythonSyntax       = "PY000"
	IssuePythonLongFunction = "PY001"
	IssuePythonOther        = "PY999"
)

// RemoteError is a non-2xx reply from an analyzer service
type RemoteError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Service, e.Body)
}

// TransportError means the analyzer service could not be reached or its
// reply could not be read.
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Error communicating with %s: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Remote delegates analysis to an HTTP service that accepts {"code"} on
// POST /analyze and replies {"analysis": {...}}.
type Remote struct {
	language string
	service  string
	endpoint string
	client   *http.Client
}

// NewRemote creates a remote analyzer for language served at baseURL
func NewRemote(language, service, baseURL string, timeout time.Duration) (*Remote, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s URL: %q", service, baseURL)
	}

	return &Remote{
		language: language,
		service:  service,
		endpoint: u.JoinPath(api.PathAnalyze).String(),
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// NewPython creates the remote python analyzer
func NewPython(baseURL string, timeout time.Duration) (*Remote, error) {
	return NewRemote("python", "Python Analyzer", baseURL, timeout)
}

func (r *Remote) Language() string {
	return r.language
}

// remoteReport accepts issues as plain strings or as issue objects
type remoteReport struct {
	Metrics map[string]int    `json:"metrics"`
	Issues  []json.RawMessage `json:"issues"`
}

// Analyze posts code to the service
func (r *Remote) Analyze(ctx context.Context, code string) (*api.Report, error) {
	payload, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Service: r.service, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &TransportError{Service: r.service, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Service: r.service, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{Service: r.service, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var envelope struct {
		Analysis *remoteReport `json:"analysis"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &TransportError{Service: r.service, Err: fmt.Errorf("invalid response: %w", err)}
	}
	if envelope.Analysis == nil {
		return nil, &TransportError{Service: r.service, Err: fmt.Errorf("response has no analysis")}
	}

	return envelope.Analysis.toReport()
}

func (rr *remoteReport) toReport() (*api.Report, error) {
	report := newReport()
	for k, v := range rr.Metrics {
		report.Metrics[k] = v
	}

	for _, raw := range rr.Issues {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			report.Issues = append(report.Issues, api.Issue{Code: classifyPythonIssue(text), Message: text})
			continue
		}

		var issue api.Issue
		if err := json.Unmarshal(raw, &issue); err != nil {
			return nil, fmt.Errorf("invalid issue %s: %w", raw, err)
		}
		report.Issues = append(report.Issues, issue)
	}
	return report, nil
}

func classifyPythonIssue(msg string) string {
	switch {
	case strings.HasPrefix(msg, "Syntax Error"):
		return IssuePythonSyntax
	case strings.Contains(msg, "is too long"):
		return IssuePythonLongFunction
	default:
		return IssuePythonOther
	}
}
