// Package client talks to the CodeLens HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yildizm/CodeLens/internal/api"
)

// Client is an HTTP client for the CodeLens backend
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets a per-request timeout; zero means none
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a client for the server at serverURL
func New(serverURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL: %q", serverURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server address the client targets
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SupportedLanguages fetches the language list. The server's response is an
// object whose first key holds the list; the key name is not fixed.
func (c *Client) SupportedLanguages(ctx context.Context) ([]string, error) {
	return c.fetchList(ctx, api.PathSupportedLanguages)
}

// SupportedProviders fetches the provider list, read the same way as
// SupportedLanguages.
func (c *Client) SupportedProviders(ctx context.Context) ([]string, error) {
	return c.fetchList(ctx, api.PathSupportedProviders)
}

// Analyze posts req and returns the response body as raw JSON. The HTTP
// status is not inspected: any body that parses as JSON is returned,
// including server error payloads.
func (c *Client) Analyze(ctx context.Context, req api.AnalysisRequest) (json.RawMessage, error) {
	_, body, err := c.postAnalyze(ctx, req)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return raw, nil
}

// AnalyzeReport posts req and decodes a typed report. Non-200 responses
// come back as *StatusError.
func (c *Client) AnalyzeReport(ctx context.Context, req api.AnalysisRequest) (*api.AnalysisResponse, error) {
	status, body, err := c.postAnalyze(ctx, req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, newStatusError(status, body)
	}

	var resp api.AnalysisResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}

// Health checks the server's liveness endpoint
func (c *Client) Health(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodGet, api.PathHealth, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return newStatusError(status, body)
	}
	return nil
}

func (c *Client) postAnalyze(ctx context.Context, req api.AnalysisRequest) (int, []byte, error) {
	payload, err := encodeRequest(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, api.PathAnalyze, payload)
}

// encodeRequest marshals without HTML escaping so code like "a < b" goes
// over the wire as typed.
func encodeRequest(req api.AnalysisRequest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(req); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (c *Client) fetchList(ctx context.Context, path string) ([]string, error) {
	_, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	items, err := FirstArray(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	endpoint := c.baseURL.JoinPath(path)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Drop the "Post <url>:" wrapper; callers show the cause as is
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return 0, nil, uerr.Err
		}
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}
