// Package api holds the wire types exchanged between the CodeLens client and server.
package api

// Endpoint paths served by the backend
const (
	PathSupportedLanguages = "/supported-languages"
	PathSupportedProviders = "/supported-providers"
	PathAnalyze            = "/analyze"
	PathHealth             = "/healthz"
	PathMetrics            = "/metrics"
)

// AnalysisRequest is the body of POST /analyze. Field order is part of the
// wire contract. An empty provider selects the server's default.
type AnalysisRequest struct {
	Language string `json:"language" validate:"required,max=64"`
	Provider string `json:"provider" validate:"max=64"`
	Code     string `json:"code"`
}

// LanguagesResponse is the body of GET /supported-languages
type LanguagesResponse struct {
	Languages []string `json:"languages"`
}

// ProvidersResponse is the body of GET /supported-providers
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// AnalysisResponse is the body of a successful POST /analyze
type AnalysisResponse struct {
	Language string `json:"language"`
	Analysis Report `json:"analysis"`
}

// Report is the per-language analysis with the provider's suggestion attached
type Report struct {
	Metrics               map[string]int `json:"metrics"`
	Issues                []Issue        `json:"issues"`
	RefactoringSuggestion string         `json:"refactoring_suggestion,omitempty"`
}

// Issue is a single finding reported by an analyzer
type Issue struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	LineNumber int    `json:"line_number,omitempty"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Detail string `json:"detail"`
}
