package ai

import (
	"context"
)

// Provider produces a refactoring suggestion for a piece of code
type Provider interface {
	// Name returns the provider name (e.g., "mock", "openai", "ollama")
	Name() string

	// Suggest returns a free-form refactoring suggestion
	Suggest(ctx context.Context, req *SuggestionRequest) (string, error)
}

// SuggestionRequest is the input to Provider.Suggest
type SuggestionRequest struct {
	// Language of the code, as selected by the caller
	Language string `json:"language"`

	// Code to improve
	Code string `json:"code"`
}

// Validate checks the request before it reaches a provider
func (r *SuggestionRequest) Validate() error {
	if r == nil {
		return NewValidationError("request", "nil", "suggestion request is required")
	}
	return nil
}
