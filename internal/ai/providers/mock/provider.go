// Package mock implements a provider that needs no model or network access.
package mock

import (
	"context"

	"github.com/yildizm/CodeLens/internal/ai"
)

const (
	// Name is the registry name of the mock provider
	Name = "mock"

	suggestionPrefix = "[Mock Suggestion] Consider simplifying the following code:\n\n"
	excerptLength    = 100
)

// Provider echoes an excerpt of the code back as a suggestion
type Provider struct{}

// New creates a mock provider
func New() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string {
	return Name
}

// Suggest returns a canned suggestion quoting the first 100 characters of code
func (p *Provider) Suggest(ctx context.Context, req *ai.SuggestionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	excerpt := []rune(req.Code)
	if len(excerpt) > excerptLength {
		excerpt = excerpt[:excerptLength]
	}
	return suggestionPrefix + string(excerpt) + "...", nil
}

// Factory implements ai.ProviderFactory for the mock provider
type Factory struct{}

// NewFactory creates a mock provider factory
func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(*ai.ProviderConfig) (ai.Provider, error) {
	return New(), nil
}

func (f *Factory) Type() string {
	return Name
}

func (f *Factory) DefaultConfig() *ai.ProviderConfig {
	return &ai.ProviderConfig{Name: Name, Type: Name}
}
