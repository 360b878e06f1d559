// Package ollama implements the ollama provider on go-ollama.
package ollama

import (
	"context"
	"net/url"
	"strings"

	"github.com/JexSrs/go-ollama"
	"github.com/yildizm/CodeLens/internal/ai"
)

// Name is the registry name of the ollama provider
const Name = "ollama"

// Provider asks a local Ollama model for a suggestion
type Provider struct {
	config *Config
	client *ollama.Ollama
}

// New creates a provider for the Ollama server at config.BaseURL
func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, ai.NewConfigurationError(Name, "base_url", err.Error())
	}

	return &Provider{
		config: config,
		client: ollama.New(*u),
	}, nil
}

func (p *Provider) Name() string {
	return Name
}

type generateResult struct {
	text string
	err  error
}

// Suggest runs a single non-streaming generation. The client has no context
// support, so cancellation abandons the call rather than aborting it.
func (p *Provider) Suggest(ctx context.Context, req *ai.SuggestionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	prompt := ai.NewRefactoringPattern(req).Build()

	done := make(chan generateResult, 1)
	go func() {
		text, err := p.generate(prompt.SystemPrompt, prompt.String())
		done <- generateResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ai.NewProviderErrorWithCause(ai.ErrTypeTimeout, "generation did not finish", Name, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		return ai.ParseSuggestion(res.text), nil
	}
}

func (p *Provider) generate(system, prompt string) (string, error) {
	res, err := p.client.Generate(
		p.client.Generate.WithModel(p.config.Model),
		p.client.Generate.WithSystem(system),
		p.client.Generate.WithPrompt(prompt),
	)
	if err != nil {
		return "", ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "generate request failed", Name, err)
	}

	if !res.Done {
		return "", ai.NewProviderError(ai.ErrTypeProvider, "generation not finished", Name)
	}
	if strings.TrimSpace(res.Response) == "" {
		return "", ai.NewProviderError(ai.ErrTypeEmptyResponse, "empty response", Name)
	}
	return res.Response, nil
}

// Factory implements the ProviderFactory interface for Ollama
type Factory struct{}

// NewFactory creates a new Ollama provider factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates a new Ollama provider instance with the given config
func (f *Factory) Create(config *ai.ProviderConfig) (ai.Provider, error) {
	if config == nil {
		config = f.DefaultConfig()
	}
	return New(FromProviderConfig(config))
}

func (f *Factory) Type() string {
	return Name
}

func (f *Factory) DefaultConfig() *ai.ProviderConfig {
	return DefaultConfig().ToProviderConfig()
}
