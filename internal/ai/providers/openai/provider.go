// Package openai implements the openai provider on the official SDK.
package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/yildizm/CodeLens/internal/ai"
)

const (
	// Name is the registry name of the openai provider
	Name = "openai"

	// Placeholder is returned when no API key is configured
	Placeholder = "[OpenAI Placeholder] An advanced AI suggestion for your code would appear here."
)

// Provider asks an OpenAI-compatible chat model for a suggestion
type Provider struct {
	config *Config
	client *openai.Client
}

// New creates a provider. Without an API key no client is built and
// Suggest returns Placeholder.
func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{config: config}
	if config.APIKey == "" {
		return p, nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(config.BaseURL),
		option.WithMaxRetries(config.MaxRetries),
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	client := openai.NewClient(opts...)
	p.client = &client
	return p, nil
}

func (p *Provider) Name() string {
	return Name
}

// Suggest sends the refactoring prompt as a chat completion
func (p *Provider) Suggest(ctx context.Context, req *ai.SuggestionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if p.client == nil {
		return Placeholder, nil
	}

	prompt := ai.NewRefactoringPattern(req).Build()

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.SystemPrompt),
			openai.UserMessage(prompt.String()),
		},
		Temperature: openai.Float(p.config.Temperature),
		MaxTokens:   openai.Int(int64(p.config.MaxTokens)),
	})
	if err != nil {
		return "", wrapError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ai.NewProviderError(ai.ErrTypeEmptyResponse, "no completion returned", Name)
	}

	return ai.ParseSuggestion(resp.Choices[0].Message.Content), nil
}

func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ai.NewProviderErrorWithCause(ai.ErrTypeTimeout, "request timed out", Name, err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		pe := ai.NewProviderErrorWithCause(ai.ErrTypeProvider, "chat completion failed", Name, err)
		pe.StatusCode = apiErr.StatusCode
		pe.Retryable = apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
		return pe
	}

	return ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "chat completion request failed", Name, err)
}

// Factory implements ai.ProviderFactory for OpenAI
type Factory struct{}

// NewFactory creates a new OpenAI provider factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates a new OpenAI provider instance with the given config
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
