package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yildizm/CodeLens/internal/ai"
	"github.com/yildizm/CodeLens/internal/ai/providers/mock"
	"github.com/yildizm/CodeLens/internal/ai/providers/ollama"
	"github.com/yildizm/CodeLens/internal/ai/providers/openai"
	"github.com/yildizm/CodeLens/internal/analyzer"
	"github.com/yildizm/CodeLens/internal/config"
	"github.com/yildizm/CodeLens/internal/emoji"
	"github.com/yildizm/CodeLens/internal/server"
)

var serveAddr string

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the CodeLens analysis server",
		Long: `Run the HTTP backend that serves the language and provider lists,
the analysis endpoint, and the web form.

Analyzers and providers come from the config file: ruby and go run in
process, python is forwarded to analyzers.python.url, mock and openai are
always available, and ollama is added when ai.ollama.enabled is set.

Examples:
  codelens serve
  codelens serve --addr :9000
  CODELENS_AI_OPENAI_API_KEY=sk-... codelens serve`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfig()
	log := newLogger("serve")

	serverCfg := cfg.Server
	if serveAddr != "" {
		serverCfg.Addr = serveAddr
	}

	analyzers, err := buildAnalyzers(cfg.Analyzers)
	if err != nil {
		return err
	}
	providers, err := buildProviders(cfg.AI)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Config:    serverCfg,
		Analyzers: analyzers,
		Providers: providers,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s CodeLens server on %s (languages: %v, providers: %v)\n",
		emoji.GetEmoji("server"), serverCfg.Addr, analyzers.Languages(), providers.List())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

// buildAnalyzers registers analyzers in listing order: python, ruby, go
func buildAnalyzers(cfg config.AnalyzersConfig) (*analyzer.Registry, error) {
	reg := analyzer.NewRegistry()

	if cfg.Python.URL != "" {
		py, err := analyzer.NewPython(cfg.Python.URL, cfg.Python.Timeout)
		if err != nil {
			return nil, fmt.Errorf("python analyzer: %w", err)
		}
		if err := reg.Register(py); err != nil {
			return nil, err
		}
	}
	if cfg.Ruby {
		if err := reg.Register(analyzer.NewRuby()); err != nil {
			return nil, err
		}
	}
	if cfg.Go {
		if err := reg.Register(analyzer.NewGolang()); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// buildProviders registers mock, openai and, when enabled, ollama, then
// applies the configured default
func buildProviders(cfg config.AIConfig) (*ai.Registry, error) {
	reg := ai.NewRegistry()

	if err := reg.RegisterFactory(mock.NewFactory(), nil); err != nil {
		return nil, err
	}

	openaiCfg := &ai.ProviderConfig{
		Name:        openai.Name,
		Type:        openai.Name,
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAI.Timeout,
	}
	if err := reg.RegisterFactory(openai.NewFactory(), openaiCfg); err != nil {
		return nil, err
	}

	if cfg.Ollama.Enabled {
		ollamaCfg := &ai.ProviderConfig{
			Name:    ollama.Name,
			Type:    ollama.Name,
			BaseURL: cfg.Ollama.Host,
			Model:   cfg.Ollama.Model,
		}
		if err := reg.RegisterFactory(ollama.NewFactory(), ollamaCfg); err != nil {
			return nil, err
		}
	}

	if cfg.DefaultProvider != "" {
		if err := reg.SetDefault(cfg.DefaultProvider); err != nil {
			return nil, fmt.Errorf("default provider %q: %w", cfg.DefaultProvider, err)
		}
	}
	return reg, nil
}
