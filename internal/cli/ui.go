package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yildizm/CodeLens/internal/client"
	"github.com/yildizm/CodeLens/internal/logger"
	"github.com/yildizm/CodeLens/internal/ui"
	"github.com/yildizm/CodeLens/internal/ui/theme"
)

func newUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive analysis form",
		Long: `Open a terminal form that lists the server's languages and providers,
takes a code snippet, and shows the analysis result as indented JSON.

Keys: tab / shift+tab move focus, up/down pick a language or provider,
ctrl+s submits, ctrl+c quits.

Examples:
  codelens ui
  codelens ui --server http://analysis.internal:8000`,
		Args: cobra.NoArgs,
		RunE: runUI,
	}
}

func runUI(cmd *cobra.Command, args []string) error {
	cfg := getConfig()

	if cfg.Output.Theme != "" && !theme.SetThemeByName(cfg.Output.Theme) {
		return fmt.Errorf("unknown theme %q (available: %s)", cfg.Output.Theme, strings.Join(theme.GetAvailableThemes(), ", "))
	}

	c, err := client.New(getServerURL(), client.WithTimeout(cfg.Client.Timeout))
	if err != nil {
		return err
	}

	log, closeLog, err := newUILogger(cfg.Logging.File)
	if err != nil {
		return err
	}
	defer closeLog()

	log.Info("starting ui against %s", c.BaseURL())

	if err := ui.Run(c, ui.Options{Context: cmd.Context(), Logger: log}); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

// newUILogger logs to path, or nowhere when path is empty. Writing to
// stderr would corrupt the alternate screen.
func newUILogger(path string) (*logger.Logger, func(), error) {
	var out io.Writer = io.Discard
	closeFn := func() {}

	if path != "" {
		cleanPath := filepath.Clean(path)
		// #nosec G304 - log path comes from the user's own config
		f, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}

	cfg := getConfig()
	base, err := logger.NewBase(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	// Info is always written when a log file is set.
	return logger.NewWithBase("cli", base, func() bool { return path != "" }), closeFn, nil
}
