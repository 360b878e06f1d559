package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yildizm/CodeLens/internal/config"
	"github.com/yildizm/CodeLens/internal/emoji"
	"github.com/yildizm/CodeLens/internal/logger"
	"github.com/yildizm/CodeLens/internal/ui/theme"
)

const defaultServerURL = "http://localhost:8000"

var (
	cfgFile string
	noEmoji bool

	settings     = viper.New()
	globalConfig *config.Config
	baseLogger   *logrus.Logger
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	settings = viper.New()
	globalConfig = nil
	baseLogger = nil

	rootCmd := &cobra.Command{
		Use:   "codelens",
		Short: "Code analysis with refactoring suggestions",
		Long: `CodeLens sends code snippets to an analysis server which runs a
language analyzer and asks an LLM provider for a refactoring suggestion.

Running 'codelens' without a subcommand opens the interactive form, the same
as 'codelens ui'.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flags().Changed("no-emoji") {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)
			return initConfig()
		},
		RunE: runUI,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file path")
	flags.String("server", defaultServerURL, "CodeLens server URL")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.Bool("no-color", false, "disable colored output")
	flags.BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	flags.StringP("output", "o", "text", "output format (text, json, markdown, csv)")

	for _, name := range []string{"server", "verbose", "no-color", "output"} {
		_ = settings.BindPFlag(name, flags.Lookup(name))
	}
	settings.SetEnvPrefix("CODELENS")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	rootCmd.AddCommand(newUICommand())
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newLanguagesCommand())
	rootCmd.AddCommand(newProvidersCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

// initConfig loads the config file and layers it under flags and CODELENS_*
// variables: explicit flag, then environment, then file, then flag default.
func initConfig() error {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	globalConfig = cfg

	if cfg.Client.ServerURL != "" {
		settings.SetDefault("server", cfg.Client.ServerURL)
	}
	if cfg.Output.DefaultFormat != "" {
		settings.SetDefault("output", cfg.Output.DefaultFormat)
	}
	settings.SetDefault("verbose", cfg.Output.Verbose)
	settings.SetDefault("no-color", cfg.Output.ColorMode == "never")
	theme.SetColorDisabled(!useColor())

	baseLogger, err = logger.NewBase(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	return err
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "CodeLens %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// Global helpers
func isVerbose() bool {
	return settings.GetBool("verbose")
}

func getOutputFormat() string {
	return settings.GetString("output")
}

func getServerURL() string {
	if s := settings.GetString("server"); s != "" {
		return s
	}
	return defaultServerURL
}

// useColor reports whether terminal output should be colored
func useColor() bool {
	if globalConfig != nil && globalConfig.Output.ColorMode == "always" {
		return true
	}
	return !settings.GetBool("no-color")
}

func getConfig() *config.Config {
	if globalConfig == nil {
		return config.DefaultConfig()
	}
	return globalConfig
}

// newLogger returns a component logger on the shared sink. Before the sink
// is initialized everything is discarded.
func newLogger(component string) *logger.Logger {
	base := baseLogger
	if base == nil {
		base, _ = logger.NewBase(logger.Options{Output: io.Discard})
	}
	return logger.NewWithBase(component, base, isVerbose)
}
