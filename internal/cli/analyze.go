package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/CodeLens/internal/api"
	"github.com/yildizm/CodeLens/internal/client"
	"github.com/yildizm/CodeLens/internal/formatter"
)

var (
	analyzeFile       string
	analyzeLanguage   string
	analyzeProvider   string
	analyzeTimeout    time.Duration
	analyzeOutputFile string
)

// extensionLanguages maps file extensions to analyzer languages
var extensionLanguages = map[string]string{
	".py":   "python",
	".rb":   "ruby",
	".js":   "javascript",
	".go":   "go",
	".java": "java",
	".ex":   "elixir",
}

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a source file",
		Long: `Send a source file to the CodeLens server and print the analysis.

The language is detected from the file extension unless --language is given.

Examples:
  codelens analyze --file app.rb
  codelens analyze --file script --language python --provider openai
  codelens analyze --file main.go --output markdown --output-file report.md`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "source file to analyze")
	cmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "", "language (detected from extension when empty)")
	cmd.Flags().StringVarP(&analyzeProvider, "provider", "p", "mock", "LLM provider for the refactoring suggestion")
	cmd.Flags().DurationVar(&analyzeTimeout, "timeout", 30*time.Second, "analysis timeout")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save output to file instead of stdout")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfig()
	if !cmd.Flags().Changed("timeout") && cfg.Client.AnalyzeTimeout > 0 {
		analyzeTimeout = cfg.Client.AnalyzeTimeout
	}

	language := analyzeLanguage
	if language == "" {
		detected, ok := detectLanguage(analyzeFile)
		if !ok {
			return fmt.Errorf("could not detect language for %s (use --language)", analyzeFile)
		}
		language = detected
	}

	code, err := readSource(analyzeFile)
	if err != nil {
		return err
	}

	c, err := client.New(getServerURL())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
	defer cancel()

	req := api.AnalysisRequest{Language: language, Provider: analyzeProvider, Code: code}
	output, err := analyzeAndFormat(ctx, c, req, analyzeFile)
	if err != nil {
		return err
	}

	if analyzeOutputFile != "" {
		if err := writeOutputToFile(output, analyzeOutputFile); err != nil {
			return err
		}
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Output saved to: %s\n", analyzeOutputFile)
		}
		return nil
	}

	_, err = cmd.OutOrStdout().Write(output)
	return err
}

// analyzeAndFormat runs one analysis and renders it in the selected format
func analyzeAndFormat(ctx context.Context, c *client.Client, req api.AnalysisRequest, source string) ([]byte, error) {
	log := newLogger("analyze")
	start := time.Now()

	resp, err := c.AnalyzeReport(ctx, req)
	if err != nil {
		log.Error("analysis of %s failed: %v", source, err)
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	log.Info("analyzed %s as %s in %s", source, req.Language, time.Since(start).Round(time.Millisecond))

	f, err := formatter.New(getOutputFormat(), formatter.Options{
		Color:  useColor(),
		Emoji:  !noEmoji,
		Source: source,
	})
	if err != nil {
		return nil, err
	}
	return f.Format(resp)
}

// detectLanguage maps a file name to a language by extension
func detectLanguage(path string) (string, bool) {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

func readSource(path string) (string, error) {
	if err := validateFilePath(path); err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}
	// #nosec G304 - path is validated above
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close file: %v\n", closeErr)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// validateFilePath validates that a file path is safe to read
func validateFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory")
	}
	return nil
}

// writeOutputToFile writes output bytes to the specified file path
func writeOutputToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
