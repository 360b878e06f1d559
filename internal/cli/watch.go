package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/yildizm/CodeLens/internal/api"
	"github.com/yildizm/CodeLens/internal/client"
	"github.com/yildizm/CodeLens/internal/emoji"
	"github.com/yildizm/CodeLens/internal/logger"
)

var (
	watchDirectory string
	watchProvider  string
)

// fallbackLanguages is used when the server's language list is unavailable
var fallbackLanguages = []string{"python", "ruby"}

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Analyze files as they change",
		Long: `Watch a directory tree and analyze every supported source file that is
created or written. Press Ctrl+C to stop watching.

Examples:
  codelens watch
  codelens watch --directory ./src --provider openai`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchDirectory, "directory", "d", ".", "directory to watch recursively")
	cmd.Flags().StringVarP(&watchProvider, "provider", "p", "mock", "LLM provider for the refactoring suggestion")

	return cmd
}

// fileWatcher analyzes supported files in response to fsnotify events
type fileWatcher struct {
	client    *client.Client
	provider  string
	timeout   time.Duration
	supported map[string]bool
	out       io.Writer
	log       *logger.Logger
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := getConfig()

	c, err := client.New(getServerURL())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &fileWatcher{
		client:   c,
		provider: watchProvider,
		timeout:  cfg.Client.AnalyzeTimeout,
		out:      cmd.OutOrStdout(),
		log:      newLogger("watch"),
	}
	w.supported = w.loadSupportedLanguages(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer cleanupWatcher(watcher)

	count, err := addRecursive(watcher, watchDirectory)
	if err != nil {
		return err
	}

	fmt.Fprintf(w.out, "%s Watching %s (%d directories) for changes...\n", emoji.GetEmoji("watch"), watchDirectory, count)
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop...\n\n")
	}

	return w.run(ctx, watcher)
}

// loadSupportedLanguages asks the server which languages it analyzes
func (w *fileWatcher) loadSupportedLanguages(ctx context.Context) map[string]bool {
	langs, err := w.client.SupportedLanguages(ctx)
	if err != nil || len(langs) == 0 {
		w.log.Warn("could not fetch supported languages, using %s: %v", strings.Join(fallbackLanguages, ", "), err)
		langs = fallbackLanguages
	}

	supported := make(map[string]bool, len(langs))
	for _, l := range langs {
		supported[l] = true
	}
	return supported
}

// run is the watch loop; it returns when ctx is cancelled
func (w *fileWatcher) run(ctx context.Context, watcher *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if _, err := addRecursive(watcher, event.Name); err != nil {
						w.log.Warn("failed to watch new directory %s: %v", event.Name, err)
					}
					continue
				}
			}
			w.handleEvent(ctx, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Warn("watcher error: %v", err)
		}
	}
}

// handleEvent analyzes the file behind a write or create event
func (w *fileWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return
	}

	language, ok := detectLanguage(event.Name)
	if !ok || !w.supported[language] {
		return
	}

	code, err := readSource(event.Name)
	if err != nil {
		w.log.Warn("skipping %s: %v", event.Name, err)
		return
	}

	fmt.Fprintf(w.out, "\n%s Detected change in %s, analyzing...\n", emoji.GetEmoji("file"), event.Name)

	reqCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	req := api.AnalysisRequest{Language: language, Provider: w.provider, Code: code}
	output, err := analyzeAndFormat(reqCtx, w.client, req, event.Name)
	if err != nil {
		fmt.Fprintf(w.out, "%s Error: %v\n", emoji.GetEmoji("error"), err)
		return
	}
	_, _ = w.out.Write(output)
}

// addRecursive watches root and every directory below it, skipping hidden
// directories. It returns the number of directories added.
func addRecursive(watcher *fsnotify.Watcher, root string) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", root)
	}

	count := 0
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		count++
		return nil
	})
	return count, err
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}
