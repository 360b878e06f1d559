// Package formatter renders analysis reports for the CLI.
package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yildizm/CodeLens/internal/api"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(resp *api.AnalysisResponse) ([]byte, error)
}

// Options selects and tunes a formatter
type Options struct {
	Color bool
	Emoji bool
	// Source names the analyzed file, when there is one
	Source string
}

// New returns the formatter for format
func New(format string, opts Options) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewTerminal(opts), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(opts.Source), nil
	case "csv":
		return NewCSV(opts.Source), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// sortedMetricKeys returns metric names in a stable order
func sortedMetricKeys(metrics map[string]int) []string {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// metricLabel turns "line_count" into "Line count"
func metricLabel(key string) string {
	label := strings.ReplaceAll(key, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func issueLocation(issue api.Issue) string {
	if issue.LineNumber > 0 {
		return fmt.Sprintf("line %d", issue.LineNumber)
	}
	return ""
}
