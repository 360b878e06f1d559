package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/CodeLens/internal/api"
	"github.com/yildizm/go-termfmt"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts   *termfmt.TerminalOptions
	source string
}

// NewTerminal creates a new terminal formatter
func NewTerminal(o Options) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = o.Color
	opts.Emoji = o.Emoji
	return &terminalFormatter{opts: opts, source: o.Source}
}

func (f *terminalFormatter) Format(resp *api.AnalysisResponse) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, resp.Language)
	f.writeMetrics(&b, resp.Analysis.Metrics)
	f.writeIssues(&b, resp.Analysis.Issues)
	f.writeSuggestion(&b, resp.Analysis.RefactoringSuggestion)

	return []byte(b.String()), nil
}

// writeHeader writes a boxed title
func (f *terminalFormatter) writeHeader(b *strings.Builder, language string) {
	header := "Code Analysis: " + language
	if f.source != "" {
		header += " (" + f.source + ")"
	}
	width := len([]rune(header))

	b.WriteString("╔" + strings.Repeat("═", width+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", width+2) + "╝\n\n")
}

func (f *terminalFormatter) writeMetrics(b *strings.Builder, metrics map[string]int) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Metrics\n")

	keys := sortedMetricKeys(metrics)
	if len(keys) == 0 {
		b.WriteString("└─ none\n\n")
		return
	}

	items := make([]termfmt.TreeItem, 0, len(keys))
	for i, k := range keys {
		items = append(items, termfmt.TreeItem{
			Label: metricLabel(k),
			Value: formatNumber(metrics[k]),
			Last:  i == len(keys)-1,
		})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeIssues(b *strings.Builder, issues []api.Issue) {
	if len(issues) == 0 {
		fmt.Fprintf(b, "%s No issues found\n\n", termfmt.GetEmoji("success", f.opts))
		return
	}

	fmt.Fprintf(b, "%s Issues (%d)\n", termfmt.GetEmoji("warning", f.opts), len(issues))

	items := make([]termfmt.TreeItem, 0, len(issues))
	for i, issue := range issues {
		label := issue.Message
		if issue.Code != "" {
			label = fmt.Sprintf("[%s] %s", issue.Code, issue.Message)
		}
		items = append(items, termfmt.TreeItem{
			Label: label,
			Value: issueLocation(issue),
			Last:  i == len(issues)-1,
		})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeSuggestion(b *strings.Builder, suggestion string) {
	if suggestion == "" {
		return
	}

	symbol := termfmt.GetEmoji("ai", f.opts)
	fmt.Fprintf(b, "%s Refactoring Suggestion\n", symbol)
	b.WriteString(strings.Repeat("─", 50) + "\n")
	b.WriteString(strings.TrimRight(suggestion, "\n") + "\n")
}

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}
