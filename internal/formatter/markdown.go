package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/CodeLens/internal/api"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	source string
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown(source string) Formatter {
	return &markdownFormatter{source: source}
}

func (f *markdownFormatter) Format(resp *api.AnalysisResponse) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Code Analysis Report\n\n")
	fmt.Fprintf(&b, "- **Language:** %s\n", resp.Language)
	if f.source != "" {
		fmt.Fprintf(&b, "- **Source:** `%s`\n", f.source)
	}
	b.WriteString("\n")

	f.writeMetrics(&b, resp.Analysis.Metrics)
	f.writeIssues(&b, resp.Analysis.Issues)

	if s := resp.Analysis.RefactoringSuggestion; s != "" {
		b.WriteString("## Refactoring Suggestion\n\n")
		b.WriteString(strings.TrimRight(s, "\n") + "\n")
	}

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeMetrics(b *strings.Builder, metrics map[string]int) {
	b.WriteString("## Metrics\n\n")
	keys := sortedMetricKeys(metrics)
	if len(keys) == 0 {
		b.WriteString("_No metrics reported._\n\n")
		return
	}

	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	for _, k := range keys {
		fmt.Fprintf(b, "| %s | %d |\n", metricLabel(k), metrics[k])
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeIssues(b *strings.Builder, issues []api.Issue) {
	b.WriteString("## Issues\n\n")
	if len(issues) == 0 {
		b.WriteString("_No issues found._\n\n")
		return
	}

	b.WriteString("| Code | Line | Message |\n")
	b.WriteString("|------|------|---------|\n")
	for _, issue := range issues {
		line := "-"
		if issue.LineNumber > 0 {
			line = fmt.Sprintf("%d", issue.LineNumber)
		}
		fmt.Fprintf(b, "| %s | %s | %s |\n", issue.Code, line, escapeTableCell(issue.Message))
	}
	b.WriteString("\n")
}

func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
