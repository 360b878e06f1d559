package analyzer

import (
	"context"
	"strings"

	"github.com/yildizm/CodeLens/internal/api"
)

// Ruby issue codes
const (
	IssueRubyEval = "RB001"
)

// Ruby is a text-based ruby analyzer
type Ruby struct{}

// NewRuby creates the ruby analyzer
func NewRuby() *Ruby {
	return &Ruby{}
}

// Language returns "ruby"
func (r *Ruby) Language() string {
	return "ruby"
}

// Analyze counts lines and flags eval calls
func (r *Ruby) Analyze(ctx context.Context, code string) (*api.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := newReport()
	report.Metrics[MetricLineCount] = CountLines(code)

	if idx := strings.Index(code, "eval("); idx >= 0 {
		report.Issues = append(report.Issues, api.Issue{
			Code:       IssueRubyEval,
			Message:    "Use of 'eval' is highly discouraged.",
			LineNumber: strings.Count(code[:idx], "\n") + 1,
		})
	}

	return report, nil
}
