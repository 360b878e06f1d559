package analyzer

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/yildizm/CodeLens/internal/api"
)

// Go issue codes
const (
	IssueGoSyntax       = "GO000"
	IssueGoLongFunction = "GO001"
)

// Golang analyzes Go source with go/parser
type Golang struct{}

// NewGolang creates the go analyzer
func NewGolang() *Golang {
	return &Golang{}
}

func (g *Golang) Language() string {
	return "go"
}

// Analyze parses code and reports node and function counts plus long
// functions. Snippets without a package clause are parsed as package main.
func (g *Golang) Analyze(ctx context.Context, code string) (*api.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := newReport()
	report.Metrics[MetricLineCount] = CountLines(code)

	src, offset := withPackageClause(code)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "snippet.go", src, parser.SkipObjectResolution)
	if err != nil {
		report.Issues = append(report.Issues, syntaxIssue(err, offset))
		return report, nil
	}

	nodes, funcs := 0, 0
	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil {
			return false
		}
		nodes++

		fn, ok := n.(*ast.FuncDecl)
		if !ok {
			return true
		}
		funcs++

		if fn.Body != nil && len(fn.Body.List) > longFunctionThreshold {
			report.Issues = append(report.Issues, api.Issue{
				Code:       IssueGoLongFunction,
				Message:    fmt.Sprintf("Function '%s' is too long (%d lines). Consider refactoring.", fn.Name.Name, len(fn.Body.List)),
				LineNumber: fset.Position(fn.Pos()).Line - offset,
			})
		}
		return true
	})

	report.Metrics[MetricNodeCount] = nodes
	report.Metrics[MetricFuncCount] = funcs
	return report, nil
}

// withPackageClause prepends "package main" when code has none and returns
// the number of lines added.
func withPackageClause(code string) (string, int) {
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if strings.HasPrefix(trimmed, "package ") {
			return code, 0
		}
		break
	}
	return "package main\n" + code, 1
}

func syntaxIssue(err error, offset int) api.Issue {
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		line := list[0].Pos.Line - offset
		return api.Issue{
			Code:       IssueGoSyntax,
			Message:    fmt.Sprintf("Syntax Error: %s (line %d)", list[0].Msg, line),
			LineNumber: line,
		}
	}
	return api.Issue{Code: IssueGoSyntax, Message: "Syntax Error: " + err.Error()}
}
