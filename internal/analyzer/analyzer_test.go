package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestCountLines(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\r\nb\r\n", 2},
		{"a\rb", 2},
		{"\n\n", 2},
		{"a\u2028b", 2},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.code), func(t *testing.T) {
			if got := CountLines(tt.code); got != tt.want {
				t.Errorf("CountLines(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewRuby()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(NewGolang()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(NewRuby()); err == nil {
		t.Error("Expected duplicate registration error")
	}

	if want := []string{"ruby", "go"}; !reflect.DeepEqual(r.Languages(), want) {
		t.Errorf("Expected %v, got %v", want, r.Languages())
	}
	if _, ok := r.Get("fortran"); ok {
		t.Error("Expected fortran to be missing")
	}
	if a, ok := r.Get("go"); !ok || a.Language() != "go" {
		t.Error("Expected go analyzer")
	}
}

func TestRuby_Analyze(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantLines int
		wantIssue bool
		wantLine  int
	}{
		{"clean", "puts 'hi'\nputs 'bye'\n", 2, false, 0},
		{"eval on line 2", "x = 1\neval(\"x + 1\")", 2, true, 2},
		{"eval without paren is fine", "instance_eval do\nend", 2, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := NewRuby().Analyze(context.Background(), tt.code)
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			if report.Metrics[MetricLineCount] != tt.wantLines {
				t.Errorf("Expected %d lines, got %d", tt.wantLines, report.Metrics[MetricLineCount])
			}
			if got := len(report.Issues) > 0; got != tt.wantIssue {
				t.Fatalf("Expected issue=%v, got %v", tt.wantIssue, report.Issues)
			}
			if tt.wantIssue {
				issue := report.Issues[0]
				if issue.Code != IssueRubyEval || issue.Message != "Use of 'eval' is highly discouraged." {
					t.Errorf("Unexpected issue: %+v", issue)
				}
				if issue.LineNumber != tt.wantLine {
					t.Errorf("Expected line %d, got %d", tt.wantLine, issue.LineNumber)
				}
			}
		})
	}
}

func longGoFunc(name string, statements int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "func %s() {\n", name)
	for i := 0; i < statements; i++ {
		fmt.Fprintf(&b, "\t_ = %d\n", i)
	}
	b.WriteString("}\n")
	return b.String()
}

func TestGolang_Analyze(t *testing.T) {
	t.Run("counts functions", func(t *testing.T) {
		code := "package demo\n\nfunc a() {}\n\nfunc b() int { return 1 }\n"
		report, err := NewGolang().Analyze(context.Background(), code)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if report.Metrics[MetricFuncCount] != 2 {
			t.Errorf("Expected 2 functions, got %d", report.Metrics[MetricFuncCount])
		}
		if report.Metrics[MetricNodeCount] == 0 {
			t.Error("Expected non-zero node count")
		}
		if report.Metrics[MetricLineCount] != 5 {
			t.Errorf("Expected 5 lines, got %d", report.Metrics[MetricLineCount])
		}
		if len(report.Issues) != 0 {
			t.Errorf("Expected no issues, got %v", report.Issues)
		}
	})

	t.Run("snippet without package clause", func(t *testing.T) {
		code := "func ok() {}\n" + longGoFunc("big", 21)
		report, err := NewGolang().Analyze(context.Background(), code)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if len(report.Issues) != 1 {
			t.Fatalf("Expected 1 issue, got %v", report.Issues)
		}
		issue := report.Issues[0]
		if issue.Code != IssueGoLongFunction {
			t.Errorf("Expected %s, got %s", IssueGoLongFunction, issue.Code)
		}
		if want := "Function 'big' is too long (21 lines). Consider refactoring."; issue.Message != want {
			t.Errorf("Expected %q, got %q", want, issue.Message)
		}
		if issue.LineNumber != 2 {
			t.Errorf("Expected line 2, got %d", issue.LineNumber)
		}
	})

	t.Run("twenty statements is not too long", func(t *testing.T) {
		report, err := NewGolang().Analyze(context.Background(), longGoFunc("edge", 20))
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if len(report.Issues) != 0 {
			t.Errorf("Expected no issues, got %v", report.Issues)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		report, err := NewGolang().Analyze(context.Background(), "func broken( {\n")
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if len(report.Issues) != 1 || report.Issues[0].Code != IssueGoSyntax {
			t.Fatalf("Expected syntax issue, got %v", report.Issues)
		}
		if !strings.HasPrefix(report.Issues[0].Message, "Syntax Error: ") {
			t.Errorf("Unexpected message %q", report.Issues[0].Message)
		}
		if report.Issues[0].LineNumber < 1 {
			t.Errorf("Expected a line number in the snippet, got %d", report.Issues[0].LineNumber)
		}
	})
}

func TestRemote_Analyze(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("Expected /analyze, got %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		_, _ = io.WriteString(w, `{"analysis":{"metrics":{"node_count":7},"issues":["Syntax Error: invalid syntax (<unknown>, line 1)","Function 'f' is too long (25 lines). Consider refactoring.",{"code":"PY100","message":"custom","line_number":3}]}}`)
	}))
	defer server.Close()

	py, err := NewPython(server.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("NewPython failed: %v", err)
	}

	report, err := py.Analyze(context.Background(), "x=1")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if gotBody != `{"code":"x=1"}` {
		t.Errorf("Unexpected request body %s", gotBody)
	}
	if report.Metrics[MetricNodeCount] != 7 {
		t.Errorf("Expected node_count 7, got %v", report.Metrics)
	}

	codes := make([]string, 0, len(report.Issues))
	for _, issue := range report.Issues {
		codes = append(codes, issue.Code)
	}
	if want := []string{IssuePythonSyntax, IssuePythonLongFunction, "PY100"}; !reflect.DeepEqual(codes, want) {
		t.Errorf("Expected codes %v, got %v", want, codes)
	}
	if report.Issues[2].LineNumber != 3 {
		t.Errorf("Expected line 3, got %d", report.Issues[2].LineNumber)
	}
}

func TestRemote_Errors(t *testing.T) {
	t.Run("upstream status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, "overloaded")
		}))
		defer server.Close()

		py, _ := NewPython(server.URL, time.Second)
		_, err := py.Analyze(context.Background(), "x=1")

		var re *RemoteError
		if !errors.As(err, &re) {
			t.Fatalf("Expected *RemoteError, got %T: %v", err, err)
		}
		if re.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", re.StatusCode)
		}
		if err.Error() != "Python Analyzer error: overloaded" {
			t.Errorf("Unexpected message %q", err.Error())
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		py, _ := NewPython(url, time.Second)
		_, err := py.Analyze(context.Background(), "x=1")

		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("Expected *TransportError, got %T: %v", err, err)
		}
		if !strings.HasPrefix(err.Error(), "Error communicating with Python Analyzer: ") {
			t.Errorf("Unexpected message %q", err.Error())
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		if _, err := NewPython("localhost:8001", time.Second); err == nil {
			t.Error("Expected error for URL without scheme")
		}
	})
}
