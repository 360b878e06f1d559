// Package analyzer holds the per-language code analyzers.
package analyzer

import (
	"context"
	"fmt"
	"sync"

	"github.com/yildizm/CodeLens/internal/api"
)

// Metric and issue keys shared across analyzers
const (
	MetricLineCount = "line_count"
	MetricNodeCount = "node_count"
	MetricFuncCount = "func_count"
)

// longFunctionThreshold is the statement count above which a function is
// reported as too long.
const longFunctionThreshold = 20

// Analyzer performs static analysis for one language
type Analyzer interface {
	// Language returns the language key used in requests
	Language() string

	// Analyze inspects code and returns metrics and issues
	Analyze(ctx context.Context, code string) (*api.Report, error)
}

// Registry maps language keys to analyzers, preserving registration order
type Registry struct {
	mu        sync.RWMutex
	order     []string
	analyzers map[string]Analyzer
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{analyzers: make(map[string]Analyzer)}
}

// Register adds an analyzer under its language key
func (r *Registry) Register(a Analyzer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lang := a.Language()
	if lang == "" {
		return fmt.Errorf("analyzer has empty language")
	}
	if _, exists := r.analyzers[lang]; exists {
		return fmt.Errorf("analyzer for %s already registered", lang)
	}

	r.analyzers[lang] = a
	r.order = append(r.order, lang)
	return nil
}

// Get returns the analyzer for lang
func (r *Registry) Get(lang string) (Analyzer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.analyzers[lang]
	return a, ok
}

// Languages returns the registered languages in registration order
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	langs := make([]string, len(r.order))
	copy(langs, r.order)
	return langs
}

func newReport() *api.Report {
	return &api.Report{
		Metrics: make(map[string]int),
		Issues:  []api.Issue{},
	}
}

// CountLines counts lines the way Python's str.splitlines does: every line
// boundary ends a line, and a trailing boundary does not open a new one.
func CountLines(code string) int {
	count := 0
	pending := false
	runes := []rune(code)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			count++
			pending = false
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			count++
			pending = false
		default:
			pending = true
		}
	}
	if pending {
		count++
	}
	return count
}
