package ui

import (
	"context"
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/CodeLens/internal/api"
)

// target identifies which selector a population call fills
type target int

const (
	targetLanguages target = iota
	targetProviders
)

func (t target) String() string {
	if t == targetProviders {
		return "providers"
	}
	return "languages"
}

func (t target) endpoint() string {
	if t == targetProviders {
		return api.PathSupportedProviders
	}
	return api.PathSupportedLanguages
}

// Message types shared by the model and its commands
type optionsLoadedMsg struct {
	target target
	items  []string
}

type optionsErrorMsg struct {
	target target
	err    error
}

type analysisCompleteMsg struct {
	raw json.RawMessage
}

type analysisErrorMsg struct {
	err error
}

// CreateLoadCommand creates a tea command that fills one selector
func CreateLoadCommand(ctx context.Context, backend API, t target) tea.Cmd {
	return func() tea.Msg {
		var (
			items []string
			err   error
		)
		if t == targetProviders {
			items, err = backend.SupportedProviders(ctx)
		} else {
			items, err = backend.SupportedLanguages(ctx)
		}
		if err != nil {
			return optionsErrorMsg{target: t, err: err}
		}
		return optionsLoadedMsg{target: t, items: items}
	}
}

// CreateAnalysisCommand creates a tea command that performs one submit
func CreateAnalysisCommand(ctx context.Context, backend API, req api.AnalysisRequest) tea.Cmd {
	return func() tea.Msg {
		raw, err := backend.Analyze(ctx, req)
		if err != nil {
			return analysisErrorMsg{err: err}
		}
		return analysisCompleteMsg{raw: raw}
	}
}
