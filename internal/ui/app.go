package ui

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/CodeLens/internal/api"
	"github.com/yildizm/CodeLens/internal/client"
	"github.com/yildizm/CodeLens/internal/emoji"
	"github.com/yildizm/CodeLens/internal/logger"
	"github.com/yildizm/CodeLens/internal/ui/components"
	"github.com/yildizm/CodeLens/internal/ui/theme"
)

// StatusAnalyzing is shown while a submit is in flight
const StatusAnalyzing = "Analyzing..."

// API is the part of the CodeLens backend the controller depends on
type API interface {
	SupportedLanguages(ctx context.Context) ([]string, error)
	SupportedProviders(ctx context.Context) ([]string, error)
	Analyze(ctx context.Context, req api.AnalysisRequest) (json.RawMessage, error)
}

type focusArea int

const (
	focusLanguage focusArea = iota
	focusProvider
	focusCode
	focusCount
)

// Options configures the controller
type Options struct {
	// Context bounds every request the controller issues
	Context context.Context
	Logger  *logger.Logger
	Width   int
	Height  int
}

// Model is the analysis form: two selectors filled from the server, a code
// input, and a results region.
type Model struct {
	backend API
	ctx     context.Context
	log     *logger.Logger

	languages *components.Selector
	providers *components.Selector
	code      textarea.Model
	results   *components.Results
	spinner   spinner.Model
	help      help.Model
	keys      keyMap

	focus    focusArea
	inFlight int
	width    int
	height   int
	quitting bool
}

// New creates the controller. Nothing is fetched until Init runs.
func New(backend API, opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	code := textarea.New()
	code.Placeholder = "Paste code to analyze..."
	code.ShowLineNumbers = true
	code.CharLimit = 0

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		backend:   backend,
		ctx:       ctx,
		log:       log.WithComponent("ui"),
		languages: components.NewSelector("Language", 0, 8),
		providers: components.NewSelector("Provider", 0, 8),
		code:      code,
		results:   components.NewResults("Results", 0, 0),
		spinner:   spin,
		help:      help.New(),
		keys:      defaultKeyMap(),
	}
	m.applyFocus()
	m.resize(opts.Width, opts.Height)
	return m
}

// Init issues the two population calls. They are independent: each fills
// only its own selector and neither waits for the other.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		CreateLoadCommand(m.ctx, m.backend, targetLanguages),
		CreateLoadCommand(m.ctx, m.backend, targetProviders),
		textarea.Blink,
	)
}

// Submit hides the results region, marks it in progress, and returns the
// command that posts the current form state. Concurrent submits are not
// guarded; whichever response arrives last is displayed.
func (m *Model) Submit() tea.Cmd {
	req := api.AnalysisRequest{
		Language: m.languages.Value(),
		Provider: m.providers.Value(),
		Code:     m.code.Value(),
	}

	m.results.Hide(StatusAnalyzing)
	m.inFlight++

	m.log.DebugWithFields("submitting analysis", []logger.Field{
		logger.F("language", req.Language),
		logger.F("provider", req.Provider),
		logger.F("code_bytes", len(req.Code)),
	})

	return tea.Batch(CreateAnalysisCommand(m.ctx, m.backend, req), m.spinner.Tick)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case optionsLoadedMsg:
		m.selector(msg.target).Populate(msg.items)
		m.log.DebugWithFields("selector populated", []logger.Field{
			logger.F("target", msg.target.String()),
			logger.Count(len(msg.items)),
		})
		return m, nil

	case optionsErrorMsg:
		m.log.ErrorWithFields("failed to load options", []logger.Field{
			logger.F("endpoint", msg.target.endpoint()),
			logger.Error(msg.err),
		})
		return m, nil

	case analysisCompleteMsg:
		m.finish()
		text, err := client.Indent(msg.raw)
		if err != nil {
			m.results.Show(errorText(err), true)
			return m, nil
		}
		m.results.Show(text, false)
		return m, nil

	case analysisErrorMsg:
		m.finish()
		m.results.Show(errorText(msg.err), true)
		return m, nil

	case spinner.TickMsg:
		if m.inFlight == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == focusCode {
		var cmd tea.Cmd
		m.code, cmd = m.code.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit

	case key.Matches(msg, m.keys.Analyze):
		return m.Submit()

	case key.Matches(msg, m.keys.NextFocus):
		m.focus = (m.focus + 1) % focusCount
		return m.applyFocus()

	case key.Matches(msg, m.keys.PrevFocus):
		m.focus = (m.focus + focusCount - 1) % focusCount
		return m.applyFocus()

	case key.Matches(msg, m.keys.ScrollUp):
		m.results.ScrollUp()
		return nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.results.ScrollDown()
		return nil
	}

	if m.focus != focusCode {
		sel := m.focusedSelector()
		switch {
		case key.Matches(msg, m.keys.Up):
			sel.MoveUp()
		case key.Matches(msg, m.keys.Down):
			sel.MoveDown()
		}
		return nil
	}

	var cmd tea.Cmd
	m.code, cmd = m.code.Update(msg)
	return cmd
}

// View renders the form
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	styles := theme.GetStyles()

	title := styles.Title.Render(emoji.GetEmoji("lens") + " CodeLens")
	selectors := lipgloss.JoinHorizontal(lipgloss.Top, m.languages.Render(), " ", m.providers.Render())

	codeBox := styles.Panel
	if m.focus == focusCode {
		codeBox = styles.Focused
	}

	sections := []string{title, selectors, codeBox.Render(m.code.View())}

	if m.inFlight > 0 && !m.results.Visible {
		sections = append(sections, m.spinner.View()+m.results.Render())
	} else if out := m.results.Render(); out != "" {
		sections = append(sections, out)
	}

	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Languages returns the language options in display order
func (m *Model) Languages() []string {
	return m.languages.Options
}

// Providers returns the provider options in display order
func (m *Model) Providers() []string {
	return m.providers.Options
}

// ResultsVisible reports whether the results region is shown
func (m *Model) ResultsVisible() bool {
	return m.results.Visible
}

// ResultsText returns the status or result text
func (m *Model) ResultsText() string {
	return m.results.Text
}

// SetCode replaces the code input
func (m *Model) SetCode(code string) {
	m.code.SetValue(code)
}

// SelectLanguage selects the named language option if present
func (m *Model) SelectLanguage(name string) bool {
	return selectOption(m.languages, name)
}

// SelectProvider selects the named provider option if present
func (m *Model) SelectProvider(name string) bool {
	return selectOption(m.providers, name)
}

func selectOption(sel *components.Selector, name string) bool {
	for i, opt := range sel.Options {
		if opt == name {
			sel.Selected = i
			return true
		}
	}
	return false
}

func (m *Model) selector(t target) *components.Selector {
	if t == targetProviders {
		return m.providers
	}
	return m.languages
}

func (m *Model) focusedSelector() *components.Selector {
	if m.focus == focusProvider {
		return m.providers
	}
	return m.languages
}

func (m *Model) applyFocus() tea.Cmd {
	m.languages.SetFocused(m.focus == focusLanguage)
	m.providers.SetFocused(m.focus == focusProvider)
	if m.focus == focusCode {
		return m.code.Focus()
	}
	m.code.Blur()
	return nil
}

func (m *Model) finish() {
	if m.inFlight > 0 {
		m.inFlight--
	}
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height

	half := (width - 6) / 2
	m.languages.Width = half
	m.providers.Width = half

	m.code.SetWidth(width - 4)
	m.code.SetHeight(height / 3)

	m.results.Width = width - 2
	m.results.Height = height - height/3 - 16
	m.help.Width = width
}

func errorText(err error) string {
	return "Error: " + err.Error()
}

// Run starts the controller in the alternate screen and blocks until quit
func Run(backend API, opts Options) error {
	model := New(backend, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(model.ctx))
	_, err := p.Run()
	return err
}
