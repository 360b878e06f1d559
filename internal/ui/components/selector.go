package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/CodeLens/internal/ui/theme"
)

// Selector is a single-choice list whose option text is also its value
type Selector struct {
	Title    string
	Options  []string
	Selected int
	Focused  bool
	Width    int
	Height   int
}

// NewSelector creates an empty selector
func NewSelector(title string, width, height int) *Selector {
	return &Selector{
		Title:  title,
		Width:  width,
		Height: height,
	}
}

// Populate appends one option per item, keeping order
func (s *Selector) Populate(items []string) {
	s.Options = append(s.Options, items...)
}

// Len returns the number of options
func (s *Selector) Len() int {
	return len(s.Options)
}

// Value returns the selected option, or "" when the selector is empty
func (s *Selector) Value() string {
	if s.Selected < 0 || s.Selected >= len(s.Options) {
		return ""
	}
	return s.Options[s.Selected]
}

// SetFocused sets the focus state
func (s *Selector) SetFocused(focused bool) {
	s.Focused = focused
}

// MoveUp moves selection up
func (s *Selector) MoveUp() {
	if s.Selected > 0 {
		s.Selected--
	}
}

// MoveDown moves selection down
func (s *Selector) MoveDown() {
	if s.Selected < len(s.Options)-1 {
		s.Selected++
	}
}

// Render renders the selector
func (s *Selector) Render() string {
	styles := theme.GetStyles()

	lines := []string{styles.Header.Render(s.Title)}

	if len(s.Options) == 0 {
		lines = append(lines, styles.Muted.Render("(none)"))
	}

	start, end := s.window()
	for i := start; i < end; i++ {
		if i == s.Selected {
			lines = append(lines, styles.ListSelected.Render("> "+s.Options[i]))
			continue
		}
		lines = append(lines, styles.ListItem.Render("  "+s.Options[i]))
	}

	box := styles.Panel
	if s.Focused {
		box = styles.Focused
	}
	if s.Width > 0 {
		box = box.Width(s.Width)
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// window keeps the selected option visible when Height limits the rows
func (s *Selector) window() (int, int) {
	rows := s.Height - 1
	if rows <= 0 || len(s.Options) <= rows {
		return 0, len(s.Options)
	}
	start := s.Selected - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > len(s.Options) {
		start = len(s.Options) - rows
	}
	return start, start + rows
}

// String is the plain-text form used in logs
func (s *Selector) String() string {
	return s.Title + ": [" + strings.Join(s.Options, ", ") + "]"
}
