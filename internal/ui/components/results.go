package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/CodeLens/internal/ui/theme"
)

// Results is the output region: a visibility flag and its text
type Results struct {
	Title   string
	Visible bool
	Text    string
	Failed  bool
	Width   int
	Height  int
	offset  int
}

// NewResults creates a hidden, empty results region
func NewResults(title string, width, height int) *Results {
	return &Results{
		Title:  title,
		Width:  width,
		Height: height,
	}
}

// Hide hides the region and replaces its text with a status line
func (r *Results) Hide(status string) {
	r.Visible = false
	r.Text = status
	r.Failed = false
	r.offset = 0
}

// Show replaces the text and reveals the region
func (r *Results) Show(text string, failed bool) {
	r.Text = text
	r.Failed = failed
	r.Visible = true
	r.offset = 0
}

// ScrollDown scrolls the text one line down
func (r *Results) ScrollDown() {
	if r.offset < r.lineCount()-1 {
		r.offset++
	}
}

// ScrollUp scrolls the text one line up
func (r *Results) ScrollUp() {
	if r.offset > 0 {
		r.offset--
	}
}

func (r *Results) lineCount() int {
	return strings.Count(r.Text, "\n") + 1
}

// Render renders the region; a hidden region renders as its status line
func (r *Results) Render() string {
	styles := theme.GetStyles()

	if !r.Visible {
		if r.Text == "" {
			return ""
		}
		return styles.Info.Render(r.Text)
	}

	lines := strings.Split(r.Text, "\n")
	if r.offset < len(lines) {
		lines = lines[r.offset:]
	}
	if rows := r.Height - 2; rows > 0 && len(lines) > rows {
		lines = lines[:rows]
	}

	body := strings.Join(lines, "\n")
	if r.Failed {
		body = styles.Error.Render(body)
	} else {
		body = styles.Body.Render(body)
	}

	box := styles.Panel
	if r.Width > 0 {
		box = box.Width(r.Width)
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, styles.Header.Render(r.Title), body))
}
