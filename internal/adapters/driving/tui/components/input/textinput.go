// Package input holds the query field of the search view.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/styles"
)

const (
	queryLimit = 128
	labelWidth = 12
	minField   = 20
)

// QueryField is a single-line query editor. Update reports whether the
// trimmed query changed, which is what drives the search throttle.
type QueryField struct {
	model  textinput.Model
	styles *styles.Styles
	query  string
}

// NewQueryField returns a focused, empty field.
func NewQueryField(s *styles.Styles) *QueryField {
	if s == nil {
		s = styles.DefaultStyles()
	}
	m := textinput.New()
	m.Placeholder = "Search Imgur..."
	m.CharLimit = queryLimit
	m.Width = 50
	m.Focus()
	return &QueryField{model: m, styles: s}
}

func (f *QueryField) Init() tea.Cmd {
	return textinput.Blink
}

// Update feeds msg to the editor. Whitespace-only edits are not a change.
func (f *QueryField) Update(msg tea.Msg) (tea.Cmd, bool) {
	var cmd tea.Cmd
	f.model, cmd = f.model.Update(msg)
	q := strings.TrimSpace(f.model.Value())
	if q == f.query {
		return cmd, false
	}
	f.query = q
	return cmd, true
}

// Query is the trimmed text.
func (f *QueryField) Query() string { return f.query }

func (f *QueryField) Focus() tea.Cmd { return f.model.Focus() }

func (f *QueryField) Blur() { f.model.Blur() }

// SetWidth sizes the editor to the terminal, keeping room for the label.
func (f *QueryField) SetWidth(width int) {
	f.model.Width = max(width-labelWidth, minField)
}

func (f *QueryField) View() string {
	//nolint:misspell // lipgloss.Center
	return lipgloss.JoinHorizontal(lipgloss.Center,
		f.styles.Title.Render("Search: "),
		f.styles.InputField.Render(f.model.View()),
	)
}
