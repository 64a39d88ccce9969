// Package search provides the main search view for the TUI.
package search

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driving"
	"github.com/custodia-labs/imgscout/internal/core/services"
	"github.com/custodia-labs/imgscout/internal/logger"
)

// View is the search view: a throttled query input above a paginated image list.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryField
	list      *list.ImageList
	statusbar *status.Bar

	pager    *services.Pager
	throttle *services.Throttle
	now      func() time.Time

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a query, false = browsing results
}

// NewView creates a new search view issuing fetches through searcher.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searcher driving.Searcher,
	settings domain.SearchSettings,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryField(s),
		list:       list.NewImageList(s),
		statusbar:  status.NewBar(s, km),
		throttle:   services.NewThrottle(settings.Throttle),
		now:        time.Now,
		width:      80,
		height:     24,
		focusInput: true,
	}
	if searcher != nil {
		v.pager = services.NewPager(searcher, settings.LookAhead)
	}
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.PageLoaded:
		v.handlePageLoaded(msg.Result)
		return v, nil

	case messages.SearchFailed:
		v.handleSearchFailed(msg.Failure)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetErr(msg.Err)
		return v, nil
	}

	cmd, _ := v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		return v.handleInputKey(msg)
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(msg.String(), v.keymap.Down):
		v.list.MoveDown()
		v.scroll()
	case keymap.Matches(msg.String(), v.keymap.Comment):
		if item := v.list.SelectedItem(); item != nil {
			image := *item
			return v, func() tea.Msg { return messages.ImageSelected{Image: image} }
		}
	case keymap.Matches(msg.String(), v.keymap.NewSearch),
		keymap.Matches(msg.String(), v.keymap.Back):
		v.focus()
	case msg.String() == "q":
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		v.submit(v.input.Query())
		if v.list.Count() > 0 || v.loading() {
			v.blur()
		}
		return v, nil
	case tea.KeyDown, tea.KeyEsc:
		if v.list.Count() > 0 {
			v.blur()
		}
		return v, nil
	}

	cmd, changed := v.input.Update(msg)
	if changed && v.throttle.Accept(v.now()) {
		v.submit(v.input.Query())
	}
	return v, cmd
}

// submit starts a new search session for query.
func (v *View) submit(query string) {
	if v.pager == nil {
		v.err = ErrNoSearcher
		v.statusbar.SetErr(ErrNoSearcher)
		return
	}

	issued, err := v.pager.NewQuery(query)
	if err != nil {
		v.err = err
		v.statusbar.SetErr(err)
		return
	}
	if !issued {
		return
	}

	logger.Debug("tui: query %q as request %d", query, v.pager.Current())
	v.err = nil
	v.list.Reset()
	v.list.SetLoading(true)
	v.statusbar.SetState(status.StateLoading)
}

// scroll asks the pager for the next page after a downward move.
func (v *View) scroll() {
	if v.pager == nil {
		return
	}
	issued, err := v.pager.Scroll(v.list.ScrollEvent(1))
	if err != nil {
		v.err = err
		v.statusbar.SetErr(err)
		return
	}
	if issued {
		v.list.SetLoading(true)
	}
}

func (v *View) handlePageLoaded(res domain.PageResult) {
	if v.pager == nil || !v.pager.Accept(res) {
		return
	}
	v.err = nil
	v.list.SetItems(v.pager.Items())
	v.list.SetLoading(false)
	v.statusbar.SetResults(v.list.Count())
}

func (v *View) handleSearchFailed(f domain.SearchFailure) {
	if v.pager == nil || !v.pager.Reject(f) {
		return
	}
	v.err = &domain.SearchError{Code: f.Code}
	v.list.SetLoading(false)
	v.statusbar.SetError(f.Code)
}

func (v *View) loading() bool {
	return v.pager != nil && v.pager.State().IsLoadInProgress
}

func (v *View) focus() {
	v.focusInput = true
	v.input.Focus()
	v.statusbar.SetHints(v.keymap.ShortHelp())
}

func (v *View) blur() {
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetHints(v.keymap.ResultsHelp())
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("imgscout"),
		"",
		v.input.View(),
		"",
		v.list.View(),
		"",
		v.statusbar.View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-8) // header, input and status bar
	v.statusbar.SetWidth(width)
}

// Query returns the trimmed query text.
func (v *View) Query() string {
	return v.input.Query()
}

// Items returns the images loaded for the current session.
func (v *View) Items() []domain.ImageRecord {
	return v.list.Items()
}

// SelectedIndex returns the index of the selected image.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Loading reports whether a page fetch is in flight.
func (v *View) Loading() bool {
	return v.loading()
}

// Status returns the status bar message.
func (v *View) Status() string {
	return v.statusbar.Message()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
