package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/views/comment"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/views/search"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	searchView  *search.View
	commentView *comment.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		searchView:  search.NewView(s, km, ports.Repository, ports.Search),
		commentView: comment.NewView(s, km, ports.Repository, ports.ImageBaseURL),
		currentView: messages.ViewSearch,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("imgscout"),
		a.searchView.Init(),
	)
}

// Update implements tea.Model.
// Channel events are routed to the view that owns them and then taken from
// their cell, so a later subscriber does not see them replayed.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.PageLoaded:
		a.searchView, cmd = a.searchView.Update(msg)
		a.ports.Repository.Images().Take()
		return a, cmd

	case messages.SearchFailed:
		a.searchView, cmd = a.searchView.Update(msg)
		a.ports.Repository.Failures().Take()
		return a, cmd

	case messages.CommentLoaded:
		a.commentView, cmd = a.commentView.Update(msg)
		a.ports.Repository.CommentLookups().Take()
		return a, cmd

	case messages.CommentSaved:
		a.commentView, cmd = a.commentView.Update(msg)
		a.ports.Repository.CommentWrites().Take()
		return a, cmd

	case messages.ImageSelected:
		a.currentView = messages.ViewComment
		return a, a.commentView.Open(msg.Image)

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewHelp:
		if keymap.Matches(msg.String(), a.keymap.Back) || keymap.Matches(msg.String(), a.keymap.Help) {
			a.currentView = messages.ViewSearch
		}
		return a, nil

	case messages.ViewSearch:
		if !a.searchView.InputFocused() && keymap.Matches(msg.String(), a.keymap.Help) {
			a.currentView = messages.ViewHelp
			return a, nil
		}
	case messages.ViewComment:
	}

	return a, a.forward(msg)
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewComment:
		a.commentView, cmd = a.commentView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewComment:
		return a.commentView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewSearch:
	}
	return a.searchView.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Search:
  (type)      Search as you type
  enter       Search now
  ↓, esc      Browse results

Results:
  j/k, ↑/↓    Navigate, loading more near the end
  enter       Comment on the selected image
  /           New search
  q           Quit

Comment:
  ctrl+s      Save
  esc         Back to results

` + a.styles.Help.Render("[esc] back")
}

// Run starts the TUI and feeds it the repository's events until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	cancel := Subscribe(a.ports.Repository, p)
	defer cancel()

	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// SearchView returns the search view.
func (a *App) SearchView() *search.View {
	return a.searchView
}

// CommentView returns the comment editor view.
func (a *App) CommentView() *comment.View {
	return a.commentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.searchView.SetDimensions(width, height)
	a.commentView.SetDimensions(width, height)
}
