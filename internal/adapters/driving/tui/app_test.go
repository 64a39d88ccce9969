package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/imgscout/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/services"
)

type stubCatalog struct {
	mu    sync.Mutex
	page  domain.ResultPage
	calls int
}

func (c *stubCatalog) FetchPage(context.Context, int, string, map[string]string) (domain.ResultPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.page, nil
}

type stubProbe bool

func (p stubProbe) IsReachable() bool { return bool(p) }

// chanSender collects messages the way a running program would receive them.
type chanSender chan tea.Msg

func (s chanSender) Send(msg tea.Msg) { s <- msg }

func (s chanSender) next(t *testing.T) tea.Msg {
	t.Helper()
	select {
	case msg := <-s:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func newTestApp(t *testing.T, catalog *stubCatalog, reachable bool) (*App, *services.Repository, chanSender) {
	t.Helper()
	repo := services.NewRepository(catalog, memory.NewCommentStore(), stubProbe(reachable))
	sender := make(chanSender, 16)
	cancel := Subscribe(repo, sender)
	t.Cleanup(func() {
		cancel()
		ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = repo.Close(ctx)
	})

	app, err := NewApp(&Ports{Repository: repo, Search: domain.SearchSettings{LookAhead: 5}})
	require.NoError(t, err)
	app.SetDimensions(100, 40)
	return app, repo, sender
}

func typeKeys(app *App, text string) {
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestNewApp_MissingRepository(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrMissingRepository)
}

func TestPorts_ValidateFillsDefaults(t *testing.T) {
	repo := services.NewRepository(&stubCatalog{}, memory.NewCommentStore(), nil)
	ports := &Ports{Repository: repo}

	require.NoError(t, ports.Validate())
	assert.Equal(t, domain.DefaultThrottle, ports.Search.Throttle)
	assert.Equal(t, domain.DefaultImageBaseURL, ports.ImageBaseURL)
}

func TestApp_SearchEndToEnd(t *testing.T) {
	catalog := &stubCatalog{page: domain.ResultPage{{ID: "a"}, {ID: "b"}}}
	app, repo, sender := newTestApp(t, catalog, true)

	typeKeys(app, "cats")

	msg := sender.next(t)
	loaded, ok := msg.(messages.PageLoaded)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, "cats", loaded.Result.Request.Keyword)

	app.Update(msg)

	assert.Len(t, app.SearchView().Items(), 2)
	_, pending := repo.Images().Peek()
	assert.False(t, pending, "handled page is taken from the cell")
}

func TestApp_NoConnectivityShowsMessage(t *testing.T) {
	catalog := &stubCatalog{}
	app, repo, sender := newTestApp(t, catalog, false)

	typeKeys(app, "cats")

	msg := sender.next(t)
	require.IsType(t, messages.SearchFailed{}, msg)
	app.Update(msg)

	assert.Equal(t, "Internet is not available, Unable to process.", app.SearchView().Status())
	assert.Zero(t, catalog.calls)
	_, pending := repo.Failures().Peek()
	assert.False(t, pending)
}

func TestApp_CommentRoundTrip(t *testing.T) {
	app, repo, sender := newTestApp(t, &stubCatalog{}, true)

	_, cmd := app.Update(messages.ImageSelected{Image: domain.ImageRecord{ID: "abc", Title: "Cat"}})
	assert.NotNil(t, cmd)
	assert.Equal(t, messages.ViewComment, app.CurrentView())

	typeKeys(app, "lovely")
	app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NoError(t, repo.Sync(context.Background()))

	msg := sender.next(t)
	require.IsType(t, messages.CommentSaved{}, msg)
	app.Update(msg)
	assert.Equal(t, "Comment saved (1 row)", app.CommentView().Status())

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
}

func TestApp_HelpToggle(t *testing.T) {
	app, _, _ := newTestApp(t, &stubCatalog{}, true)

	typeKeys(app, "?")
	assert.Equal(t, messages.ViewSearch, app.CurrentView(), "? is typed while the input has focus")

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "Help")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
}

func TestApp_Quit(t *testing.T) {
	app, _, _ := newTestApp(t, &stubCatalog{}, true)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_NotReady(t *testing.T) {
	repo := services.NewRepository(&stubCatalog{}, memory.NewCommentStore(), nil)
	app, err := NewApp(&Ports{Repository: repo})
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.True(t, app.Ready())
}
