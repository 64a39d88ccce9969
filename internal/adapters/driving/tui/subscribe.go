package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driving"
)

// Sender delivers messages into a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Subscribe forwards every event on the repository's channels to sender as a
// tea message until cancel is called.
//
// Publications can happen on the program's own goroutine (a search that fails
// its connectivity check publishes before Search returns), and Program.Send
// blocks until the event loop reads the message, so each send runs on its own
// goroutine. Consumers order results by RequestID, not by arrival.
func Subscribe(repo driving.ImageRepository, sender Sender) (cancel func()) {
	send := func(msg tea.Msg) { go sender.Send(msg) }

	cancels := []func(){
		repo.Images().Subscribe(func(r domain.PageResult) {
			send(messages.PageLoaded{Result: r})
		}),
		repo.Failures().Subscribe(func(f domain.SearchFailure) {
			if f.Code.Pending() {
				send(messages.SearchFailed{Failure: f})
			}
		}),
		repo.CommentLookups().Subscribe(func(l domain.CommentLookup) {
			send(messages.CommentLoaded{Lookup: l})
		}),
		repo.CommentWrites().Subscribe(func(w domain.CommentWrite) {
			send(messages.CommentSaved{Write: w})
		}),
	}

	return func() {
		for _, c := range cancels {
			c()
		}
	}
}
