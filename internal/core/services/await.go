package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driving"
)

// The Await helpers give one-shot callers (CLI commands, MCP tools) a
// blocking view of the repository's event channels. Long-lived consumers such
// as the TUI subscribe to the channels directly.

// collector gathers events from a channel subscription. Events replayed while
// subscribing are ignored so a value left in the slot by an earlier request
// cannot be mistaken for this one's.
type collector[T any] struct {
	armed  atomic.Bool
	mu     sync.Mutex
	events []T
	notify chan struct{}
	cancel func()
}

func collect[T any](ch driving.Channel[T], keep func(T) bool) *collector[T] {
	c := &collector[T]{notify: make(chan struct{}, 1)}
	c.cancel = ch.Subscribe(func(v T) {
		if !c.armed.Load() || !keep(v) {
			return
		}
		c.mu.Lock()
		c.events = append(c.events, v)
		c.mu.Unlock()
		select {
		case c.notify <- struct{}{}:
		default:
		}
	})
	c.armed.Store(true)
	return c
}

// last returns the most recent kept event.
func (c *collector[T]) last() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if len(c.events) == 0 {
		return zero, false
	}
	return c.events[len(c.events)-1], true
}

// AwaitSearch runs one search and blocks until its terminal event arrives.
// A failure is returned as a *domain.SearchError carrying the error code.
func AwaitSearch(ctx context.Context, repo driving.ImageRepository, page int, keyword string) (domain.ResultPage, error) {
	var want atomic.Uint64
	match := func(id domain.RequestID) bool {
		w := want.Load()
		return w == 0 || domain.RequestID(w) == id
	}

	images := collect(repo.Images(), func(r domain.PageResult) bool { return match(r.Request.ID) })
	defer images.cancel()
	failures := collect(repo.Failures(), func(f domain.SearchFailure) bool { return match(f.Request.ID) })
	defer failures.cancel()

	id, err := repo.Search(page, keyword)
	if err != nil {
		return nil, err
	}
	want.Store(uint64(id))

	for {
		if res, ok := findRequest(images, id, func(r domain.PageResult) domain.RequestID { return r.Request.ID }); ok {
			return res.Images, nil
		}
		if f, ok := findRequest(failures, id, func(f domain.SearchFailure) domain.RequestID { return f.Request.ID }); ok {
			return nil, &domain.SearchError{Code: f.Code}
		}

		select {
		case <-images.notify:
		case <-failures.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// findRequest scans collected events for the one carrying id. Events that
// arrived before the id was known are kept unfiltered, so they are checked here.
func findRequest[T any, ID comparable](c *collector[T], id ID, idOf func(T) ID) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.events {
		if idOf(v) == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// AwaitUpsert writes a comment and blocks until the storage queue has run
// that write. Concurrent writes to the same image are told apart by WriteID.
func AwaitUpsert(ctx context.Context, repo driving.ImageRepository, imageID, text string) (int64, error) {
	var want atomic.Uint64
	writes := collect(repo.CommentWrites(), func(w domain.CommentWrite) bool {
		id := want.Load()
		return w.ImageID == imageID && (id == 0 || domain.WriteID(id) == w.ID)
	})
	defer writes.cancel()

	id, err := repo.UpsertComment(imageID, text)
	if err != nil {
		return 0, err
	}
	want.Store(uint64(id))

	for {
		if w, ok := findRequest(writes, id, func(w domain.CommentWrite) domain.WriteID { return w.ID }); ok {
			return w.Rows, w.Err
		}
		select {
		case <-writes.notify:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// AwaitComment looks up the comment for imageID and blocks until the storage
// queue has run the lookup. An absent comment yields domain.ErrNotFound.
func AwaitComment(ctx context.Context, repo driving.ImageRepository, imageID string) (string, error) {
	lookups := collect(repo.CommentLookups(), func(l domain.CommentLookup) bool { return l.ImageID == imageID })
	defer lookups.cancel()

	if err := repo.LookupComment(imageID); err != nil {
		return "", err
	}
	if err := repo.Sync(ctx); err != nil {
		return "", err
	}

	l, ok := lookups.last()
	if !ok {
		return "", domain.ErrNotFound
	}
	return l.Text, l.Err
}
