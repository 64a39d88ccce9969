package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driven"
	"github.com/custodia-labs/imgscout/internal/core/ports/driving"
	"github.com/custodia-labs/imgscout/internal/logger"
	"github.com/custodia-labs/imgscout/internal/observable"
)

// Ensure Repository implements the interface.
var _ driving.ImageRepository = (*Repository)(nil)

// Repository coordinates catalog searches and comment persistence.
//
// Searches run on their own goroutines and never wait on storage. Comment
// operations are serialized through a single FIFO storage queue, so a lookup
// queued after a write for the same image observes that write. Every outcome
// is published on an observable channel; nothing is returned to the caller
// except the request id.
//
// One Repository is built by the composition root and shared by reference.
type Repository struct {
	catalog driven.ImageCatalog
	store   driven.CommentStore
	probe   driven.ConnectivityProbe
	metrics driven.MetricsRecorder

	auth     atomic.Value // string
	seq      atomic.Uint64
	writeSeq atomic.Uint64
	closed   atomic.Bool

	queue    *storageQueue
	inflight sync.WaitGroup

	images   *observable.Cell[domain.PageResult]
	failures *observable.Cell[domain.SearchFailure]
	writes   *observable.Cell[domain.CommentWrite]
	lookups  *observable.Cell[domain.CommentLookup]
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithMetrics sets the recorder for operational metrics.
func WithMetrics(m driven.MetricsRecorder) RepositoryOption {
	return func(r *Repository) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithAuthorization sets the static credential sent with every search.
func WithAuthorization(value string) RepositoryOption {
	return func(r *Repository) {
		r.auth.Store(value)
	}
}

// NewRepository creates a repository over the given adapters.
func NewRepository(
	catalog driven.ImageCatalog,
	store driven.CommentStore,
	probe driven.ConnectivityProbe,
	opts ...RepositoryOption,
) *Repository {
	r := &Repository{
		catalog:  catalog,
		store:    store,
		probe:    probe,
		metrics:  nopMetrics{},
		images:   observable.New[domain.PageResult](),
		failures: observable.New[domain.SearchFailure](),
		writes:   observable.New[domain.CommentWrite](),
		lookups:  observable.New[domain.CommentLookup](),
	}
	r.auth.Store("")

	for _, opt := range opts {
		opt(r)
	}

	r.queue = newStorageQueue(context.Background(), r.metrics.QueueDepth)
	return r
}

// Search validates the request, allocates its id and starts the fetch.
//
// When the probe reports no connectivity a noConnectivity failure is published
// before Search returns and the catalog is not called. Otherwise exactly one of
// Images or Failures later receives an event carrying the returned id.
func (r *Repository) Search(page int, keyword string) (domain.RequestID, error) {
	keyword = strings.TrimSpace(keyword)
	if page < 0 {
		return 0, fmt.Errorf("search page %d: %w", page, domain.ErrInvalidInput)
	}
	if keyword == "" {
		return 0, fmt.Errorf("search keyword is empty: %w", domain.ErrInvalidInput)
	}
	if r.closed.Load() {
		return 0, domain.ErrRepositoryClosed
	}

	req := domain.PageRequest{
		ID:      domain.RequestID(r.seq.Add(1)),
		Page:    page,
		Keyword: keyword,
	}
	r.metrics.SearchIssued()
	logger.Debug("search #%d: page=%d keyword=%q", req.ID, page, keyword)

	if r.probe != nil && !r.probe.IsReachable() {
		logger.Warn("search #%d: catalog unreachable, not sending request", req.ID)
		r.fail(req, domain.CodeNoConnectivity, 0)
		return req.ID, nil
	}

	headers := r.headers()
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		r.fetch(req, headers)
	}()

	return req.ID, nil
}

// fetch runs one catalog call to completion and publishes its outcome.
func (r *Repository) fetch(req domain.PageRequest, headers map[string]string) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			logger.Error("search #%d: catalog panicked: %v", req.ID, p)
			r.fail(req, domain.CodeUnknown, time.Since(start))
		}
	}()

	page, err := r.catalog.FetchPage(context.Background(), req.Page, req.Keyword, headers)
	if err != nil {
		code := domain.CodeForError(err)
		logger.Warn("search #%d: %v (%s)", req.ID, err, code)
		r.fail(req, code, time.Since(start))
		return
	}

	if page == nil {
		page = domain.ResultPage{}
	}
	logger.Debug("search #%d: %d records", req.ID, len(page))
	r.metrics.SearchCompleted(domain.CodeNone, time.Since(start))
	r.images.Publish(domain.PageResult{Request: req, Images: page})
}

func (r *Repository) fail(req domain.PageRequest, code domain.ErrorCode, elapsed time.Duration) {
	r.metrics.SearchCompleted(code, elapsed)
	r.failures.Publish(domain.SearchFailure{Request: req, Code: code})
}

// headers builds the per-call header map carrying the static credential.
func (r *Repository) headers() map[string]string {
	headers := make(map[string]string, 1)
	if auth, _ := r.auth.Load().(string); auth != "" {
		headers[domain.AuthorizationHeader] = auth
	}
	return headers
}

// SetAuthorization replaces the static credential for subsequent searches.
func (r *Repository) SetAuthorization(value string) {
	r.auth.Store(value)
}

// UpsertComment queues a write of text for imageID and returns immediately
// with the id the outcome on CommentWrites will carry.
func (r *Repository) UpsertComment(imageID, text string) (domain.WriteID, error) {
	if strings.TrimSpace(imageID) == "" {
		return 0, fmt.Errorf("comment image id is empty: %w", domain.ErrInvalidInput)
	}
	if text == "" {
		return 0, fmt.Errorf("comment text is empty: %w", domain.ErrInvalidInput)
	}
	if r.closed.Load() {
		return 0, domain.ErrRepositoryClosed
	}

	id := domain.WriteID(r.writeSeq.Add(1))
	accepted := r.queue.Submit(func(ctx context.Context) {
		rows, err := r.store.Upsert(ctx, domain.CommentRecord{
			ImageID:   imageID,
			Text:      text,
			UpdatedAt: time.Now().UTC(),
		})
		r.metrics.StorageTask("upsert", err)
		if err != nil {
			logger.Error("upsert comment %s (write #%d): %v", imageID, id, err)
		}
		r.writes.Publish(domain.CommentWrite{ID: id, ImageID: imageID, Rows: rows, Err: err})
	})
	if !accepted {
		return 0, domain.ErrRepositoryClosed
	}
	return id, nil
}

// LookupComment queues a read of the comment for imageID and returns
// immediately. A found comment is published on CommentLookups; an absent
// one publishes nothing.
func (r *Repository) LookupComment(imageID string) error {
	if strings.TrimSpace(imageID) == "" {
		return fmt.Errorf("comment image id is empty: %w", domain.ErrInvalidInput)
	}
	if r.closed.Load() {
		return domain.ErrRepositoryClosed
	}

	accepted := r.queue.Submit(func(ctx context.Context) {
		comment, err := r.store.Find(ctx, imageID)
		if errors.Is(err, domain.ErrNotFound) {
			r.metrics.StorageTask("lookup", nil)
			logger.Debug("lookup comment %s: none", imageID)
			return
		}
		r.metrics.StorageTask("lookup", err)
		if err != nil {
			logger.Error("lookup comment %s: %v", imageID, err)
			r.lookups.Publish(domain.CommentLookup{ImageID: imageID, Err: err})
			return
		}
		r.lookups.Publish(domain.CommentLookup{ImageID: imageID, Text: comment.Text})
	})
	if !accepted {
		return domain.ErrRepositoryClosed
	}
	return nil
}

// Sync queues a barrier and waits for it to run. Because the storage queue is
// FIFO, every task submitted before Sync has completed when it returns.
// After Close it returns domain.ErrRepositoryClosed; Close has already
// drained the queue.
func (r *Repository) Sync(ctx context.Context) error {
	done := make(chan struct{})
	if !r.queue.Submit(func(context.Context) { close(done) }) {
		return domain.ErrRepositoryClosed
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, drains the storage queue and waits for
// in-flight searches until ctx ends. In-flight work is never cancelled.
func (r *Repository) Close(ctx context.Context) error {
	r.closed.Store(true)

	if err := r.queue.Close(ctx); err != nil {
		return fmt.Errorf("drain storage queue: %w", err)
	}

	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for searches: %w", ctx.Err())
	}
}

// Images returns the channel of successful page results.
func (r *Repository) Images() driving.Channel[domain.PageResult] {
	return r.images
}

// Failures returns the channel of search failures.
func (r *Repository) Failures() driving.Channel[domain.SearchFailure] {
	return r.failures
}

// CommentWrites returns the channel of upsert outcomes.
func (r *Repository) CommentWrites() driving.Channel[domain.CommentWrite] {
	return r.writes
}

// CommentLookups returns the channel of found comments.
func (r *Repository) CommentLookups() driving.Channel[domain.CommentLookup] {
	return r.lookups
}

// nopMetrics discards all measurements.
type nopMetrics struct{}

func (nopMetrics) SearchIssued() {}
func (nopMetrics) SearchCompleted(domain.ErrorCode, time.Duration) {}
func (nopMetrics) StorageTask(string, error) {}
func (nopMetrics) QueueDepth(int) {}
