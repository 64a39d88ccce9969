package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/imgscout/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/imgscout/internal/core/domain"
)

// stubCatalog returns a fixed page or error and records the headers it saw.
type stubCatalog struct {
	mu      sync.Mutex
	page    domain.ResultPage
	err     error
	calls   int
	headers map[string]string
	gate    chan struct{}
}

func (c *stubCatalog) FetchPage(_ context.Context, _ int, _ string, headers map[string]string) (domain.ResultPage, error) {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.headers = headers
	return c.page, c.err
}

func (c *stubCatalog) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type stubProbe struct{ reachable bool }

func (p stubProbe) IsReachable() bool { return p.reachable }

// failingStore fails every operation.
type failingStore struct{ err error }

func (s failingStore) Upsert(context.Context, domain.CommentRecord) (int64, error) { return 0, s.err }

func (s failingStore) Find(context.Context, string) (*domain.CommentRecord, error) { return nil, s.err }

// gatedStore holds every upsert until gate closes and rejects the text "bad".
type gatedStore struct {
	gate    chan struct{}
	entered atomic.Int32
	*memory.CommentStore
}

var errRejected = errors.New("constraint failed")

func (s *gatedStore) Upsert(ctx context.Context, c domain.CommentRecord) (int64, error) {
	s.entered.Add(1)
	<-s.gate
	if c.Text == "bad" {
		return 0, errRejected
	}
	return s.CommentStore.Upsert(ctx, c)
}

// countingMetrics counts recorder calls.
type countingMetrics struct {
	issued    atomic.Int32
	completed atomic.Int32
	storage   atomic.Int32
}

func (m *countingMetrics) SearchIssued() { m.issued.Add(1) }
func (m *countingMetrics) SearchCompleted(domain.ErrorCode, time.Duration) { m.completed.Add(1) }
func (m *countingMetrics) StorageTask(string, error) { m.storage.Add(1) }
func (m *countingMetrics) QueueDepth(int) {}

func newTestRepository(t *testing.T, catalog *stubCatalog, reachable bool, opts ...RepositoryOption) *Repository {
	t.Helper()
	repo := NewRepository(catalog, memory.NewCommentStore(), stubProbe{reachable: reachable}, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = repo.Close(ctx)
	})
	return repo
}

func TestRepository_SearchPublishesImages(t *testing.T) {
	catalog := &stubCatalog{page: records("a", "b")}
	repo := newTestRepository(t, catalog, true, WithAuthorization("Client-ID abc"))

	got := make(chan domain.PageResult, 1)
	cancel := repo.Images().Subscribe(func(r domain.PageResult) { got <- r })
	defer cancel()

	id, err := repo.Search(1, "cats")
	require.NoError(t, err)

	select {
	case res := <-got:
		assert.Equal(t, id, res.Request.ID)
		assert.Equal(t, "cats", res.Request.Keyword)
		assert.Len(t, res.Images, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("no page result")
	}

	assert.Equal(t, "Client-ID abc", catalog.headers[domain.AuthorizationHeader])
	_, failed := repo.Failures().Peek()
	assert.False(t, failed)
}

func TestRepository_SearchWithoutConnectivity(t *testing.T) {
	catalog := &stubCatalog{page: records("a")}
	repo := newTestRepository(t, catalog, false)

	id, err := repo.Search(1, "cats")
	require.NoError(t, err)

	// Published before Search returns.
	f, ok := repo.Failures().Take()
	require.True(t, ok)
	assert.Equal(t, id, f.Request.ID)
	assert.Equal(t, domain.CodeNoConnectivity, f.Code)
	assert.Equal(t, "Internet is not available, Unable to process.", f.Code.Message())

	require.NoError(t, repo.Close(context.Background()))
	assert.Zero(t, catalog.Calls())
	_, ok = repo.Images().Peek()
	assert.False(t, ok)
}

func TestRepository_SearchMapsFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.ErrorCode
	}{
		{"bad request", &domain.StatusError{StatusCode: 400}, domain.CodeBadRequest},
		{"unauthorized", &domain.StatusError{StatusCode: 401}, domain.CodeUnauthorized},
		{"not found", &domain.StatusError{StatusCode: 404}, domain.CodeNotFound},
		{"server error", &domain.StatusError{StatusCode: 500}, domain.CodeServerError},
		{"unavailable", &domain.StatusError{StatusCode: 503}, domain.CodeServiceUnavailable},
		{"unlisted status", &domain.StatusError{StatusCode: 418}, domain.CodeUnknown},
		{"transport", errors.New("connection reset"), domain.CodeUnknown},
		{"decode", domain.ErrDecode, domain.CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepository(t, &stubCatalog{err: tt.err}, true)

			_, err := AwaitSearch(context.Background(), repo, 1, "cats")
			var se *domain.SearchError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.want, se.Code)
		})
	}
}

func TestRepository_SearchRejectsInvalidInput(t *testing.T) {
	repo := newTestRepository(t, &stubCatalog{}, true)

	_, err := repo.Search(-1, "cats")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = repo.Search(1, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRepository_RequestIDsIncrease(t *testing.T) {
	repo := newTestRepository(t, &stubCatalog{page: records("a")}, true)

	first, err := repo.Search(1, "cats")
	require.NoError(t, err)
	second, err := repo.Search(2, "cats")
	require.NoError(t, err)

	assert.Greater(t, second, first)
}

func TestRepository_SearchDoesNotWaitForStorage(t *testing.T) {
	repo := newTestRepository(t, &stubCatalog{page: records("a")}, true)

	release := make(chan struct{})
	repo.queue.Submit(func(context.Context) { <-release })
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	page, err := AwaitSearch(ctx, repo, 1, "cats")
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestRepository_UpsertIsIdempotent(t *testing.T) {
	repo := newTestRepository(t, &stubCatalog{}, true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rows, err := AwaitUpsert(ctx, repo, "abc", "nice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
	}

	text, err := AwaitComment(ctx, repo, "abc")
	require.NoError(t, err)
	assert.Equal(t, "nice", text)
}

func TestRepository_LookupObservesEarlierWrite(t *testing.T) {
	repo := newTestRepository(t, &stubCatalog{}, true)

	got := make(chan domain.CommentLookup, 1)
	cancel := repo.CommentLookups().Subscribe(func(l domain.CommentLookup) { got <- l })
	defer cancel()

	first, err := repo.UpsertComment("abc", "first")
	require.NoError(t, err)
	second, err := repo.UpsertComment("abc", "second")
	require.NoError(t, err)
	assert.Greater(t, second, first)
	require.NoError(t, repo.LookupComment("abc"))

	select {
	case l := <-got:
		assert.Equal(t, "second", l.Text)
		assert.NoError(t, l.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("no lookup event")
	}
}

func TestRepository_LookupMissingPublishesNothing(t *testing.T) {
	repo := newTestRepository(t, &stubCatalog{}, true)

	require.NoError(t, repo.LookupComment("missing"))
	require.NoError(t, repo.Sync(context.Background()))

	_, ok := repo.CommentLookups().Peek()
	assert.False(t, ok)

	_, err := AwaitComment(context.Background(), repo, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_StoreFailuresArePublished(t *testing.T) {
	storeErr := errors.New("disk full")
	repo := NewRepository(&stubCatalog{}, failingStore{err: storeErr}, stubProbe{reachable: true})
	defer func() { _ = repo.Close(context.Background()) }()
	ctx := context.Background()

	_, err := AwaitUpsert(ctx, repo, "abc", "x")
	assert.ErrorIs(t, err, storeErr)

	_, err = AwaitComment(ctx, repo, "abc")
	assert.ErrorIs(t, err, storeErr)
}

func TestRepository_CommentRejectsInvalidInput(t *testing.T) {
	repo := newTestRepository(t, &stubCatalog{}, true)

	_, err := repo.UpsertComment("", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = repo.UpsertComment("abc", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, repo.LookupComment(" "), domain.ErrInvalidInput)
}

func TestRepository_CloseWaitsForInFlightSearch(t *testing.T) {
	catalog := &stubCatalog{page: records("a"), gate: make(chan struct{})}
	repo := NewRepository(catalog, memory.NewCommentStore(), stubProbe{reachable: true})

	_, err := repo.Search(1, "cats")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, repo.Close(ctx))

	close(catalog.gate)
	require.NoError(t, repo.Close(context.Background()))

	_, ok := repo.Images().Peek()
	assert.True(t, ok)

	_, err = repo.Search(1, "cats")
	assert.ErrorIs(t, err, domain.ErrRepositoryClosed)
	_, err = repo.UpsertComment("abc", "x")
	assert.ErrorIs(t, err, domain.ErrRepositoryClosed)
}

func TestRepository_SetAuthorization(t *testing.T) {
	catalog := &stubCatalog{page: records("a")}
	repo := newTestRepository(t, catalog, true)

	_, err := AwaitSearch(context.Background(), repo, 1, "cats")
	require.NoError(t, err)
	assert.NotContains(t, catalog.headers, domain.AuthorizationHeader)

	repo.SetAuthorization("Client-ID xyz")
	_, err = AwaitSearch(context.Background(), repo, 1, "cats")
	require.NoError(t, err)
	assert.Equal(t, "Client-ID xyz", catalog.headers[domain.AuthorizationHeader])
}

func TestRepository_RecordsMetrics(t *testing.T) {
	m := &countingMetrics{}
	repo := newTestRepository(t, &stubCatalog{page: records("a")}, true, WithMetrics(m))
	ctx := context.Background()

	_, err := AwaitSearch(ctx, repo, 1, "cats")
	require.NoError(t, err)
	_, err = AwaitUpsert(ctx, repo, "abc", "x")
	require.NoError(t, err)

	assert.Equal(t, int32(1), m.issued.Load())
	assert.Equal(t, int32(1), m.completed.Load())
	assert.Equal(t, int32(1), m.storage.Load())
}

func TestRepository_ConcurrentSearches(t *testing.T) {
	repo := newTestRepository(t, &stubCatalog{page: records("a")}, true)

	var wg sync.WaitGroup
	var seen sync.Map
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.Search(1, "cats")
			if assert.NoError(t, err) {
				_, dup := seen.LoadOrStore(id, true)
				assert.False(t, dup)
			}
		}()
	}
	wg.Wait()
}

func TestRepository_ConcurrentUpsertsGetTheirOwnOutcome(t *testing.T) {
	store := &gatedStore{gate: make(chan struct{}), CommentStore: memory.NewCommentStore()}
	repo := NewRepository(&stubCatalog{}, store, stubProbe{reachable: true})
	defer func() { _ = repo.Close(context.Background()) }()

	type outcome struct {
		rows int64
		err  error
	}
	good := make(chan outcome, 1)
	bad := make(chan outcome, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		rows, err := AwaitUpsert(ctx, repo, "abc", "good")
		good <- outcome{rows, err}
	}()
	go func() {
		rows, err := AwaitUpsert(ctx, repo, "abc", "bad")
		bad <- outcome{rows, err}
	}()

	// One write is running and the other is queued behind it.
	require.Eventually(t, func() bool {
		repo.queue.mu.Lock()
		defer repo.queue.mu.Unlock()
		return store.entered.Load() == 1 && len(repo.queue.pending) == 1
	}, 2*time.Second, time.Millisecond)
	close(store.gate)

	g := <-good
	assert.NoError(t, g.err)
	assert.Equal(t, int64(1), g.rows)

	b := <-bad
	assert.ErrorIs(t, b.err, errRejected)
	assert.Zero(t, b.rows)
}

func TestRepository_UpsertReturnsIncreasingIDs(t *testing.T) {
	repo := newTestRepository(t, &stubCatalog{}, true)

	got := make(chan domain.CommentWrite, 1)
	cancel := repo.CommentWrites().Subscribe(func(w domain.CommentWrite) { got <- w })
	defer cancel()

	id, err := repo.UpsertComment("abc", "x")
	require.NoError(t, err)
	assert.Equal(t, domain.WriteID(1), id)

	select {
	case w := <-got:
		assert.Equal(t, id, w.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no write event")
	}
}

func TestRepository_NoStorageWorkAfterClose(t *testing.T) {
	repo := NewRepository(&stubCatalog{}, memory.NewCommentStore(), stubProbe{reachable: true})
	require.NoError(t, repo.Close(context.Background()))

	assert.ErrorIs(t, repo.Sync(context.Background()), domain.ErrRepositoryClosed)
	assert.ErrorIs(t, repo.LookupComment("abc"), domain.ErrRepositoryClosed)
	_, err := repo.UpsertComment("abc", "x")
	assert.ErrorIs(t, err, domain.ErrRepositoryClosed)
	assert.False(t, repo.queue.Running())
}

func TestRepository_CloseRacingUpsertNeverRunsAfterClose(t *testing.T) {
	for i := 0; i < 50; i++ {
		store := memory.NewCommentStore()
		repo := NewRepository(&stubCatalog{}, store, stubProbe{reachable: true})

		accepted := make(chan bool, 1)
		go func() {
			_, err := repo.UpsertComment("abc", "x")
			accepted <- err == nil
		}()
		require.NoError(t, repo.Close(context.Background()))
		ok := <-accepted

		// Close drains accepted work, so an accepted write is already stored.
		_, findErr := store.Find(context.Background(), "abc")
		if ok {
			assert.NoError(t, findErr)
		} else {
			assert.ErrorIs(t, findErr, domain.ErrNotFound)
		}
		assert.False(t, repo.queue.Running())
	}
}
