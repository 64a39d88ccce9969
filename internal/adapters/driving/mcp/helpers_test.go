package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/imgscout/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/services"
)

// fakeCatalog returns a fixed page or error.
type fakeCatalog struct {
	page domain.ResultPage
	err  error
}

func (c *fakeCatalog) FetchPage(context.Context, int, string, map[string]string) (domain.ResultPage, error) {
	return c.page, c.err
}

type fakeProbe bool

func (p fakeProbe) IsReachable() bool { return bool(p) }

func newTestRepository(t *testing.T, catalog *fakeCatalog, reachable bool) *services.Repository {
	t.Helper()
	repo := services.NewRepository(catalog, memory.NewCommentStore(), fakeProbe(reachable))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = repo.Close(ctx)
	})
	return repo
}

func newTestServer(t *testing.T, catalog *fakeCatalog, reachable bool) *Server {
	t.Helper()
	server, err := NewServer(&Ports{
		Repository: newTestRepository(t, catalog, reachable),
		Settings:   services.NewSettingsService(memory.NewConfigStore()),
	})
	require.NoError(t, err)
	return server
}
