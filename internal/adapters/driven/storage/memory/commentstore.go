package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driven"
)

// Ensure CommentStore implements the interface.
var _ driven.CommentStore = (*CommentStore)(nil)

// CommentStore is an in-memory implementation of driven.CommentStore.
// Used for tests and for --ephemeral runs.
type CommentStore struct {
	mu       sync.RWMutex
	comments map[string]domain.CommentRecord
}

// NewCommentStore creates a new in-memory comment store.
func NewCommentStore() *CommentStore {
	return &CommentStore{
		comments: make(map[string]domain.CommentRecord),
	}
}

// Upsert replaces any existing comment for the image. Always reports one row.
func (s *CommentStore) Upsert(ctx context.Context, comment domain.CommentRecord) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.ImageID] = comment
	return 1, nil
}

// Find returns the comment for imageID or domain.ErrNotFound.
func (s *CommentStore) Find(ctx context.Context, imageID string) (*domain.CommentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.comments[imageID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &comment, nil
}

// Len returns the number of stored comments.
func (s *CommentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments)
}
