package driven

import (
	"context"

	"github.com/custodia-labs/imgscout/internal/core/domain"
)

// CommentStore persists one comment per image.
// The core only ever calls it from its single storage worker.
type CommentStore interface {
	// Upsert inserts the comment or replaces the text of an existing one.
	// Returns the number of affected rows.
	Upsert(ctx context.Context, comment domain.CommentRecord) (int64, error)

	// Find returns the comment for imageID.
	// Returns domain.ErrNotFound if there is none.
	Find(ctx context.Context, imageID string) (*domain.CommentRecord, error)
}
