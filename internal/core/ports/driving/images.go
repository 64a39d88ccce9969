package driving

import (
	"context"

	"github.com/custodia-labs/imgscout/internal/core/domain"
)

// Channel is the subscriber's view of an observable cell.
// Subscribers may read and clear the slot but never publish to it.
type Channel[T any] interface {
	// Subscribe registers fn and immediately replays the stored value, if any.
	Subscribe(fn func(T)) (cancel func())

	// Take returns the stored value and clears the slot.
	Take() (T, bool)

	// Peek returns the stored value without clearing it.
	Peek() (T, bool)

	// Reset clears the slot.
	Reset()
}

// Searcher issues page fetches. It is the slice of ImageRepository the pager needs.
type Searcher interface {
	// Search starts an asynchronous fetch of page for keyword and returns the
	// id its terminal event will carry.
	Search(page int, keyword string) (domain.RequestID, error)
}

// ImageRepository coordinates catalog searches and comment persistence.
// Results are delivered on the channels, never as return values.
type ImageRepository interface {
	Searcher

	// UpsertComment queues a write of text for imageID and returns the id its
	// CommentWrite will carry.
	UpsertComment(imageID, text string) (domain.WriteID, error)

	// LookupComment queues a read of the comment for imageID.
	LookupComment(imageID string) error

	// Sync blocks until every storage task queued before the call has run.
	Sync(ctx context.Context) error

	// Images receives one PageResult per successful search.
	Images() Channel[domain.PageResult]

	// Failures receives one SearchFailure per failed search.
	Failures() Channel[domain.SearchFailure]

	// CommentWrites receives one CommentWrite per upsert.
	CommentWrites() Channel[domain.CommentWrite]

	// CommentLookups receives a CommentLookup when a lookup finds a comment
	// or fails; nothing is published for an absent comment.
	CommentLookups() Channel[domain.CommentLookup]
}
