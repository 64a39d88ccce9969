package domain

import "time"

// CommentRecord is the single free-text comment attached to an image.
// ImageID is the primary key; a second write for the same id replaces Text.
type CommentRecord struct {
	ImageID   string
	Text      string
	UpdatedAt time.Time
}

// WriteID identifies one UpsertComment call. Ids increase monotonically per
// repository, starting at 1.
type WriteID uint64

// CommentWrite reports the completion of an upsert.
type CommentWrite struct {
	ID      WriteID
	ImageID string
	// Rows is the number of rows the store reported as affected.
	Rows int64
	Err  error
}

// CommentLookup reports the result of a lookup that found a comment,
// or a store failure while looking one up.
type CommentLookup struct {
	ImageID string
	Text    string
	Err     error
}
