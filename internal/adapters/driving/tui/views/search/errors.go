package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoSearcher indicates that no searcher was provided.
	ErrNoSearcher = errors.New("searcher is required")
)
