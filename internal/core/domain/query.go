package domain

// RequestID identifies one search call. IDs increase monotonically per
// repository, so a consumer can tell whether a completion is still current.
type RequestID uint64

// PageRequest describes one page fetch.
type PageRequest struct {
	ID      RequestID
	Page    int
	Keyword string
}

// PageResult is published when a page fetch succeeds.
type PageResult struct {
	Request PageRequest
	Images  ResultPage
}

// SearchFailure is published when a page fetch cannot produce a result.
type SearchFailure struct {
	Request PageRequest
	Code    ErrorCode
}

// SearchQuery is the active query of a search session.
type SearchQuery struct {
	// Session identifies the search session for log correlation.
	Session string
	// Text is trimmed and non-empty once a session exists.
	Text string
	// Cursor is the page to fetch next; it is always >= 1.
	Cursor int
}

// LoadState is the pagination state owned by the pager.
type LoadState struct {
	PageCursor       int
	IsLoadInProgress bool
	// Exhausted is set once the catalog returned an empty page for the session.
	Exhausted bool
}

// ScrollEvent reports a scroll of the rendering surface.
type ScrollEvent struct {
	// DeltaY is positive when scrolling towards the end of the list.
	DeltaY int
	// LastVisible is the index of the last fully visible item.
	LastVisible int
	// Total is the number of items currently rendered.
	Total int
}

// Remaining returns how many items lie beyond the last visible one.
func (e ScrollEvent) Remaining() int {
	return e.Total - e.LastVisible
}
