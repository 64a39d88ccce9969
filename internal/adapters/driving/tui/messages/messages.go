// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/imgscout/internal/core/domain"
)

// QueryChanged is sent when the search input value changes.
type QueryChanged struct {
	Query string
}

// PageLoaded carries a page published on the repository's image channel.
type PageLoaded struct {
	Result domain.PageResult
}

// SearchFailed carries a failure published on the repository's failure channel.
type SearchFailed struct {
	Failure domain.SearchFailure
}

// CommentLoaded carries a lookup published on the comment lookup channel.
type CommentLoaded struct {
	Lookup domain.CommentLookup
}

// CommentSaved carries a write published on the comment write channel.
type CommentSaved struct {
	Write domain.CommentWrite
}

// ImageSelected is sent when the user opens an image for commenting.
type ImageSelected struct {
	Image domain.ImageRecord
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the search input and results view.
	ViewSearch ViewType = iota
	// ViewComment is the comment editor for one image.
	ViewComment
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewComment:
		return "comment"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
