// Package domain defines the core business entities for imgscout.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ImageRecord / ResultPage: catalog search results
//   - CommentRecord: a locally persisted comment on one image
//   - ErrorCode: the closed failure taxonomy surfaced to subscribers
//   - SearchQuery / LoadState: pagination session state
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
