package driven

import (
	"context"

	"github.com/custodia-labs/imgscout/internal/core/domain"
)

// ImageCatalog fetches one page of keyword search results from the remote catalog.
//
// Implementations return *domain.StatusError when the remote answered with a
// non-success status and an error wrapping domain.ErrDecode when the body could
// not be parsed. Any other error is treated as a transport failure.
type ImageCatalog interface {
	// FetchPage returns the records for page (>= 0) of keyword.
	// headers are attached verbatim to the outgoing request.
	FetchPage(ctx context.Context, page int, keyword string, headers map[string]string) (domain.ResultPage, error)
}
