// Package tui provides an interactive terminal user interface for imgscout.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driving"
)

// Ports aggregates everything the TUI needs from the core.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Repository runs searches and stores comments.
	Repository driving.ImageRepository

	// Search tunes the input throttle and pagination look-ahead.
	Search domain.SearchSettings

	// ImageBaseURL is prefixed to cover paths when showing image links.
	ImageBaseURL string
}

// Validate ensures all required ports are set and fills defaults.
func (p *Ports) Validate() error {
	if p.Repository == nil {
		return ErrMissingRepository
	}
	if p.Search.Throttle <= 0 {
		p.Search.Throttle = domain.DefaultThrottle
	}
	if p.ImageBaseURL == "" {
		p.ImageBaseURL = domain.DefaultImageBaseURL
	}
	return nil
}
