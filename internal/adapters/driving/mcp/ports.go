package mcp

import (
	"github.com/custodia-labs/imgscout/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Repository runs searches and stores comments.
	Repository driving.ImageRepository

	// Settings exposes configuration as a resource. Optional.
	Settings driving.SettingsService

	// ImageBaseURL is prefixed to cover paths in search results.
	ImageBaseURL string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Repository == nil {
		return ErrMissingRepository
	}
	return nil
}
