package driving

import "github.com/custodia-labs/imgscout/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, filling gaps with defaults.
	Get() (*domain.AppSettings, error)

	// Set stores a single raw configuration value by key.
	Set(key, value string) error

	// Lookup returns the raw stored value for key.
	Lookup(key string) (string, bool)

	// Keys lists the recognised configuration keys.
	Keys() []string
}
