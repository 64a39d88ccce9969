package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driven"
	"github.com/custodia-labs/imgscout/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyCatalogBaseURL    = "imgur.base_url"
	keyImageBaseURL      = "imgur.image_base_url"
	keyClientID          = "imgur.client_id"
	keyClientSecret      = "imgur.client_secret"
	keyAccessToken       = "imgur.access_token"
	keyRequestsPerSecond = "imgur.requests_per_second"
	keyThrottleMillis    = "search.throttle_ms"
	keyLookAhead         = "search.look_ahead"
	keyDataDir           = "storage.data_dir"
	keyProbeAddress      = "network.probe_address"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
)

var settingKeys = map[string]keyKind{
	keyCatalogBaseURL:    kindString,
	keyImageBaseURL:      kindString,
	keyClientID:          kindString,
	keyClientSecret:      kindString,
	keyAccessToken:       kindString,
	keyRequestsPerSecond: kindFloat,
	keyThrottleMillis:    kindInt,
	keyLookAhead:         kindInt,
	keyDataDir:           kindString,
	keyProbeAddress:      kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Catalog: domain.CatalogSettings{
			BaseURL:           strings.TrimRight(s.getString(keyCatalogBaseURL, defaults.Catalog.BaseURL), "/"),
			ImageBaseURL:      s.getString(keyImageBaseURL, defaults.Catalog.ImageBaseURL),
			ClientID:          s.configStore.GetString(keyClientID),
			ClientSecret:      s.configStore.GetString(keyClientSecret),
			AccessToken:       s.configStore.GetString(keyAccessToken),
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, defaults.Catalog.RequestsPerSecond),
		},
		Search: domain.SearchSettings{
			Throttle:  s.getDuration(keyThrottleMillis, defaults.Search.Throttle),
			LookAhead: s.getLookAhead(defaults.Search.LookAhead),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyDataDir),
		},
		Network: domain.NetworkSettings{
			ProbeAddress: s.getString(keyProbeAddress, defaults.Network.ProbeAddress),
		},
	}

	return settings, nil
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	var typed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("setting %s wants a non-negative integer, got %q: %w", key, value, domain.ErrInvalidInput)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f < 0 {
			return fmt.Errorf("setting %s wants a non-negative number, got %q: %w", key, value, domain.ErrInvalidInput)
		}
		typed = f
	default:
		typed = value
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Lookup returns the raw stored value for key, formatted as text.
func (s *SettingsService) Lookup(key string) (string, bool) {
	if _, ok := settingKeys[key]; !ok {
		return "", false
	}
	val, exists := s.configStore.Get(key)
	if !exists {
		return "", false
	}
	return fmt.Sprint(val), true
}

// Keys lists the recognised configuration keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	ms := s.configStore.GetInt(key)
	if ms < 0 {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}

// getLookAhead accepts zero, which requests a page only at the very end.
func (s *SettingsService) getLookAhead(defaultVal int) int {
	if _, exists := s.configStore.Get(keyLookAhead); !exists {
		return defaultVal
	}
	n := s.configStore.GetInt(keyLookAhead)
	if n < 0 {
		return defaultVal
	}
	return n
}
