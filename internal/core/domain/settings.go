package domain

import "time"

// Catalog defaults.
const (
	// DefaultCatalogBaseURL is the Imgur API host.
	DefaultCatalogBaseURL = "https://api.imgur.com"

	// DefaultImageBaseURL is the host serving image files.
	DefaultImageBaseURL = "https://i.imgur.com/"

	// DefaultRequestsPerSecond keeps well inside the anonymous Imgur quota.
	DefaultRequestsPerSecond = 2.0

	// AuthorizationHeader is the header carrying the static credential.
	AuthorizationHeader = "Authorization"
)

// Search defaults.
const (
	// DefaultThrottle is the minimum spacing between forwarded query events.
	DefaultThrottle = 250 * time.Millisecond

	// DefaultLookAhead is how close to the end of the list a scroll must get
	// before the next page is requested.
	DefaultLookAhead = 5
)

// OAuth2 endpoint paths, relative to the catalog base URL.
const (
	OAuthAuthorizePath = "/oauth2/authorize"
	OAuthTokenPath     = "/oauth2/token"
)

// DefaultProbeAddress is dialled to decide whether the catalog is reachable.
const DefaultProbeAddress = "api.imgur.com:443"

// CatalogSettings configures the remote image catalog.
type CatalogSettings struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string

	// ImageBaseURL is prefixed to cover paths to build image URLs.
	ImageBaseURL string

	// ClientID is the anonymous application credential.
	ClientID string

	// ClientSecret is only needed to exchange an OAuth2 authorization code.
	ClientSecret string

	// AccessToken, when set, authenticates as a user via OAuth2 bearer tokens.
	AccessToken string

	// RequestsPerSecond is the proactive client-side request rate.
	RequestsPerSecond float64
}

// Authorization returns the static header value attached to every search.
func (c CatalogSettings) Authorization() string {
	if c.ClientID == "" {
		return ""
	}
	return "Client-ID " + c.ClientID
}

// SearchSettings tunes the input throttle and pagination.
type SearchSettings struct {
	Throttle  time.Duration
	LookAhead int
}

// StorageSettings configures the local comment store.
type StorageSettings struct {
	// DataDir holds the comment database. Empty means ~/.imgscout/data.
	DataDir string
}

// NetworkSettings configures the connectivity probe.
type NetworkSettings struct {
	ProbeAddress string
}

// AppSettings holds all user-configurable application settings.
type AppSettings struct {
	Catalog CatalogSettings
	Search  SearchSettings
	Storage StorageSettings
	Network NetworkSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Catalog: CatalogSettings{
			BaseURL:           DefaultCatalogBaseURL,
			ImageBaseURL:      DefaultImageBaseURL,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Search: SearchSettings{
			Throttle:  DefaultThrottle,
			LookAhead: DefaultLookAhead,
		},
		Network: NetworkSettings{
			ProbeAddress: DefaultProbeAddress,
		},
	}
}
