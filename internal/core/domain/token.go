package domain

import "time"

// OAuthToken is the result of a completed authorization code exchange.
type OAuthToken struct {
	AccessToken  string
	RefreshToken string

	// Account is the catalog username the token acts for, if reported.
	Account string

	// Expiry is zero when the provider did not say.
	Expiry time.Time
}
