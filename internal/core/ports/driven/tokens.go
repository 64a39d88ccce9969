package driven

import (
	"context"

	"github.com/custodia-labs/imgscout/internal/core/domain"
)

// TokenExchanger drives the catalog's OAuth2 authorization code flow.
type TokenExchanger interface {
	// AuthCodeURL returns the consent page URL for state and redirectURI.
	AuthCodeURL(state, redirectURI string) string

	// Exchange trades an authorization code for a user token.
	Exchange(ctx context.Context, code, redirectURI string) (*domain.OAuthToken, error)
}
