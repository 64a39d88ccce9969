// Package oauth exchanges Imgur authorization codes for user access tokens.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driven"
)

// DefaultTimeout bounds a single token request.
const DefaultTimeout = 30 * time.Second

var _ driven.TokenExchanger = (*Exchanger)(nil)

// Exchanger implements driven.TokenExchanger against the catalog's
// /oauth2 endpoints.
type Exchanger struct {
	config oauth2.Config
	client *http.Client
}

// NewExchanger builds an exchanger from the catalog settings. Client
// credentials are sent in the form body.
func NewExchanger(catalog domain.CatalogSettings) *Exchanger {
	base := catalog.BaseURL
	if base == "" {
		base = domain.DefaultCatalogBaseURL
	}
	return &Exchanger{
		config: oauth2.Config{
			ClientID:     catalog.ClientID,
			ClientSecret: catalog.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + domain.OAuthAuthorizePath,
				TokenURL:  base + domain.OAuthTokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

func (e *Exchanger) withRedirect(redirectURI string) *oauth2.Config {
	cfg := e.config
	cfg.RedirectURL = redirectURI
	return &cfg
}

// AuthCodeURL returns the consent page URL.
func (e *Exchanger) AuthCodeURL(state, redirectURI string) string {
	return e.withRedirect(redirectURI).AuthCodeURL(state)
}

// Exchange trades code for a token. Provider rejections surface the
// provider's error code and description.
func (e *Exchanger) Exchange(ctx context.Context, code, redirectURI string) (*domain.OAuthToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.client)

	tok, err := e.withRedirect(redirectURI).Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.ErrorCode != "" {
			return nil, fmt.Errorf("token exchange rejected: %s %s", rerr.ErrorCode, rerr.ErrorDescription)
		}
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	out := &domain.OAuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if account, ok := tok.Extra("account_username").(string); ok {
		out.Account = account
	}
	return out, nil
}
