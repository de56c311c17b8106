// Package validator resolves bearer tokens to token info documents for the server-side packages.
package validator

import (
	"context"
	"errors"
	"strings"

	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// ErrEmptyToken is returned by ValidateToken for an empty access token.
var ErrEmptyToken = errors.New("validator: token is empty")

// TokenInfoFunc resolves an access token to its token info document.
// Any error means the token is not valid.
type TokenInfoFunc func(ctx context.Context, tokenInfoEndpoint, accessToken string) (*oauth2client.Token, error)

// NewTokenInfoFunc returns a TokenInfoFunc backed by an oauth2client.Client configured with opts.
func NewTokenInfoFunc(opts ...oauth2client.Option) TokenInfoFunc {
	client := oauth2client.NewClient(opts...)

	return func(ctx context.Context, tokenInfoEndpoint, accessToken string) (*oauth2client.Token, error) {
		return client.GetTokenInfo(ctx, tokenInfoEndpoint, accessToken)
	}
}

// TokenInfoValidator validates access tokens against one token info endpoint.
type TokenInfoValidator struct {
	endpoint string
	lookup   TokenInfoFunc
}

// NewTokenInfoValidator creates a validator for endpoint. A nil lookup uses NewTokenInfoFunc().
// An empty endpoint is a configuration error.
func NewTokenInfoValidator(endpoint string, lookup TokenInfoFunc) (*TokenInfoValidator, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, &oauth2client.ConfigError{Field: "tokenInfoEndpoint", Reason: "is required"}
	}
	if lookup == nil {
		lookup = NewTokenInfoFunc()
	}

	return &TokenInfoValidator{endpoint: endpoint, lookup: lookup}, nil
}

// Endpoint returns the token info endpoint.
func (v *TokenInfoValidator) Endpoint() string {
	return v.endpoint
}

// ValidateToken resolves accessToken and returns a copy of its token info without the access token.
// The document returned by the lookup is never modified.
func (v *TokenInfoValidator) ValidateToken(ctx context.Context, accessToken string) (*oauth2client.Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrEmptyToken
	}

	info, err := v.lookup(ctx, v.endpoint, accessToken)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return &oauth2client.Token{}, nil
	}

	return info.WithoutAccessToken(), nil
}
