package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// AccessTokenFunc returns the bearer token for an outgoing request.
// oauth2client.TokenCache.ResolveAccessTokenFactory produces one.
type AccessTokenFunc func(ctx context.Context) (string, error)

// OAuth2Transport is an http.RoundTripper that adds "Authorization: Bearer <token>" to outgoing
// HTTP requests.
//
// It wraps an existing transport (typically http.DefaultTransport) and injects the Authorization
// header before each request.
type OAuth2Transport struct {
	// Base is the underlying HTTP transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// AccessToken provides access tokens.
	AccessToken AccessTokenFunc
}

// RoundTrip implements http.RoundTripper interface.
// The token lookup receives the request context, so it respects cancellation and deadlines.
func (t *OAuth2Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.AccessToken == nil {
		return nil, errors.New("httpclient: AccessToken is nil")
	}

	token, err := t.AccessToken(req.Context())
	if err != nil {
		return nil, fmt.Errorf("httpclient: failed to get token: %w", err)
	}

	// Clone the request to avoid modifying the original
	reqClone := req.Clone(req.Context())
	reqClone.Header.Set("Authorization", "Bearer "+token)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return base.RoundTrip(reqClone)
}

// NewOAuth2Transport creates a new OAuth2Transport with the given token function.
// The base transport defaults to http.DefaultTransport if not specified.
func NewOAuth2Transport(accessToken AccessTokenFunc, base http.RoundTripper) *OAuth2Transport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &OAuth2Transport{
		Base:        base,
		AccessToken: accessToken,
	}
}

// TokenCacheFunc returns an AccessTokenFunc serving the token cached under name.
func TokenCacheFunc(cache *oauth2client.TokenCache, name string) AccessTokenFunc {
	if cache == nil {
		return nil
	}
	return cache.ResolveAccessTokenFactory(name)
}

// TokenSourceFunc adapts an oauth2.TokenSource. The source is wrapped with oauth2.ReuseTokenSource
// so valid tokens are not requested again.
func TokenSourceFunc(ts oauth2.TokenSource) AccessTokenFunc {
	if ts == nil {
		return nil
	}
	reuse := oauth2.ReuseTokenSource(nil, ts)

	return func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		token, err := reuse.Token()
		if err != nil {
			return "", err
		}
		return token.AccessToken, nil
	}
}
