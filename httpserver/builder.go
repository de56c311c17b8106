package httpserver

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// MiddlewareBuilder provides a fluent interface for constructing the authentication middleware,
// optionally followed by a scope requirement.
type MiddlewareBuilder struct {
	tokenInfoEndpoint string
	httpClient        *http.Client
	logger            Logger
	publicEndpoints   []string
	requiredScopes    []string
	tokenInfo         TokenInfoFunc
	notAuthenticated  NotAuthenticatedHandler
	scopeOptions      []ScopesOption
}

// NewMiddlewareBuilder creates a new builder for the given token info endpoint.
//
// The builder uses secure defaults:
//   - token info requests time out after 10 seconds
//   - the HTTP client uses TLS 1.2+ with system root CAs
func NewMiddlewareBuilder(tokenInfoEndpoint string) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		tokenInfoEndpoint: tokenInfoEndpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
	}
}

// WithHTTPClient sets a custom HTTP client for token info requests.
// This is useful for custom timeouts, proxies or mTLS (see httpclient.NewBuilder).
func (b *MiddlewareBuilder) WithHTTPClient(client *http.Client) *MiddlewareBuilder {
	b.httpClient = client
	return b
}

// WithLogger sets a logger for token info requests and both middlewares.
func (b *MiddlewareBuilder) WithLogger(logger Logger) *MiddlewareBuilder {
	b.logger = logger
	return b
}

// WithPublicEndpoints adds request URI prefixes that bypass authentication.
func (b *MiddlewareBuilder) WithPublicEndpoints(prefixes ...string) *MiddlewareBuilder {
	b.publicEndpoints = append(b.publicEndpoints, prefixes...)
	return b
}

// WithRequiredScopes appends RequireScopesMiddleware after authentication.
// Public endpoints are not subject to the scope check.
func (b *MiddlewareBuilder) WithRequiredScopes(scopes ...string) *MiddlewareBuilder {
	b.requiredScopes = append(b.requiredScopes, scopes...)
	return b
}

// WithTokenInfoFunc replaces the token info lookup. The configured HTTP client is not used then.
func (b *MiddlewareBuilder) WithTokenInfoFunc(fn TokenInfoFunc) *MiddlewareBuilder {
	b.tokenInfo = fn
	return b
}

// WithNotAuthenticatedHandler sets a custom handler for authentication failures.
func (b *MiddlewareBuilder) WithNotAuthenticatedHandler(handler NotAuthenticatedHandler) *MiddlewareBuilder {
	b.notAuthenticated = handler
	return b
}

// WithScopesOptions passes options to RequireScopesMiddleware.
func (b *MiddlewareBuilder) WithScopesOptions(opts ...ScopesOption) *MiddlewareBuilder {
	b.scopeOptions = append(b.scopeOptions, opts...)
	return b
}

// Build constructs the middleware chain.
//
// Returns a *oauth2client.ConfigError if the token info endpoint is empty.
func (b *MiddlewareBuilder) Build() (func(http.Handler) http.Handler, error) {
	tokenInfo := b.tokenInfo
	if tokenInfo == nil {
		tokenInfo = NewTokenInfoFunc(
			oauth2client.WithHTTPClient(b.httpClient),
			oauth2client.WithLogger(b.logger),
		)
	}

	authenticate, err := NewAuthenticationMiddleware(
		b.tokenInfoEndpoint,
		WithPublicEndpoints(b.publicEndpoints...),
		WithMiddlewareLogger(b.logger),
		WithTokenInfoFunc(tokenInfo),
		WithNotAuthenticatedHandler(b.notAuthenticated),
	)
	if err != nil {
		return nil, err
	}

	if len(b.requiredScopes) == 0 {
		return authenticate, nil
	}

	scopeOptions := append([]ScopesOption{WithScopesLogger(b.logger)}, b.scopeOptions...)
	requireScopes := RequireScopesMiddleware(b.requiredScopes, scopeOptions...)
	publicEndpoints := append([]string(nil), b.publicEndpoints...)

	return func(next http.Handler) http.Handler {
		scoped := requireScopes(next)
		return authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.RequestURI(), publicEndpoints) {
				next.ServeHTTP(w, r)
				return
			}
			scoped.ServeHTTP(w, r)
		}))
	}, nil
}
