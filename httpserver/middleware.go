package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/zalando-incubator/authmosphere-sub000/internal/validator"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// ErrMissingBearerToken is passed to the NotAuthenticatedHandler when the Authorization header is
// missing or not of the form "Bearer <token>".
var ErrMissingBearerToken = errors.New("httpserver: missing or malformed bearer token")

// MiddlewareConfig holds configuration for the authentication middleware.
type MiddlewareConfig struct {
	publicEndpoints         []string
	logger                  Logger
	tokenInfo               TokenInfoFunc
	notAuthenticatedHandler NotAuthenticatedHandler
}

// MiddlewareOption is a functional option for configuring the authentication middleware.
type MiddlewareOption func(*MiddlewareConfig)

// WithPublicEndpoints specifies request URI prefixes that bypass authentication.
//
// Example:
//
//	WithPublicEndpoints("/health", "/metrics", "/public/")
func WithPublicEndpoints(prefixes ...string) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.publicEndpoints = append(c.publicEndpoints, prefixes...)
	}
}

// WithMiddlewareLogger sets a logger for the middleware.
func WithMiddlewareLogger(logger Logger) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.logger = oauth2client.OrNop(logger)
	}
}

// WithTokenInfoFunc replaces the token info lookup, e.g. with a cached or stubbed one.
func WithTokenInfoFunc(fn TokenInfoFunc) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		if fn != nil {
			c.tokenInfo = fn
		}
	}
}

// WithNotAuthenticatedHandler sets a custom handler for authentication failures.
// By default, the middleware answers with HTTP 401.
func WithNotAuthenticatedHandler(handler NotAuthenticatedHandler) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		if handler != nil {
			c.notAuthenticatedHandler = handler
		}
	}
}

// NewAuthenticationMiddleware returns an HTTP middleware that validates bearer tokens via the
// token info endpoint.
//
// The middleware:
//   - passes requests whose URI starts with a public endpoint prefix straight through
//   - requires "Authorization: Bearer <token>" (exactly two space separated parts)
//   - resolves the token via GET <tokenInfoEndpoint>?access_token=<token> or WithTokenInfoFunc
//   - stores the result, without its access_token, in the request context (see TokenInfoFromContext)
//   - answers 401, or calls the NotAuthenticatedHandler, for missing, malformed or rejected tokens
//
// An empty tokenInfoEndpoint is a configuration error.
//
// Usage:
//
//	authenticate, err := httpserver.NewAuthenticationMiddleware(
//	    "https://auth.example.com/oauth2/tokeninfo",
//	    httpserver.WithPublicEndpoints("/health"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", authenticate(mux))
func NewAuthenticationMiddleware(tokenInfoEndpoint string, opts ...MiddlewareOption) (func(http.Handler) http.Handler, error) {
	config := &MiddlewareConfig{
		logger: oauth2client.NopLogger(),
		notAuthenticatedHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		},
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.tokenInfo == nil {
		config.tokenInfo = NewTokenInfoFunc(oauth2client.WithLogger(config.logger))
	}

	tokenValidator, err := validator.NewTokenInfoValidator(tokenInfoEndpoint, config.tokenInfo)
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.RequestURI(), config.publicEndpoints) {
				config.logger.Debug("httpserver: public endpoint, skipping authentication", "uri", r.URL.RequestURI())
				next.ServeHTTP(w, r)
				return
			}

			accessToken, ok := oauth2client.ExtractAccessToken(r.Header.Get("Authorization"))
			if !ok {
				config.logger.Warn("httpserver: missing or malformed bearer token", "method", r.Method, "path", r.URL.Path)
				config.notAuthenticatedHandler(w, r, ErrMissingBearerToken)
				return
			}

			info, err := tokenValidator.ValidateToken(r.Context(), accessToken)
			if err != nil {
				config.logger.Warn("httpserver: token rejected", "method", r.Method, "path", r.URL.Path, "error", err)
				config.notAuthenticatedHandler(w, r, err)
				return
			}

			config.logger.Debug("httpserver: authenticated request", "path", r.URL.Path, "subject", info.Subject())
			ctx := WithTokenInfo(r.Context(), info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

// isPublic checks if a request URI starts with one of the public endpoint prefixes.
func isPublic(uri string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(uri, prefix) {
			return true
		}
	}
	return false
}
