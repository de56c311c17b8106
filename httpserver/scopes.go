package httpserver

import (
	"net/http"

	"github.com/zalando-incubator/authmosphere-sub000/authz"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// PrecedenceFunc may grant access before the scope check runs.
// Returning true lets the request through; false or an error falls back to the scope check.
type PrecedenceFunc func(r *http.Request) (bool, error)

// PrecedenceOptions configures an access rule that takes precedence over the required scopes.
type PrecedenceOptions struct {
	Function PrecedenceFunc
	// ErrorHandler is called when Function fails. Optional.
	ErrorHandler func(r *http.Request, err error)
}

// ScopesConfig holds configuration for the scope authorization middleware.
type ScopesConfig struct {
	logger                     Logger
	precedence                 *PrecedenceOptions
	authorizationFailedHandler AuthorizationFailedHandler
}

// ScopesOption is a functional option for configuring RequireScopesMiddleware.
type ScopesOption func(*ScopesConfig)

// WithScopesLogger sets a logger for the scope middleware.
func WithScopesLogger(logger Logger) ScopesOption {
	return func(c *ScopesConfig) {
		c.logger = oauth2client.OrNop(logger)
	}
}

// WithPrecedenceOptions installs an access rule evaluated before the scope check.
func WithPrecedenceOptions(options PrecedenceOptions) ScopesOption {
	return func(c *ScopesConfig) {
		if options.Function != nil {
			c.precedence = &options
		}
	}
}

// WithAuthorizationFailedHandler sets a custom handler for missing scopes.
// By default, the middleware answers with HTTP 403.
func WithAuthorizationFailedHandler(handler AuthorizationFailedHandler) ScopesOption {
	return func(c *ScopesConfig) {
		if handler != nil {
			c.authorizationFailedHandler = handler
		}
	}
}

// RequireScopesMiddleware returns an HTTP middleware that requires every scope in scopes to be
// granted to the authenticated token. It must run after NewAuthenticationMiddleware; requests
// without token info in their context are denied.
//
// Scope order and duplicates do not matter and additional granted scopes are allowed. Denied
// requests receive HTTP 403, or are passed to the AuthorizationFailedHandler with an
// *authz.PermissionDeniedError.
//
// Usage:
//
//	mux.Handle("/nucleus", httpserver.RequireScopesMiddleware([]string{"nucleus.read"})(nucleusHandler))
func RequireScopesMiddleware(scopes []string, opts ...ScopesOption) func(http.Handler) http.Handler {
	config := &ScopesConfig{
		logger: oauth2client.NopLogger(),
		authorizationFailedHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		},
	}

	for _, opt := range opts {
		opt(config)
	}

	evaluator := authz.NewEvaluator(authz.ScopePolicy{RequiredScopes: scopes})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.precedence != nil && precedenceGranted(r, config) {
				next.ServeHTTP(w, r)
				return
			}

			info, _ := TokenInfoFromContext(r.Context())
			if err := evaluator.AuthorizeToken(info); err != nil {
				config.logger.Warn("httpserver: authorization failed", "method", r.Method, "path", r.URL.Path, "error", err)
				config.authorizationFailedHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func precedenceGranted(r *http.Request, config *ScopesConfig) bool {
	granted, err := config.precedence.Function(r)
	if err != nil {
		config.logger.Warn("httpserver: precedence function failed, falling back to scope check", "error", err)
		if config.precedence.ErrorHandler != nil {
			config.precedence.ErrorHandler(r, err)
		}
		return false
	}
	if granted {
		config.logger.Debug("httpserver: access granted by precedence function", "path", r.URL.Path)
	}
	return granted
}
