// Package httpserver provides server-side bearer token authentication and scope authorization for
// HTTP services that validate tokens against a central token info endpoint.
//
// # Features
//
//   - Authentication middleware for standard http.Handler
//   - Token introspection via GET <tokeninfo>?access_token=<token>
//   - Token info in the request context, with the access token removed
//   - Public endpoint prefixes that bypass authentication (health checks, metrics)
//   - Scope authorization middleware with an optional precedence rule
//   - Custom 401 and 403 handlers
//   - Optional logging through oauth2client.Logger
//
// # Quick Start
//
//	authenticate, err := httpserver.NewAuthenticationMiddleware(
//	    "https://auth.example.com/oauth2/tokeninfo",
//	    httpserver.WithPublicEndpoints("/health"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mux := http.NewServeMux()
//	mux.Handle("/nucleus", httpserver.RequireScopesMiddleware([]string{"nucleus.read"})(nucleusHandler))
//
//	http.ListenAndServe(":8080", authenticate(mux))
//
// # Accessing Token Info in Handlers
//
//	func nucleusHandler(w http.ResponseWriter, r *http.Request) {
//	    info := httpserver.MustTokenInfoFromContext(r.Context())
//	    fmt.Fprintf(w, "hello %v", info.Extra["uid"])
//	}
//
// # Precedence
//
// A precedence function can grant access regardless of scopes, e.g. for an employee realm:
//
//	httpserver.RequireScopesMiddleware(scopes, httpserver.WithPrecedenceOptions(httpserver.PrecedenceOptions{
//	    Function: func(r *http.Request) (bool, error) {
//	        info, ok := httpserver.TokenInfoFromContext(r.Context())
//	        return ok && info.Extra["realm"] == "/employees", nil
//	    },
//	}))
//
// When the function returns false or an error, the regular scope check applies.
//
// # Error Handling
//
// Authentication failures return HTTP 401 Unauthorized, missing scopes HTTP 403 Forbidden.
// Both can be replaced:
//
//	httpserver.WithNotAuthenticatedHandler(func(w http.ResponseWriter, r *http.Request, err error) {
//	    w.Header().Set("Content-Type", "application/json")
//	    w.WriteHeader(http.StatusUnauthorized)
//	    json.NewEncoder(w).Encode(map[string]string{"error": "invalid_token"})
//	})
//
// # Thread Safety
//
// The middlewares hold no mutable state and can serve concurrent requests.
package httpserver
