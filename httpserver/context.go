package httpserver

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// tokenInfoKey is the context key for storing TokenInfo.
	tokenInfoKey contextKey = "httpserver.token_info"
)

// WithTokenInfo returns a new context with the provided TokenInfo.
// This is used by the authentication middleware to attach the introspection result to the request.
func WithTokenInfo(ctx context.Context, info *TokenInfo) context.Context {
	return context.WithValue(ctx, tokenInfoKey, info)
}

// TokenInfoFromContext extracts TokenInfo from the context.
// Returns the token info and true if found, or nil and false if not present.
//
// Example:
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    info, ok := httpserver.TokenInfoFromContext(r.Context())
//	    if !ok {
//	        http.Error(w, "not authenticated", http.StatusUnauthorized)
//	        return
//	    }
//	    uid := info.Extra["uid"]
//	    // ... use token info ...
//	}
func TokenInfoFromContext(ctx context.Context) (*TokenInfo, bool) {
	info, ok := ctx.Value(tokenInfoKey).(*TokenInfo)
	return info, ok && info != nil
}

// MustTokenInfoFromContext extracts TokenInfo from the context and panics if not found.
// This should only be used in handlers where authentication is guaranteed by the middleware.
func MustTokenInfoFromContext(ctx context.Context) *TokenInfo {
	info, ok := TokenInfoFromContext(ctx)
	if !ok {
		panic("httpserver: token info not found in context")
	}
	return info
}
