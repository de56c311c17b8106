package grpcserver

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// #nosec G101 -- context key, not a credential
const (
	// tokenInfoKey is the context key for storing TokenInfo.
	tokenInfoKey contextKey = "grpcserver.token_info" //nolint:gosec // context key, not a credential
)

// WithTokenInfo returns a new context with the provided TokenInfo.
// This is used by the interceptors to store the validated token info in the call context.
func WithTokenInfo(ctx context.Context, info *TokenInfo) context.Context {
	return context.WithValue(ctx, tokenInfoKey, info)
}

// TokenInfoFromContext extracts TokenInfo from the context.
// Returns the token info and true if found, or nil and false if not present.
//
// Example:
//
//	func (s *server) GetNucleus(ctx context.Context, req *pb.Request) (*pb.Response, error) {
//	    info, ok := grpcserver.TokenInfoFromContext(ctx)
//	    if !ok {
//	        return nil, status.Error(codes.Unauthenticated, "not authenticated")
//	    }
//	    uid := info.Extra["uid"]
//	    // ...
//	}
func TokenInfoFromContext(ctx context.Context) (*TokenInfo, bool) {
	info, ok := ctx.Value(tokenInfoKey).(*TokenInfo)
	if !ok || info == nil {
		return nil, false
	}
	return info, true
}

// MustTokenInfoFromContext extracts TokenInfo from the context and panics if not found.
// This should only be used in handlers where authentication is guaranteed by the interceptor.
func MustTokenInfoFromContext(ctx context.Context) *TokenInfo {
	info, ok := TokenInfoFromContext(ctx)
	if !ok {
		panic("grpcserver: token info not found in context")
	}
	return info
}
