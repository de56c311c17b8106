package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/zalando-incubator/authmosphere-sub000/authz"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// ScopesConfig holds configuration for the scope authorization interceptors.
type ScopesConfig struct {
	logger        Logger
	exemptMethods map[string]bool
	deniedCode    codes.Code
}

// ScopesOption is a functional option for configuring the scope interceptors.
type ScopesOption func(*ScopesConfig)

// WithScopesLogger sets a logger for the scope interceptors.
func WithScopesLogger(logger Logger) ScopesOption {
	return func(c *ScopesConfig) {
		c.logger = oauth2client.OrNop(logger)
	}
}

// WithScopesExemptMethods skips the scope check for methods, typically the same methods that are
// exempt from authentication.
func WithScopesExemptMethods(methods ...string) ScopesOption {
	return func(c *ScopesConfig) {
		for _, method := range methods {
			c.exemptMethods[method] = true
		}
	}
}

// WithDeniedCode sets the gRPC status code for missing scopes. Default is codes.PermissionDenied.
func WithDeniedCode(code codes.Code) ScopesOption {
	return func(c *ScopesConfig) {
		c.deniedCode = code
	}
}

type scopeChecker struct {
	config    *ScopesConfig
	evaluator *authz.Evaluator
}

func newScopeChecker(scopes []string, opts []ScopesOption) *scopeChecker {
	config := &ScopesConfig{
		logger:        oauth2client.NopLogger(),
		exemptMethods: make(map[string]bool),
		deniedCode:    codes.PermissionDenied,
	}

	for _, opt := range opts {
		opt(config)
	}

	return &scopeChecker{
		config:    config,
		evaluator: authz.NewEvaluator(authz.ScopePolicy{RequiredScopes: scopes}),
	}
}

func (c *scopeChecker) check(ctx context.Context, method string) error {
	if c.config.exemptMethods[method] {
		return nil
	}

	info, _ := TokenInfoFromContext(ctx)
	if err := c.evaluator.AuthorizeToken(info); err != nil {
		c.config.logger.Warn("grpcserver: authorization failed", "method", method, "error", err)
		return status.Error(c.config.deniedCode, err.Error())
	}
	return nil
}

// RequireScopesUnaryInterceptor returns a unary interceptor that requires every scope in scopes to
// be granted to the authenticated token. It must run after UnaryServerInterceptor; calls without
// token info in their context are denied with codes.PermissionDenied.
//
// Usage:
//
//	server := grpc.NewServer(grpc.ChainUnaryInterceptor(
//	    authenticate,
//	    grpcserver.RequireScopesUnaryInterceptor([]string{"nucleus.read"}),
//	))
func RequireScopesUnaryInterceptor(scopes []string, opts ...ScopesOption) grpc.UnaryServerInterceptor {
	checker := newScopeChecker(scopes, opts)

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if err := checker.check(ctx, info.FullMethod); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// RequireScopesStreamInterceptor is the streaming counterpart of RequireScopesUnaryInterceptor.
func RequireScopesStreamInterceptor(scopes []string, opts ...ScopesOption) grpc.StreamServerInterceptor {
	checker := newScopeChecker(scopes, opts)

	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if err := checker.check(ss.Context(), info.FullMethod); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}
