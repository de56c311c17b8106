package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/zalando-incubator/authmosphere-sub000/internal/validator"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// InterceptorConfig holds configuration for authentication interceptors.
type InterceptorConfig struct {
	tokenInfo        TokenInfoFunc
	exemptMethods    map[string]bool // Methods that don't require authentication
	logger           Logger
	tokenExtractor   TokenExtractor // custom token extraction logic (optional)
	unauthorizedCode codes.Code     // gRPC code to return on auth failure (default: Unauthenticated)
}

// InterceptorOption is a functional option for configuring interceptors.
type InterceptorOption func(*InterceptorConfig)

// WithExemptMethods specifies gRPC methods that don't require authentication.
// Method names should be in the format "/package.Service/Method".
//
// Example:
//
//	WithExemptMethods("/grpc.health.v1.Health/Check", "/grpc.health.v1.Health/Watch")
func WithExemptMethods(methods ...string) InterceptorOption {
	return func(c *InterceptorConfig) {
		if c.exemptMethods == nil {
			c.exemptMethods = make(map[string]bool)
		}
		for _, method := range methods {
			c.exemptMethods[method] = true
		}
	}
}

// WithInterceptorLogger sets a logger for the interceptor.
func WithInterceptorLogger(logger Logger) InterceptorOption {
	return func(c *InterceptorConfig) {
		c.logger = oauth2client.OrNop(logger)
	}
}

// WithInterceptorTokenInfoFunc replaces the token info lookup, e.g. with a cached or stubbed one.
func WithInterceptorTokenInfoFunc(fn TokenInfoFunc) InterceptorOption {
	return func(c *InterceptorConfig) {
		if fn != nil {
			c.tokenInfo = fn
		}
	}
}

// TokenExtractor is a function that extracts a token from gRPC metadata.
// It returns the token string and a boolean indicating whether extraction succeeded.
type TokenExtractor func(md metadata.MD) (string, bool)

// WithTokenExtractor sets a custom token extraction function.
// By default, tokens are extracted from the "authorization" header as "Bearer <token>".
func WithTokenExtractor(extractor TokenExtractor) InterceptorOption {
	return func(c *InterceptorConfig) {
		c.tokenExtractor = extractor
	}
}

// WithUnauthorizedCode sets the gRPC status code to return on authentication failures.
// Default is codes.Unauthenticated.
func WithUnauthorizedCode(code codes.Code) InterceptorOption {
	return func(c *InterceptorConfig) {
		c.unauthorizedCode = code
	}
}

// BearerTokenExtractor is the default TokenExtractor. It accepts exactly "Bearer <token>" in the
// first "authorization" metadata value.
func BearerTokenExtractor(md metadata.MD) (string, bool) {
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", false
	}
	return oauth2client.ExtractAccessToken(values[0])
}

type authenticator struct {
	config    *InterceptorConfig
	validator *validator.TokenInfoValidator
}

func newAuthenticator(tokenInfoEndpoint string, opts []InterceptorOption) (*authenticator, error) {
	config := &InterceptorConfig{
		exemptMethods:    make(map[string]bool),
		logger:           oauth2client.NopLogger(),
		tokenExtractor:   BearerTokenExtractor,
		unauthorizedCode: codes.Unauthenticated,
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.tokenExtractor == nil {
		config.tokenExtractor = BearerTokenExtractor
	}
	if config.tokenInfo == nil {
		config.tokenInfo = NewTokenInfoFunc(oauth2client.WithLogger(config.logger))
	}

	v, err := validator.NewTokenInfoValidator(tokenInfoEndpoint, config.tokenInfo)
	if err != nil {
		return nil, err
	}

	return &authenticator{config: config, validator: v}, nil
}

// authenticate returns ctx with the token info attached, or the status error for the caller.
// The second result is false for exempt methods.
func (a *authenticator) authenticate(ctx context.Context, method string) (context.Context, bool, error) {
	if a.config.exemptMethods[method] {
		a.config.logger.Debug("grpcserver: method is exempt from authentication", "method", method)
		return ctx, false, nil
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		a.config.logger.Warn("grpcserver: missing metadata", "method", method)
		return nil, true, status.Error(a.config.unauthorizedCode, "grpcserver: missing metadata")
	}

	accessToken, ok := a.config.tokenExtractor(md)
	if !ok {
		a.config.logger.Warn("grpcserver: missing or malformed bearer token", "method", method)
		return nil, true, status.Error(a.config.unauthorizedCode, "grpcserver: missing or invalid authorization token")
	}

	info, err := a.validator.ValidateToken(ctx, accessToken)
	if err != nil {
		a.config.logger.Warn("grpcserver: token rejected", "method", method, "error", err)
		return nil, true, status.Errorf(a.config.unauthorizedCode, "grpcserver: token validation failed: %v", err)
	}

	a.config.logger.Debug("grpcserver: authenticated call", "method", method, "subject", info.Subject(), "scope", info.Scope)
	return WithTokenInfo(ctx, info), true, nil
}

// UnaryServerInterceptor returns a gRPC unary server interceptor that validates bearer tokens on
// incoming calls via the token info endpoint.
//
// The interceptor:
//   - extracts the token from the "authorization" metadata ("Bearer <token>")
//   - resolves it via GET <tokenInfoEndpoint>?access_token=<token>
//   - stores the token info, without its access_token, in the call context (see TokenInfoFromContext)
//   - returns codes.Unauthenticated for missing, malformed or rejected tokens
//   - optionally exempts specific methods from authentication
//
// An empty tokenInfoEndpoint is a configuration error.
//
// Usage:
//
//	authenticate, err := grpcserver.UnaryServerInterceptor("https://auth.example.com/oauth2/tokeninfo")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	server := grpc.NewServer(grpc.UnaryInterceptor(authenticate))
func UnaryServerInterceptor(tokenInfoEndpoint string, opts ...InterceptorOption) (grpc.UnaryServerInterceptor, error) {
	auth, err := newAuthenticator(tokenInfoEndpoint, opts)
	if err != nil {
		return nil, err
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		authCtx, _, err := auth.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(authCtx, req)
	}, nil
}

// StreamServerInterceptor is the streaming counterpart of UnaryServerInterceptor.
// The token info is available from the Context of the stream passed to the handler.
func StreamServerInterceptor(tokenInfoEndpoint string, opts ...InterceptorOption) (grpc.StreamServerInterceptor, error) {
	auth, err := newAuthenticator(tokenInfoEndpoint, opts)
	if err != nil {
		return nil, err
	}

	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		authCtx, authenticated, err := auth.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		if !authenticated {
			return handler(srv, ss)
		}

		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: authCtx})
	}, nil
}

// wrappedServerStream wraps a grpc.ServerStream to override the context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context with the token info.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
