package grpcserver

import (
	"crypto/tls"
	"net/http"
	"time"

	"google.golang.org/grpc"

	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// InterceptorBuilder provides a fluent interface for constructing the authentication interceptors,
// optionally followed by a scope requirement, as grpc.ServerOptions.
type InterceptorBuilder struct {
	tokenInfoEndpoint string
	httpClient        *http.Client
	logger            Logger
	exemptMethods     []string
	requiredScopes    []string
	tokenInfo         TokenInfoFunc
}

// NewInterceptorBuilder creates a new builder for the given token info endpoint.
//
// The builder uses secure defaults:
//   - token info requests time out after 10 seconds
//   - the HTTP client uses TLS 1.2+ with system root CAs
func NewInterceptorBuilder(tokenInfoEndpoint string) *InterceptorBuilder {
	return &InterceptorBuilder{
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
func (b *InterceptorBuilder) WithHTTPClient(client *http.Client) *InterceptorBuilder {
	b.httpClient = client
	return b
}

// WithLogger sets a logger for token info requests and all interceptors.
func (b *InterceptorBuilder) WithLogger(logger Logger) *InterceptorBuilder {
	b.logger = logger
	return b
}

// WithExemptMethods adds methods that skip authentication and the scope check.
//
// Example:
//
//	builder.WithExemptMethods("/grpc.health.v1.Health/Check")
func (b *InterceptorBuilder) WithExemptMethods(methods ...string) *InterceptorBuilder {
	b.exemptMethods = append(b.exemptMethods, methods...)
	return b
}

// WithRequiredScopes adds a scope check after authentication.
func (b *InterceptorBuilder) WithRequiredScopes(scopes ...string) *InterceptorBuilder {
	b.requiredScopes = append(b.requiredScopes, scopes...)
	return b
}

// WithTokenInfoFunc replaces the token info lookup. The configured HTTP client is not used then.
func (b *InterceptorBuilder) WithTokenInfoFunc(fn TokenInfoFunc) *InterceptorBuilder {
	b.tokenInfo = fn
	return b
}

// Build returns server options installing the unary and stream interceptor chains.
//
// Returns a *oauth2client.ConfigError if the token info endpoint is empty.
//
// Usage:
//
//	opts, err := grpcserver.NewInterceptorBuilder(tokenInfoEndpoint).
//	    WithExemptMethods("/grpc.health.v1.Health/Check").
//	    WithRequiredScopes("nucleus.read").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	server := grpc.NewServer(opts...)
func (b *InterceptorBuilder) Build() ([]grpc.ServerOption, error) {
	tokenInfo := b.tokenInfo
	if tokenInfo == nil {
		tokenInfo = NewTokenInfoFunc(
			oauth2client.WithHTTPClient(b.httpClient),
			oauth2client.WithLogger(b.logger),
		)
	}

	authOpts := []InterceptorOption{
		WithExemptMethods(b.exemptMethods...),
		WithInterceptorLogger(b.logger),
		WithInterceptorTokenInfoFunc(tokenInfo),
	}

	unary, err := UnaryServerInterceptor(b.tokenInfoEndpoint, authOpts...)
	if err != nil {
		return nil, err
	}
	stream, err := StreamServerInterceptor(b.tokenInfoEndpoint, authOpts...)
	if err != nil {
		return nil, err
	}

	unaryChain := []grpc.UnaryServerInterceptor{unary}
	streamChain := []grpc.StreamServerInterceptor{stream}

	if len(b.requiredScopes) > 0 {
		scopeOpts := []ScopesOption{
			WithScopesLogger(b.logger),
			WithScopesExemptMethods(b.exemptMethods...),
		}
		unaryChain = append(unaryChain, RequireScopesUnaryInterceptor(b.requiredScopes, scopeOpts...))
		streamChain = append(streamChain, RequireScopesStreamInterceptor(b.requiredScopes, scopeOpts...))
	}

	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(unaryChain...),
		grpc.ChainStreamInterceptor(streamChain...),
	}, nil
}
