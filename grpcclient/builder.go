package grpcclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"slices"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/zalando-incubator/authmosphere-sub000/internal/tlsconfig"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// Builder provides a fluent interface for constructing gRPC client connections
// with optional bearer token authentication and TLS/mTLS support.
type Builder struct {
	address string

	// Bearer token configuration
	tokenCache *oauth2client.TokenCache
	tokenName  string

	// TLS configuration
	tlsEnabled    bool
	tlsCAFile     string
	tlsCertFile   string
	tlsKeyFile    string
	tlsServerName string

	// Additional dial options
	dialOpts []grpc.DialOption
}

// NewBuilder creates a new gRPC client builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithAddress sets the server address (e.g., "server.example.com:9090").
func (b *Builder) WithAddress(address string) *Builder {
	b.address = address
	return b
}

// WithTokenCache sends the token cached under name as "authorization: Bearer <token>" metadata on
// every unary and streaming call.
func (b *Builder) WithTokenCache(cache *oauth2client.TokenCache, name string) *Builder {
	b.tokenCache = cache
	b.tokenName = name
	return b
}

// WithTLS enables TLS for the connection.
//
// Parameters:
//   - caFile: Path to CA certificate for server verification (required)
//   - certFile: Path to client certificate for mTLS (optional, must be paired with keyFile)
//   - keyFile: Path to client private key for mTLS (optional, must be paired with certFile)
//   - serverName: Expected server name for TLS verification (optional, overrides SNI)
func (b *Builder) WithTLS(caFile, certFile, keyFile, serverName string) *Builder {
	b.tlsEnabled = true
	b.tlsCAFile = caFile
	b.tlsCertFile = certFile
	b.tlsKeyFile = keyFile
	b.tlsServerName = serverName
	return b
}

// WithDialOptions adds custom gRPC dial options.
// These options are applied after the token interceptors and TLS options.
func (b *Builder) WithDialOptions(opts ...grpc.DialOption) *Builder {
	b.dialOpts = append(b.dialOpts, opts...)
	return b
}

// Build constructs the gRPC client connection with the configured options.
//
// No token is requested here; the interceptors resolve it per call from the call's context.
// ctx only aborts the build when it is already done.
//
// Returns:
//   - *grpc.ClientConn: Established gRPC connection
//   - error: Error if connection fails
func (b *Builder) Build(ctx context.Context) (*grpc.ClientConn, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("grpcclient: %w", err)
		}
	}
	if b.address == "" {
		return nil, errors.New("grpcclient: server address is required")
	}

	var opts []grpc.DialOption

	// Add token interceptors if enabled
	if b.tokenCache != nil {
		if err := b.validateTokenConfig(); err != nil {
			return nil, err
		}

		opts = append(opts,
			grpc.WithUnaryInterceptor(b.tokenCache.UnaryClientInterceptor(b.tokenName)),
			grpc.WithStreamInterceptor(b.tokenCache.StreamClientInterceptor(b.tokenName)),
		)
	}

	// Add TLS credentials if enabled
	if b.tlsEnabled {
		tlsConfig, err := b.buildTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("grpcclient: TLS config failed: %w", err)
		}
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	} else {
		// Default to TLS with system roots to avoid accidental plaintext connections.
		// Set MinVersion to TLS 1.2 for secure defaults.
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{
			MinVersion: tls.VersionTLS12,
		})))
	}

	// Add custom dial options
	opts = append(opts, b.dialOpts...)

	// Create connection
	conn, err := grpc.NewClient(b.address, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpcclient: dial failed: %w", err)
	}

	return conn, nil
}

// validateTokenConfig ensures the token name is known to the cache.
func (b *Builder) validateTokenConfig() error {
	if b.tokenName == "" {
		return errors.New("grpcclient: token name is required")
	}
	if !slices.Contains(b.tokenCache.Names(), b.tokenName) {
		return fmt.Errorf("grpcclient: %w", &oauth2client.UnknownTokenNameError{Name: b.tokenName})
	}
	return nil
}

// buildTLSConfig constructs the TLS configuration for the gRPC connection.
func (b *Builder) buildTLSConfig() (*tls.Config, error) {
	tlsConfig, err := tlsconfig.Client(tlsconfig.Files{
		CAFile:   b.tlsCAFile,
		CertFile: b.tlsCertFile,
		KeyFile:  b.tlsKeyFile,
	})
	if err != nil {
		return nil, err
	}
	tlsConfig.ServerName = b.tlsServerName

	return tlsConfig, nil
}
