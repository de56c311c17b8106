package httpclient

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/zalando-incubator/authmosphere-sub000/internal/tlsconfig"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// Builder provides a fluent interface for constructing HTTP clients
// with optional bearer token injection and TLS/mTLS support.
//
// A client built without a token source is suitable for oauth2client.WithHTTPClient, e.g. to reach
// a token endpoint that requires mTLS.
type Builder struct {
	// Bearer token configuration
	accessToken AccessTokenFunc

	// TLS configuration
	tlsEnabled    bool
	tlsCAFile     string
	tlsCertFile   string
	tlsKeyFile    string
	tlsSkipVerify bool

	// HTTP client configuration
	timeout         time.Duration
	baseTransport   http.RoundTripper
	followRedirects bool
}

// NewBuilder creates a new HTTP client builder.
func NewBuilder() *Builder {
	return &Builder{
		timeout:         30 * time.Second, // Default 30s timeout
		followRedirects: true,
	}
}

// WithTokenCache injects the token cached under name into every request.
func (b *Builder) WithTokenCache(cache *oauth2client.TokenCache, name string) *Builder {
	b.accessToken = TokenCacheFunc(cache, name)
	return b
}

// WithTokenSource injects tokens from an oauth2.TokenSource, e.g. TokenCache.TokenSource or
// a golang.org/x/oauth2/clientcredentials config.
func (b *Builder) WithTokenSource(ts oauth2.TokenSource) *Builder {
	b.accessToken = TokenSourceFunc(ts)
	return b
}

// WithAccessTokenFunc injects tokens returned by fn.
func (b *Builder) WithAccessTokenFunc(fn AccessTokenFunc) *Builder {
	b.accessToken = fn
	return b
}

// WithTLS enables TLS for the connection.
//
// Parameters:
//   - caFile: Path to CA certificate for server verification (optional, uses system roots if empty)
//   - certFile: Path to client certificate for mTLS (optional, must be paired with keyFile)
//   - keyFile: Path to client private key for mTLS (optional, must be paired with certFile)
func (b *Builder) WithTLS(caFile, certFile, keyFile string) *Builder {
	b.tlsEnabled = true
	b.tlsCAFile = caFile
	b.tlsCertFile = certFile
	b.tlsKeyFile = keyFile
	return b
}

// WithInsecureSkipVerify disables TLS certificate verification (NOT RECOMMENDED for production).
// This should only be used for testing or development purposes.
func (b *Builder) WithInsecureSkipVerify() *Builder {
	b.tlsSkipVerify = true
	return b
}

// WithTimeout sets the request timeout for the HTTP client.
// Default is 30 seconds if not specified.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// WithBaseTransport sets a custom base transport.
// This is useful for adding custom middleware or using a custom connection pool.
func (b *Builder) WithBaseTransport(transport http.RoundTripper) *Builder {
	b.baseTransport = transport
	return b
}

// WithoutRedirects disables automatic redirect following.
// By default, the client follows up to 10 redirects.
func (b *Builder) WithoutRedirects() *Builder {
	b.followRedirects = false
	return b
}

// Build constructs the HTTP client with the configured options.
//
// Returns:
//   - *http.Client: Configured HTTP client
//   - error: Error if configuration is invalid
func (b *Builder) Build() (*http.Client, error) {
	// Build base transport
	transport := b.baseTransport
	if transport == nil {
		if httpTransport, ok := http.DefaultTransport.(*http.Transport); ok {
			httpTransport = httpTransport.Clone()

			if b.tlsEnabled || b.tlsSkipVerify {
				tlsConfig, err := b.buildTLSConfig()
				if err != nil {
					return nil, fmt.Errorf("httpclient: TLS config failed: %w", err)
				}
				httpTransport.TLSClientConfig = tlsConfig
			} else {
				// Set secure TLS defaults even when TLS is not explicitly configured
				httpTransport.TLSClientConfig = &tls.Config{
					MinVersion: tls.VersionTLS12,
				}
			}

			transport = httpTransport
		} else {
			// Fallback to whatever default transport is configured (e.g., a test stub)
			transport = http.DefaultTransport
			if b.tlsEnabled || b.tlsSkipVerify {
				if base, ok := transport.(*http.Transport); ok {
					tlsConfig, err := b.buildTLSConfig()
					if err != nil {
						return nil, fmt.Errorf("httpclient: TLS config failed: %w", err)
					}
					cloned := base.Clone()
					cloned.TLSClientConfig = tlsConfig
					transport = cloned
				}
			}
		}
	}

	if b.accessToken != nil {
		transport = NewOAuth2Transport(b.accessToken, transport)
	}

	// Build HTTP client
	client := &http.Client{
		Transport: transport,
		Timeout:   b.timeout,
	}

	// Configure redirect policy
	if !b.followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client, nil
}

// buildTLSConfig constructs the TLS configuration for the HTTP client.
func (b *Builder) buildTLSConfig() (*tls.Config, error) {
	tlsConfig, err := tlsconfig.Client(tlsconfig.Files{
		CAFile:   b.tlsCAFile,
		CertFile: b.tlsCertFile,
		KeyFile:  b.tlsKeyFile,
	})
	if err != nil {
		return nil, err
	}
	tlsConfig.InsecureSkipVerify = b.tlsSkipVerify // #nosec G402

	return tlsConfig, nil
}

// NewHTTPClient is a convenience function that creates a simple HTTP client sending the token
// cached under name. For more configuration options, use Builder instead.
//
// Example:
//
//	client := httpclient.NewHTTPClient(cache, "nucleus")
//	resp, err := client.Get("https://nucleus.example.com/data")
func NewHTTPClient(cache *oauth2client.TokenCache, name string) *http.Client {
	return &http.Client{
		Transport: NewOAuth2Transport(TokenCacheFunc(cache, name), nil),
		Timeout:   30 * time.Second,
	}
}
