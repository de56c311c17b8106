package oauth2client

import (
	"context"
	"net/http"
	"time"
)

// Client talks to the token endpoint and the token info endpoint.
// A Client is stateless apart from its configuration and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     Logger
	loader     CredentialsLoader
	now        func() time.Time
}

// Option is a functional option for configuring Client and TokenCache.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all requests.
// Defaults to http.DefaultClient; use httpclient.NewBuilder for TLS/mTLS setups.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets a logger. A nil logger disables logging.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = OrNop(logger)
	}
}

// WithLoggingEnabled logs through the standard library log package.
func WithLoggingEnabled() Option {
	return func(c *Client) {
		c.logger = defaultLogger()
	}
}

// WithCredentialsLoader replaces the file based credentials lookup used for Config.CredentialsDir.
func WithCredentialsLoader(loader CredentialsLoader) Option {
	return func(c *Client) {
		if loader != nil {
			c.loader = loader
		}
	}
}

// WithClock overrides the time source. Intended for tests of expiry handling.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		logger:     NopLogger(),
		loader:     FileCredentialsLoader{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAccessToken is a convenience wrapper around NewClient(opts...).GetAccessToken.
func GetAccessToken(ctx context.Context, cfg *Config, opts ...Option) (*Token, error) {
	return NewClient(opts...).GetAccessToken(ctx, cfg)
}

// GetTokenInfo is a convenience wrapper around NewClient(opts...).GetTokenInfo.
func GetTokenInfo(ctx context.Context, tokenInfoURL, accessToken string, opts ...Option) (*Token, error) {
	return NewClient(opts...).GetTokenInfo(ctx, tokenInfoURL, accessToken)
}
