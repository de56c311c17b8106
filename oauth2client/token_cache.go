package oauth2client

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// DefaultPercentageLeft is the share of a token's lifetime that remains when TokenCache renews it.
const DefaultPercentageLeft = 0.75

// TokenCacheConfig configures a TokenCache.
type TokenCacheConfig struct {
	// Tokens maps a token name to the scopes requested for it.
	Tokens map[string][]string

	// OAuth is shared by all token names. OAuth.Scopes is ignored; OAuth.TokenInfoEndpoint is required.
	OAuth Config

	// PercentageLeft is the fraction of expires_in that is not used before renewal.
	// Zero selects DefaultPercentageLeft, so renewing only at the reported expiry cannot be
	// requested; the smallest positive value comes closest. Must be below 1.
	PercentageLeft float64
}

// TokenCache keeps one access token per configured name and renews it lazily.
//
// A cached token is served while the current time is before its LocalExpiry, which is set to
// insertion time + expires_in * (1 - PercentageLeft). There are no timers; expiry is only checked by Get.
// Concurrent Get calls for a stale name are not coalesced: each one fetches, the last write wins.
type TokenCache struct {
	client         *Client
	oauth          Config
	tokens         map[string][]string
	names          []string
	percentageLeft float64

	mu    sync.Mutex
	slots map[string]*Token
}

// NewTokenCache validates cfg and creates an empty TokenCache.
// The options are applied to the Client used for token and token info requests.
func NewTokenCache(cfg TokenCacheConfig, opts ...Option) (*TokenCache, error) {
	if strings.TrimSpace(cfg.OAuth.TokenInfoEndpoint) == "" {
		return nil, &ConfigError{Field: "TokenInfoEndpoint", Reason: "is required"}
	}
	if err := cfg.OAuth.Validate(); err != nil {
		return nil, err
	}

	percentageLeft := cfg.PercentageLeft
	if percentageLeft == 0 {
		percentageLeft = DefaultPercentageLeft
	}
	if percentageLeft < 0 || percentageLeft >= 1 {
		return nil, &ConfigError{Field: "PercentageLeft", Reason: "must be in the range [0, 1)"}
	}

	tokens := make(map[string][]string, len(cfg.Tokens))
	names := make([]string, 0, len(cfg.Tokens))
	for name, scopes := range cfg.Tokens {
		copied := make([]string, len(scopes))
		copy(copied, scopes)
		tokens[name] = copied
		names = append(names, name)
	}
	sort.Strings(names)

	return &TokenCache{
		client:         NewClient(opts...),
		oauth:          cfg.OAuth,
		tokens:         tokens,
		names:          names,
		percentageLeft: percentageLeft,
		slots:          make(map[string]*Token, len(tokens)),
	}, nil
}

// Names returns the configured token names in sorted order.
func (c *TokenCache) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// Get returns a token for name.
//
// While the cached token is fresh it is returned as stored. Otherwise a new token is requested with
// the scopes configured for name, stored with its LocalExpiry, and then validated via the token info
// endpoint; the token info response is what Get returns in that case. Errors are returned unchanged
// and the previous token is never served as a fallback.
//
// The returned Token is shared with the cache and must not be modified.
func (c *TokenCache) Get(ctx context.Context, name string) (*Token, error) {
	scopes, ok := c.tokens[name]
	if !ok {
		return nil, &UnknownTokenNameError{Name: name}
	}

	c.mu.Lock()
	cached := c.slots[name]
	c.mu.Unlock()

	if cached != nil && c.fresh(cached) {
		return cached, nil
	}

	cfg := c.oauth
	cfg.Scopes = scopes

	token, err := c.client.getAccessToken(ctx, &cfg)
	if err != nil {
		c.client.logger.Error("oauth2client: failed to obtain token", "name", name, "error", err)
		return nil, err
	}

	stored := *token
	stored.LocalExpiry = c.localExpiry(token.ExpiresIn)

	c.mu.Lock()
	c.slots[name] = &stored
	c.mu.Unlock()

	c.client.logger.Info("oauth2client: cached new token", "name", name, "local_expiry", stored.Expiry())

	info, err := c.client.GetTokenInfo(ctx, c.oauth.TokenInfoEndpoint, stored.AccessToken)
	if err != nil {
		c.client.logger.Error("oauth2client: failed to validate new token", "name", name, "error", err)
		return nil, err
	}

	return info, nil
}

// RefreshToken discards the cached token for name and calls Get.
func (c *TokenCache) RefreshToken(ctx context.Context, name string) (*Token, error) {
	c.mu.Lock()
	delete(c.slots, name)
	c.mu.Unlock()

	return c.Get(ctx, name)
}

// RefreshAllTokens discards every cached token and refreshes all names concurrently.
// It waits for every refresh to finish and returns the cached tokens by name, or the first error.
func (c *TokenCache) RefreshAllTokens(ctx context.Context) (map[string]*Token, error) {
	c.mu.Lock()
	c.slots = make(map[string]*Token, len(c.tokens))
	c.mu.Unlock()

	var group errgroup.Group
	for _, name := range c.names {
		name := name
		group.Go(func() error {
			_, err := c.RefreshToken(ctx, name)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]*Token, len(c.slots))
	for name, token := range c.slots {
		result[name] = token
	}
	return result, nil
}

// ResolveAccessTokenFactory returns a function that calls Get(ctx, name) and returns only the access token.
// Creating the function does no work.
func (c *TokenCache) ResolveAccessTokenFactory(name string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		token, err := c.Get(ctx, name)
		if err != nil {
			return "", err
		}
		return token.AccessToken, nil
	}
}

// TokenSource exposes name as an oauth2.TokenSource. The reported expiry is the cached LocalExpiry.
func (c *TokenCache) TokenSource(ctx context.Context, name string) oauth2.TokenSource {
	if ctx == nil {
		ctx = context.Background()
	}
	return &cacheTokenSource{ctx: ctx, cache: c, name: name}
}

type cacheTokenSource struct {
	ctx   context.Context
	cache *TokenCache
	name  string
}

func (s *cacheTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.cache.Get(s.ctx, s.name)
	if err != nil {
		return nil, err
	}

	tok := token.OAuth2Token()
	s.cache.mu.Lock()
	if cached := s.cache.slots[s.name]; cached != nil {
		tok.Expiry = cached.Expiry()
	}
	s.cache.mu.Unlock()

	return tok, nil
}

func (c *TokenCache) fresh(token *Token) bool {
	return c.client.now().UnixMilli() < token.LocalExpiry
}

func (c *TokenCache) localExpiry(expiresIn int64) int64 {
	lifetime := float64(expiresIn) * 1000 * (1 - c.percentageLeft)
	return c.client.now().UnixMilli() + int64(lifetime)
}
