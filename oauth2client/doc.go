// Package oauth2client obtains, validates and caches OAuth2 access tokens for services that act as
// OAuth2 clients and resource servers at the same time.
//
// Tokens are requested from a token endpoint with one of four grant types and validated against a
// central token info endpoint instead of local JWT verification. Client and user credentials are read
// from JSON files in a credentials directory or passed explicitly.
//
// # Features
//
//   - Password, client credentials, authorization code and refresh token grants
//   - Credentials from client.json / user.json or explicit fields
//   - Token introspection via GET <tokeninfo>?access_token=<token>
//   - TokenCache with named tokens, lazy expiry and forced refresh
//   - oauth2.TokenSource and gRPC client interceptors backed by TokenCache
//   - Optional logging through a small Logger interface (Printf, logr and zerolog adapters)
//
// # Quick Start
//
//	cache, err := oauth2client.NewTokenCache(oauth2client.TokenCacheConfig{
//	    Tokens: map[string][]string{
//	        "nucleus": {"nucleus.read", "nucleus.write"},
//	    },
//	    OAuth: oauth2client.Config{
//	        Grant:               oauth2client.PasswordCredentialsGrant{},
//	        AccessTokenEndpoint: "https://auth.example.com/oauth2/access_token",
//	        TokenInfoEndpoint:   "https://auth.example.com/oauth2/tokeninfo",
//	        CredentialsDir:      "/meta/credentials",
//	    },
//	}, oauth2client.WithLoggingEnabled())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := cache.Get(ctx, "nucleus")
//
// # Notes
//
//   - Configuration errors (*ConfigError) are returned before any network call.
//   - Nothing is retried; every failure is returned as a typed error.
//   - TokenCache does not deduplicate concurrent fetches for the same name.
package oauth2client
