// Package httpclient offers HTTP client construction helpers with bearer token injection and TLS/mTLS options.
//
// It provides a fluent Builder that creates an http.Client which sends "Authorization: Bearer <token>"
// on every request. Tokens come from an oauth2client.TokenCache, any oauth2.TokenSource or a plain
// AccessTokenFunc. TLS (custom CA, mTLS, insecure for tests), timeouts, base transports and redirect
// handling are configurable. OAuth2Transport can wrap any RoundTripper.
//
// # Quick Start
//
//	cache, err := oauth2client.NewTokenCache(oauth2client.TokenCacheConfig{
//	    Tokens: map[string][]string{"nucleus": {"nucleus.read"}},
//	    OAuth:  oauthConfig,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := httpclient.NewBuilder().
//	    WithTokenCache(cache, "nucleus").
//	    WithTLS("/path/to/ca.crt", "", "").
//	    WithTimeout(60 * time.Second).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := client.Get("https://nucleus.example.com/data")
//
// # Manual Transport Wrapping
//
//	transport := httpclient.NewOAuth2Transport(cache.ResolveAccessTokenFactory("nucleus"), nil)
//	client := &http.Client{Transport: transport}
//
// A client built without a token is suitable for oauth2client.WithHTTPClient, for example to reach
// a token endpoint behind mTLS.
package httpclient
