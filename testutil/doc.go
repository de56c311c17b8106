// Package testutil provides mock OAuth2 token and token info endpoints for tests of code that uses
// oauth2client, httpserver or grpcserver.
//
// A Harness is created per test and torn down automatically:
//
//	func TestSomething(t *testing.T) {
//	    h := testutil.NewHarness(t)
//	    h.MockAccessTokenEndpoint(testutil.AccessTokenMock{ExpiresIn: 3600})
//
//	    cache, _ := oauth2client.NewTokenCache(oauth2client.TokenCacheConfig{
//	        Tokens: map[string][]string{"nucleus": {"nucleus.read"}},
//	        OAuth: oauth2client.Config{
//	            Grant:               oauth2client.ClientCredentialsGrant{},
//	            AccessTokenEndpoint: h.AccessTokenEndpoint(),
//	            TokenInfoEndpoint:   h.TokenInfoEndpoint(),
//	            ClientID:            "id",
//	            ClientSecret:        "secret",
//	        },
//	    })
//	    ...
//	}
//
// Tokens issued by the mocked token endpoint are accepted by the mocked token info endpoint.
package testutil
