package httpserver

import (
	"github.com/zalando-incubator/authmosphere-sub000/internal/validator"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// NewTokenInfoFunc returns the TokenInfoFunc used by NewAuthenticationMiddleware by default:
// a GET against the token info endpoint using an oauth2client.Client configured with opts.
//
// Example:
//
//	tokenInfo := httpserver.NewTokenInfoFunc(oauth2client.WithHTTPClient(mtlsClient))
//	mw, err := httpserver.NewAuthenticationMiddleware(endpoint, httpserver.WithTokenInfoFunc(tokenInfo))
func NewTokenInfoFunc(opts ...oauth2client.Option) TokenInfoFunc {
	return validator.NewTokenInfoFunc(opts...)
}
