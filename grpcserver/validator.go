package grpcserver

import (
	"github.com/zalando-incubator/authmosphere-sub000/internal/validator"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// NewTokenInfoFunc returns the TokenInfoFunc used by the interceptors by default: a GET against the
// token info endpoint using an oauth2client.Client configured with opts.
func NewTokenInfoFunc(opts ...oauth2client.Option) TokenInfoFunc {
	return validator.NewTokenInfoFunc(opts...)
}
