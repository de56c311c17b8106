package grpcserver

import (
	"github.com/zalando-incubator/authmosphere-sub000/internal/validator"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// TokenInfo is the token info document attached to authenticated calls.
// This is an alias for oauth2client.Token; its AccessToken is always empty.
type TokenInfo = oauth2client.Token

// TokenInfoFunc resolves an access token to its token info document.
// This is an alias for the TokenInfoFunc shared with httpserver.
type TokenInfoFunc = validator.TokenInfoFunc

// Logger is the optional logging capability of the interceptors.
// This is an alias for oauth2client.Logger.
type Logger = oauth2client.Logger
