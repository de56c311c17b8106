package httpserver

import (
	"net/http"

	"github.com/zalando-incubator/authmosphere-sub000/internal/validator"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// TokenInfo is the token info document attached to authenticated requests.
// This is an alias for oauth2client.Token; its AccessToken is always empty.
type TokenInfo = oauth2client.Token

// Logger is the optional logging capability of the middlewares.
// This is an alias for oauth2client.Logger.
type Logger = oauth2client.Logger

// TokenInfoFunc resolves an access token to its token info document.
// Any error rejects the request as not authenticated.
type TokenInfoFunc = validator.TokenInfoFunc

// NotAuthenticatedHandler writes the response for requests without a valid bearer token.
// It replaces the default 401 response.
type NotAuthenticatedHandler func(w http.ResponseWriter, r *http.Request, err error)

// AuthorizationFailedHandler writes the response for requests that lack a required scope.
// It replaces the default 403 response.
type AuthorizationFailedHandler func(w http.ResponseWriter, r *http.Request, err error)
