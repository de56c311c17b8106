package oauth2client

import "strings"

// GrantType is the value sent as grant_type to the token endpoint.
type GrantType string

const (
	// PasswordCredentialsGrantType exchanges resource owner credentials for a token.
	PasswordCredentialsGrantType GrantType = "password"
	// ClientCredentialsGrantType authenticates the client itself, no user context.
	ClientCredentialsGrantType GrantType = "client_credentials"
	// AuthorizationCodeGrantType exchanges an authorization code for a token.
	AuthorizationCodeGrantType GrantType = "authorization_code"
	// RefreshTokenGrantType exchanges a refresh token for a new access token.
	RefreshTokenGrantType GrantType = "refresh_token"
)

// Grant selects one of the supported grant types together with its grant specific fields.
// The set of implementations is closed: PasswordCredentialsGrant, ClientCredentialsGrant,
// AuthorizationCodeGrant and RefreshTokenGrant.
type Grant interface {
	Type() GrantType
	sealed()
}

// PasswordCredentialsGrant requires client and resource owner credentials.
type PasswordCredentialsGrant struct{}

// ClientCredentialsGrant requires client credentials only.
type ClientCredentialsGrant struct{}

// AuthorizationCodeGrant exchanges Code, issued for RedirectURI.
type AuthorizationCodeGrant struct {
	Code        string
	RedirectURI string
}

// RefreshTokenGrant exchanges RefreshToken.
type RefreshTokenGrant struct {
	RefreshToken string
}

func (PasswordCredentialsGrant) Type() GrantType { return PasswordCredentialsGrantType }
func (ClientCredentialsGrant) Type() GrantType   { return ClientCredentialsGrantType }
func (AuthorizationCodeGrant) Type() GrantType   { return AuthorizationCodeGrantType }
func (RefreshTokenGrant) Type() GrantType        { return RefreshTokenGrantType }

func (PasswordCredentialsGrant) sealed() {}
func (ClientCredentialsGrant) sealed()   {}
func (AuthorizationCodeGrant) sealed()   {}
func (RefreshTokenGrant) sealed()        {}

// BuildRequestBody returns the form parameters for a token request.
//
// Grant mandated fields come first, then scope (scopes joined by single spaces, order kept),
// then cfg.BodyParams, which win on key collisions.
// user is only consulted for the password grant and may be nil otherwise.
func BuildRequestBody(cfg *Config, user *UserCredentials) map[string]string {
	body := make(map[string]string)

	switch g := normalizeGrant(cfg.Grant).(type) {
	case PasswordCredentialsGrant:
		body["grant_type"] = string(g.Type())
		if user != nil {
			body["username"] = user.ApplicationUsername
			body["password"] = user.ApplicationPassword
		}
	case ClientCredentialsGrant:
		body["grant_type"] = string(g.Type())
	case AuthorizationCodeGrant:
		body["grant_type"] = string(g.Type())
		body["code"] = g.Code
		body["redirect_uri"] = g.RedirectURI
	case RefreshTokenGrant:
		body["grant_type"] = string(g.Type())
		body["refresh_token"] = g.RefreshToken
	}

	if len(cfg.Scopes) > 0 {
		body["scope"] = strings.Join(cfg.Scopes, " ")
	}

	for key, value := range cfg.BodyParams {
		body[key] = value
	}

	return body
}

// normalizeGrant dereferences pointer grants so callers may pass either form.
// A nil pointer yields nil.
func normalizeGrant(grant Grant) Grant {
	switch g := grant.(type) {
	case *PasswordCredentialsGrant:
		if g == nil {
			return nil
		}
		return *g
	case *ClientCredentialsGrant:
		if g == nil {
			return nil
		}
		return *g
	case *AuthorizationCodeGrant:
		if g == nil {
			return nil
		}
		return *g
	case *RefreshTokenGrant:
		if g == nil {
			return nil
		}
		return *g
	default:
		return grant
	}
}
