package oauth2client

import "strings"

// Config describes how to obtain an access token.
//
// Credentials come either from CredentialsDir (client.json and, for the password grant,
// user.json) or from the explicit ClientID/ClientSecret and ApplicationUsername/ApplicationPassword
// fields. CredentialsDir takes precedence when set.
type Config struct {
	// Grant selects the grant type. Required.
	Grant Grant

	// AccessTokenEndpoint is the token endpoint URL. Required.
	AccessTokenEndpoint string

	// TokenInfoEndpoint is the token introspection URL. Required for TokenCache.
	TokenInfoEndpoint string

	// Scopes are sent space separated in the order given.
	Scopes []string

	// QueryParams are appended to AccessTokenEndpoint.
	QueryParams map[string]string

	// BodyParams are merged into the request body after the grant fields.
	BodyParams map[string]string

	CredentialsDir string

	ClientID            string
	ClientSecret        string
	ApplicationUsername string
	ApplicationPassword string
}

// Validate checks that cfg can be used for a token request.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return &ConfigError{Reason: "config is nil"}
	}
	if strings.TrimSpace(cfg.AccessTokenEndpoint) == "" {
		return &ConfigError{Field: "AccessTokenEndpoint", Reason: "is required"}
	}

	grant := normalizeGrant(cfg.Grant)
	switch g := grant.(type) {
	case nil:
		return &ConfigError{Field: "Grant", Reason: "is required"}
	case AuthorizationCodeGrant:
		if g.Code == "" {
			return &ConfigError{Field: "Code", Reason: "is required for the authorization code grant"}
		}
		if g.RedirectURI == "" {
			return &ConfigError{Field: "RedirectURI", Reason: "is required for the authorization code grant"}
		}
	case RefreshTokenGrant:
		if g.RefreshToken == "" {
			return &ConfigError{Field: "RefreshToken", Reason: "is required for the refresh token grant"}
		}
	}

	if cfg.CredentialsDir != "" {
		return nil
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return &ConfigError{Field: "CredentialsDir", Reason: "or ClientID and ClientSecret are required"}
	}
	if _, ok := grant.(PasswordCredentialsGrant); ok {
		if cfg.ApplicationUsername == "" || cfg.ApplicationPassword == "" {
			return &ConfigError{
				Field:  "CredentialsDir",
				Reason: "or ApplicationUsername and ApplicationPassword are required for the password grant",
			}
		}
	}

	return nil
}
