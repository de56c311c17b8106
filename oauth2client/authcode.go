package oauth2client

import (
	"errors"
	"net/url"
)

// CreateAuthCodeRequestURI builds the authorization endpoint URI a user agent is redirected to in
// order to start the authorization code grant.
//
// client_id, redirect_uri and response_type=code are always set; queryParams (e.g. state, scope)
// are added without overriding them.
func CreateAuthCodeRequestURI(authorizationEndpoint, clientID, redirectURI string, queryParams map[string]string) (string, error) {
	if authorizationEndpoint == "" {
		return "", &ConfigError{Field: "authorizationEndpoint", Reason: "is required"}
	}
	if clientID == "" {
		return "", &ConfigError{Field: "clientID", Reason: "is required"}
	}
	if redirectURI == "" {
		return "", &ConfigError{Field: "redirectURI", Reason: "is required"}
	}

	parsed, err := url.Parse(authorizationEndpoint)
	if err != nil {
		return "", errors.Join(&ConfigError{Field: "authorizationEndpoint", Reason: "is not a valid URL"}, err)
	}

	query := parsed.Query()
	for key, value := range queryParams {
		query.Set(key, value)
	}
	query.Set("client_id", clientID)
	query.Set("redirect_uri", redirectURI)
	query.Set("response_type", "code")
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
