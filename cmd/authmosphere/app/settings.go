package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

// grantFlags holds the grant specific flags of the token command.
type grantFlags struct {
	grant        string
	code         string
	redirectURI  string
	refreshToken string
}

func (f grantFlags) toGrant() (oauth2client.Grant, error) {
	switch oauth2client.GrantType(f.grant) {
	case oauth2client.ClientCredentialsGrantType:
		return oauth2client.ClientCredentialsGrant{}, nil
	case oauth2client.PasswordCredentialsGrantType:
		return oauth2client.PasswordCredentialsGrant{}, nil
	case oauth2client.AuthorizationCodeGrantType:
		return oauth2client.AuthorizationCodeGrant{Code: f.code, RedirectURI: f.redirectURI}, nil
	case oauth2client.RefreshTokenGrantType:
		return oauth2client.RefreshTokenGrant{RefreshToken: f.refreshToken}, nil
	default:
		return nil, fmt.Errorf("unsupported grant %q", f.grant)
	}
}

// oauthConfig assembles the endpoint and credential settings shared by all commands.
func oauthConfig(v *viper.Viper, grant oauth2client.Grant) oauth2client.Config {
	return oauth2client.Config{
		Grant:               grant,
		AccessTokenEndpoint: v.GetString(keyAccessTokenEndpoint),
		TokenInfoEndpoint:   v.GetString(keyTokenInfoEndpoint),
		CredentialsDir:      v.GetString(keyCredentialsDir),
		ClientID:            v.GetString(keyClientID),
		ClientSecret:        v.GetString(keyClientSecret),
		ApplicationUsername: v.GetString(keyUsername),
		ApplicationPassword: v.GetString(keyPassword),
	}
}

// parseTokenSpecs turns "name=scope1,scope2" arguments into a token map.
// Names configured in the config file under "tokens" come first and are overridden by flags.
func parseTokenSpecs(v *viper.Viper, specs []string) (map[string][]string, error) {
	tokens := make(map[string][]string)
	for name, scopes := range v.GetStringMapStringSlice(keyTokens) {
		tokens[name] = scopes
	}

	for _, arg := range specs {
		name, scopes, _ := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid token %q, expected name=scope1,scope2", arg)
		}
		tokens[name] = splitScopes(scopes)
	}

	if len(tokens) == 0 {
		return nil, fmt.Errorf("no tokens configured, use --token or the %q config key", keyTokens)
	}
	return tokens, nil
}

func splitScopes(raw string) []string {
	scopes := []string{}
	for _, scope := range strings.Split(raw, ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}

func sortedNames(tokens map[string]*oauth2client.Token) []string {
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
