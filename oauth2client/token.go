package oauth2client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Token is an access token as returned by the token endpoint or the token info endpoint.
//
// LocalExpiry is never sent by a server; TokenCache sets it (epoch milliseconds) when it stores a token.
// Fields without a dedicated struct field are kept in Extra.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
	Scope       Scopes `json:"scope,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	LocalExpiry int64  `json:"local_expiry,omitempty"`

	Extra map[string]any `json:"-"`
}

var knownTokenFields = map[string]struct{}{
	"access_token": {},
	"expires_in":   {},
	"scope":        {},
	"token_type":   {},
	"local_expiry": {},
}

type tokenFields Token

// UnmarshalJSON decodes the known fields and keeps every other field in Extra.
func (t *Token) UnmarshalJSON(data []byte) error {
	var fields tokenFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range knownTokenFields {
		delete(raw, key)
	}
	if len(raw) > 0 {
		fields.Extra = raw
	} else {
		fields.Extra = nil
	}

	*t = Token(fields)
	return nil
}

// MarshalJSON encodes the known fields together with Extra.
func (t Token) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(tokenFields(t))
	if err != nil {
		return nil, err
	}
	if len(t.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]any, len(t.Extra)+len(knownTokenFields))
	for key, value := range t.Extra {
		if _, ok := knownTokenFields[key]; !ok {
			merged[key] = value
		}
	}
	var knownMap map[string]any
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return nil, err
	}
	for key, value := range knownMap {
		merged[key] = value
	}

	return json.Marshal(merged)
}

// Claims returns the token metadata as jwt.MapClaims, including the known fields.
// The typed accessors (GetSubject, GetExpirationTime, ...) read standard claims a token info
// endpoint may return; Subject uses them.
func (t *Token) Claims() jwt.MapClaims {
	claims := make(jwt.MapClaims, len(t.Extra)+4)
	for key, value := range t.Extra {
		claims[key] = value
	}
	if t.AccessToken != "" {
		claims["access_token"] = t.AccessToken
	}
	if t.ExpiresIn != 0 {
		claims["expires_in"] = float64(t.ExpiresIn)
	}
	if t.TokenType != "" {
		claims["token_type"] = t.TokenType
	}
	if len(t.Scope) > 0 {
		scopes := make([]any, 0, len(t.Scope))
		for _, scope := range t.Scope {
			scopes = append(scopes, scope)
		}
		claims["scope"] = scopes
	}
	return claims
}

// Subject identifies the token owner: the "sub" claim, else the "uid" field of token info documents.
func (t *Token) Subject() string {
	if sub, err := t.Claims().GetSubject(); err == nil && sub != "" {
		return sub
	}
	if uid, ok := t.Extra["uid"].(string); ok {
		return uid
	}
	return ""
}

// Expiry returns LocalExpiry as a time, or the zero time when it is not set.
func (t *Token) Expiry() time.Time {
	if t.LocalExpiry == 0 {
		return time.Time{}
	}
	return time.UnixMilli(t.LocalExpiry)
}

// OAuth2Token converts t for use with golang.org/x/oauth2.
// The expiry is LocalExpiry, so oauth2 consumers refresh on the same schedule as TokenCache.
func (t *Token) OAuth2Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Expiry:      t.Expiry(),
	}
	if len(t.Extra) > 0 {
		tok = tok.WithExtra(t.Extra)
	}
	return tok
}

// WithoutAccessToken returns a copy of t that does not carry the bearer credential.
func (t *Token) WithoutAccessToken() *Token {
	copied := *t
	copied.AccessToken = ""
	if len(t.Extra) > 0 {
		copied.Extra = make(map[string]any, len(t.Extra))
		for key, value := range t.Extra {
			copied.Extra[key] = value
		}
	}
	return &copied
}

// Scopes is an ordered list of scopes. It decodes from a JSON array or a space separated string.
type Scopes []string

// UnmarshalJSON accepts "a b c" and ["a","b","c"].
func (s *Scopes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*s = strings.Fields(joined)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("scope must be a string or an array of strings: %w", err)
	}
	*s = list
	return nil
}

// Contains reports whether scope is in s.
func (s Scopes) Contains(scope string) bool {
	for _, candidate := range s {
		if candidate == scope {
			return true
		}
	}
	return false
}
