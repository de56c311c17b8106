package oauth2client

import "strings"

// ExtractAccessToken returns the token of an "Authorization: Bearer <token>" header value.
// The value must consist of exactly two space separated parts, the first being "Bearer".
func ExtractAccessToken(authorizationHeader string) (string, bool) {
	parts := strings.Split(authorizationHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
