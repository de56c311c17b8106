package oauth2client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const tokenInfoUnreachable = "tokenInfo endpoint not reachable "

// GetTokenInfo validates accessToken against tokenInfoURL with GET <tokenInfoURL>?access_token=<token>.
//
// The token info endpoint is authoritative: any 200 answer is accepted as-is and returned as a Token.
// Failures are reported as *TokenInfoError.
func (c *Client) GetTokenInfo(ctx context.Context, tokenInfoURL, accessToken string) (*Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	message := "Error validating token via " + tokenInfoURL

	endpoint, err := tokenInfoRequestURL(tokenInfoURL, accessToken)
	if err != nil {
		return nil, &TokenInfoError{Message: message, ErrorDescription: tokenInfoUnreachable, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TokenInfoError{Message: message, ErrorDescription: tokenInfoUnreachable, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("oauth2client: token info request failed", "endpoint", tokenInfoURL, "error", err)
		return nil, &TokenInfoError{Message: message, ErrorDescription: tokenInfoUnreachable, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TokenInfoError{Message: message, ErrorDescription: tokenInfoUnreachable, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("oauth2client: token info rejected token", "endpoint", tokenInfoURL, "status", resp.StatusCode)
		return nil, &TokenInfoError{Message: message, Status: resp.StatusCode, Data: decodeBody(body)}
	}

	token := &Token{}
	if err := json.Unmarshal(body, token); err != nil {
		return nil, &TokenInfoError{
			Message: message,
			Status:  resp.StatusCode,
			Data:    string(body),
			Err:     fmt.Errorf("invalid token info response: %w", err),
		}
	}

	return token, nil
}

func tokenInfoRequestURL(tokenInfoURL, accessToken string) (string, error) {
	parsed, err := url.Parse(tokenInfoURL)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("access_token", accessToken)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// decodeBody returns the JSON value of body, or body as a string when it is not JSON.
func decodeBody(body []byte) any {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}
	return data
}
