package oauth2client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseSize bounds the bytes read from token and token info responses.
const maxResponseSize = 1 << 20

// queryUnescaper decodes reserved characters that url.Values.Encode escapes but that are legal in a
// query component. Characters that would change the query structure (&, =, +, #, %) stay escaped.
var queryUnescaper = strings.NewReplacer(
	"%3A", ":", "%2F", "/", "%3F", "?", "%40", "@",
	"%21", "!", "%24", "$", "%27", "'", "%28", "(",
	"%29", ")", "%2A", "*", "%2C", ",", "%3B", ";",
)

// AccessTokenRequest is a single token endpoint call.
type AccessTokenRequest struct {
	// Endpoint is the token endpoint URL.
	Endpoint string
	// Body holds the form parameters, see BuildRequestBody.
	Body map[string]string
	// BasicAuth is the value following "Basic " in the Authorization header.
	BasicAuth string
	// QueryParams are appended to Endpoint when non-empty.
	QueryParams map[string]string
}

// BasicAuth returns base64(clientID:clientSecret).
func BasicAuth(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}

// GetAccessToken validates cfg, resolves credentials and requests a token.
func (c *Client) GetAccessToken(ctx context.Context, cfg *Config) (*Token, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return c.getAccessToken(ctx, cfg)
}

// getAccessToken is GetAccessToken without validation, for callers that validated up front.
func (c *Client) getAccessToken(ctx context.Context, cfg *Config) (*Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	client, user, err := resolveCredentials(ctx, cfg, c.loader)
	if err != nil {
		c.logger.Error("oauth2client: failed to resolve credentials", "error", err)
		return nil, err
	}

	return c.RequestAccessToken(ctx, AccessTokenRequest{
		Endpoint:    cfg.AccessTokenEndpoint,
		Body:        BuildRequestBody(cfg, user),
		BasicAuth:   BasicAuth(client.ClientID, client.ClientSecret),
		QueryParams: cfg.QueryParams,
	})
}

// RequestAccessToken performs one POST against the token endpoint. It never retries.
//
// A non-200 answer yields *AccessTokenError, a failed transport yields *RequestError.
func (c *Client) RequestAccessToken(ctx context.Context, request AccessTokenRequest) (*Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint := tokenEndpointURL(request.Endpoint, request.QueryParams)

	form := url.Values{}
	for key, value := range request.Body {
		form.Set(key, value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &RequestError{Message: "Error requesting access token from " + request.Endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+request.BasicAuth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("oauth2client: token request failed", "endpoint", request.Endpoint, "error", err)
		return nil, &RequestError{Message: "Error requesting access token from " + request.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &RequestError{Message: "Error requesting access token from " + request.Endpoint, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		tokenErr := decodeAccessTokenError(resp.StatusCode, body)
		c.logger.Warn("oauth2client: token endpoint rejected request",
			"endpoint", request.Endpoint, "status", resp.StatusCode, "error", tokenErr.ErrorCode)
		return nil, tokenErr
	}

	token := &Token{}
	if err := json.Unmarshal(body, token); err != nil {
		return nil, &RequestError{
			Message: "Error requesting access token from " + request.Endpoint,
			Err:     fmt.Errorf("invalid token response: %w", err),
		}
	}

	c.logger.Debug("oauth2client: obtained access token", "endpoint", request.Endpoint, "expires_in", token.ExpiresIn)

	return token, nil
}

// tokenEndpointURL appends queryParams to endpoint, keeping reserved characters readable.
func tokenEndpointURL(endpoint string, queryParams map[string]string) string {
	if len(queryParams) == 0 {
		return endpoint
	}

	values := url.Values{}
	for key, value := range queryParams {
		values.Set(key, value)
	}

	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}

	return endpoint + separator + queryUnescaper.Replace(values.Encode())
}

func decodeAccessTokenError(status int, body []byte) *AccessTokenError {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return &AccessTokenError{ErrorCode: string(body), Status: status}
	}

	return &AccessTokenError{
		ErrorCode:        payload.Error,
		ErrorDescription: payload.ErrorDescription,
		Status:           status,
	}
}
