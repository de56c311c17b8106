package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/zalando-incubator/authmosphere-sub000/internal/testutil"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

const (
	// AccessTokenPath is where the harness serves the token endpoint.
	AccessTokenPath = "/oauth2/access_token"
	// TokenInfoPath is where the harness serves the token info endpoint.
	TokenInfoPath = "/oauth2/tokeninfo"
)

// AccessTokenMock configures the tokens issued by a mocked token endpoint.
type AccessTokenMock struct {
	// AccessToken is returned for every request. Empty issues a new random token per request.
	AccessToken string
	// ExpiresIn is sent as expires_in. Zero omits the field.
	ExpiresIn int64
	// TokenType defaults to "Bearer".
	TokenType string
	// Extra fields are added to the token response and to the token info response.
	Extra map[string]any
}

// RecordedRequest is a request received by the harness.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Form          url.Values
	Authorization string
	ContentType   string
}

type errorResponse struct {
	status int
	body   string
}

// Harness serves mock token and token info endpoints for one test.
//
// Every harness owns its own server and its own set of issued tokens; nothing is shared between
// tests. Endpoints answer 404 until they are mocked. The server is closed via tb.Cleanup.
type Harness struct {
	server *httptest.Server

	mu                 sync.Mutex
	tokens             map[string]*oauth2client.Token
	accessTokenMock    *AccessTokenMock
	accessTokenError   *errorResponse
	tokenInfoMocked    bool
	tokenInfoError     *errorResponse
	accessTokenRecords []RecordedRequest
	tokenInfoRecords   []RecordedRequest
}

// NewHarness starts a harness bound to 127.0.0.1.
func NewHarness(tb testing.TB) *Harness {
	tb.Helper()

	h := &Harness{
		tokens: make(map[string]*oauth2client.Token),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(AccessTokenPath, h.serveAccessToken)
	mux.HandleFunc(TokenInfoPath, h.serveTokenInfo)

	server := testutil.NewLocalHTTPServer(tb, mux)
	h.server = server

	return h
}

// URL is the base URL of the harness server.
func (h *Harness) URL() string {
	return h.server.URL
}

// AccessTokenEndpoint is the URL of the mocked token endpoint.
func (h *Harness) AccessTokenEndpoint() string {
	return h.server.URL + AccessTokenPath
}

// TokenInfoEndpoint is the URL of the mocked token info endpoint.
func (h *Harness) TokenInfoEndpoint() string {
	return h.server.URL + TokenInfoPath
}

// Close stops the server. Later requests fail at the transport level.
func (h *Harness) Close() {
	h.server.Close()
}

// MockAccessTokenEndpoint makes the token endpoint issue tokens according to mock.
// Issued tokens are known to the token info endpoint.
func (h *Harness) MockAccessTokenEndpoint(mock AccessTokenMock) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.accessTokenMock = &mock
	h.accessTokenError = nil
}

// MockAccessTokenEndpointWithErrorResponse makes the token endpoint answer with status and body.
func (h *Harness) MockAccessTokenEndpointWithErrorResponse(status int, body string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.accessTokenMock = nil
	h.accessTokenError = &errorResponse{status: status, body: body}
}

// MockTokenInfoEndpoint enables the token info endpoint and registers additional valid tokens.
// Tokens issued by the mocked token endpoint are always valid.
func (h *Harness) MockTokenInfoEndpoint(tokens ...*oauth2client.Token) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.tokenInfoMocked = true
	h.tokenInfoError = nil
	for _, token := range tokens {
		h.tokens[token.AccessToken] = token
	}
}

// MockTokenInfoEndpointWithErrorResponse makes the token info endpoint answer with status and body.
func (h *Harness) MockTokenInfoEndpointWithErrorResponse(status int, body string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.tokenInfoMocked = false
	h.tokenInfoError = &errorResponse{status: status, body: body}
}

// Clean removes all mocks, issued tokens and recorded requests.
func (h *Harness) Clean() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.tokens = make(map[string]*oauth2client.Token)
	h.accessTokenMock = nil
	h.accessTokenError = nil
	h.tokenInfoMocked = false
	h.tokenInfoError = nil
	h.accessTokenRecords = nil
	h.tokenInfoRecords = nil
}

// IssuedTokens returns the tokens known to the token info endpoint.
func (h *Harness) IssuedTokens() []*oauth2client.Token {
	h.mu.Lock()
	defer h.mu.Unlock()

	tokens := make([]*oauth2client.Token, 0, len(h.tokens))
	for _, token := range h.tokens {
		tokens = append(tokens, token)
	}
	return tokens
}

// AccessTokenRequests returns the requests received by the token endpoint.
func (h *Harness) AccessTokenRequests() []RecordedRequest {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]RecordedRequest(nil), h.accessTokenRecords...)
}

// TokenInfoRequests returns the requests received by the token info endpoint.
func (h *Harness) TokenInfoRequests() []RecordedRequest {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]RecordedRequest(nil), h.tokenInfoRecords...)
}

func (h *Harness) serveAccessToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	record := recordRequest(r)

	h.mu.Lock()
	h.accessTokenRecords = append(h.accessTokenRecords, record)
	mock := h.accessTokenMock
	errResp := h.accessTokenError
	h.mu.Unlock()

	switch {
	case errResp != nil:
		writeRaw(w, errResp.status, errResp.body)
		return
	case mock == nil:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_mocked"})
		return
	case r.Method != http.MethodPost:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "invalid_request"})
		return
	}

	token := &oauth2client.Token{
		AccessToken: mock.AccessToken,
		ExpiresIn:   mock.ExpiresIn,
		Scope:       strings.Fields(record.Form.Get("scope")),
		TokenType:   mock.TokenType,
		Extra:       copyExtra(mock.Extra),
	}
	if token.AccessToken == "" {
		token.AccessToken = uuid.NewString()
	}
	if token.TokenType == "" {
		token.TokenType = "Bearer"
	}

	h.mu.Lock()
	h.tokens[token.AccessToken] = token
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, token)
}

func (h *Harness) serveTokenInfo(w http.ResponseWriter, r *http.Request) {
	record := recordRequest(r)

	h.mu.Lock()
	h.tokenInfoRecords = append(h.tokenInfoRecords, record)
	mocked := h.tokenInfoMocked || h.accessTokenMock != nil
	errResp := h.tokenInfoError
	token := h.tokens[record.Query.Get("access_token")]
	h.mu.Unlock()

	switch {
	case errResp != nil:
		writeRaw(w, errResp.status, errResp.body)
	case !mocked:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_mocked"})
	case token == nil:
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "invalid_token",
			"error_description": "Access Token not valid",
		})
	default:
		writeJSON(w, http.StatusOK, token)
	}
}

func recordRequest(r *http.Request) RecordedRequest {
	return RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Form:          r.PostForm,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
	}
}

func copyExtra(extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return nil
	}
	copied := make(map[string]any, len(extra))
	for key, value := range extra {
		copied[key] = value
	}
	return copied
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
