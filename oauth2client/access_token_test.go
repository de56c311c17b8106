package oauth2client

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zalando-incubator/authmosphere-sub000/internal/testutil"
)

const testTokenEndpoint = "https://auth.example.com/oauth2/access_token"

type capturedRequest struct {
	method string
	url    *url.URL
	header http.Header
	form   url.Values
}

// capture records every request and answers with status and body.
func capture(t *testing.T, status int, body string) (*http.Client, *[]capturedRequest) {
	t.Helper()

	var requests []capturedRequest
	respond := testutil.JSONResponse(status, body)

	client := &http.Client{Transport: testutil.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("failed to read request body: %v", err)
		}
		form, err := url.ParseQuery(string(raw))
		if err != nil {
			t.Fatalf("failed to parse request body: %v", err)
		}
		requests = append(requests, capturedRequest{
			method: req.Method,
			url:    req.URL,
			header: req.Header.Clone(),
			form:   form,
		})
		return respond(req)
	})}

	return client, &requests
}

func TestClient_GetAccessToken_Request(t *testing.T) {
	httpClient, requests := capture(t, http.StatusOK, `{"access_token":"abc","expires_in":3600,"scope":"nucleus.read","token_type":"Bearer"}`)
	client := NewClient(WithHTTPClient(httpClient))

	token, err := client.GetAccessToken(context.Background(), &Config{
		Grant:               PasswordCredentialsGrant{},
		AccessTokenEndpoint: testTokenEndpoint,
		Scopes:              []string{"nucleus.read", "nucleus.write"},
		ClientID:            "stups_nucleus",
		ClientSecret:        "s3cr3t",
		ApplicationUsername: "nucleus",
		ApplicationPassword: "pa55",
	})
	if err != nil {
		t.Fatalf("GetAccessToken failed: %v", err)
	}

	if token.AccessToken != "abc" || token.ExpiresIn != 3600 || token.TokenType != "Bearer" {
		t.Errorf("unexpected token: %+v", token)
	}
	if diff := cmp.Diff(Scopes{"nucleus.read"}, token.Scope); diff != "" {
		t.Errorf("scope mismatch (-want +got):\n%s", diff)
	}

	if len(*requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*requests))
	}
	req := (*requests)[0]

	if req.method != http.MethodPost {
		t.Errorf("expected POST, got %s", req.method)
	}
	if got := req.header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
		t.Errorf("unexpected Content-Type %q", got)
	}
	if got := req.header.Get("Accept"); got != "application/json" {
		t.Errorf("unexpected Accept %q", got)
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("stups_nucleus:s3cr3t"))
	if got := req.header.Get("Authorization"); got != wantAuth {
		t.Errorf("expected Authorization %q, got %q", wantAuth, got)
	}

	wantForm := url.Values{
		"grant_type": {"password"},
		"username":   {"nucleus"},
		"password":   {"pa55"},
		"scope":      {"nucleus.read nucleus.write"},
	}
	if diff := cmp.Diff(wantForm, req.form); diff != "" {
		t.Errorf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_GetAccessToken_CredentialsDir(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCredentials(t, dir,
		map[string]string{"client_id": "file-id", "client_secret": "file-secret"},
		map[string]string{"application_username": "file-user", "application_password": "file-pass"},
	)

	httpClient, requests := capture(t, http.StatusOK, `{"access_token":"abc"}`)

	_, err := GetAccessToken(context.Background(), &Config{
		Grant:               PasswordCredentialsGrant{},
		AccessTokenEndpoint: testTokenEndpoint,
		CredentialsDir:      dir + "/",
	}, WithHTTPClient(httpClient))
	if err != nil {
		t.Fatalf("GetAccessToken failed: %v", err)
	}

	req := (*requests)[0]
	wantAuth := "Basic " + BasicAuth("file-id", "file-secret")
	if got := req.header.Get("Authorization"); got != wantAuth {
		t.Errorf("expected Authorization %q, got %q", wantAuth, got)
	}
	if req.form.Get("username") != "file-user" || req.form.Get("password") != "file-pass" {
		t.Errorf("unexpected user credentials in form: %v", req.form)
	}
}

func TestClient_GetAccessToken_InvalidConfigSkipsNetwork(t *testing.T) {
	httpClient, requests := capture(t, http.StatusOK, `{"access_token":"abc"}`)

	_, err := NewClient(WithHTTPClient(httpClient)).GetAccessToken(context.Background(), &Config{
		Grant:    ClientCredentialsGrant{},
		ClientID: "id",
	})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if len(*requests) != 0 {
		t.Errorf("expected no request, got %d", len(*requests))
	}
}

func TestClient_GetAccessToken_MissingCredentialsFile(t *testing.T) {
	httpClient, requests := capture(t, http.StatusOK, `{"access_token":"abc"}`)

	_, err := NewClient(WithHTTPClient(httpClient)).GetAccessToken(context.Background(), &Config{
		Grant:               ClientCredentialsGrant{},
		AccessTokenEndpoint: testTokenEndpoint,
		CredentialsDir:      t.TempDir(),
	})

	var credErr *CredentialsError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected *CredentialsError, got %v", err)
	}
	if len(*requests) != 0 {
		t.Errorf("expected no request, got %d", len(*requests))
	}
}

func TestClient_RequestAccessToken_QueryParams(t *testing.T) {
	httpClient, requests := capture(t, http.StatusOK, `{"access_token":"abc"}`)
	client := NewClient(WithHTTPClient(httpClient))

	_, err := client.RequestAccessToken(context.Background(), AccessTokenRequest{
		Endpoint:  testTokenEndpoint,
		Body:      map[string]string{"grant_type": "client_credentials"},
		BasicAuth: BasicAuth("id", "secret"),
		QueryParams: map[string]string{
			"realm":    "/services",
			"callback": "https://app.example.com/cb?a=1&b=2",
		},
	})
	if err != nil {
		t.Fatalf("RequestAccessToken failed: %v", err)
	}

	got := (*requests)[0].url
	wantRaw := "callback=https://app.example.com/cb?a%3D1%26b%3D2&realm=/services"
	if got.RawQuery != wantRaw {
		t.Errorf("expected raw query %q, got %q", wantRaw, got.RawQuery)
	}
	if got.Query().Get("callback") != "https://app.example.com/cb?a=1&b=2" {
		t.Errorf("callback not preserved: %q", got.Query().Get("callback"))
	}
	if got.Path != "/oauth2/access_token" {
		t.Errorf("unexpected path %s", got.Path)
	}
}

func TestTokenEndpointURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		params   map[string]string
		want     string
	}{
		{
			name:     "no params",
			endpoint: testTokenEndpoint,
			want:     testTokenEndpoint,
		},
		{
			name:     "existing query",
			endpoint: testTokenEndpoint + "?tenant=a",
			params:   map[string]string{"realm": "/services"},
			want:     testTokenEndpoint + "?tenant=a&realm=/services",
		},
		{
			name:     "reserved characters",
			endpoint: testTokenEndpoint,
			params:   map[string]string{"who": "user@example.com:8080"},
			want:     testTokenEndpoint + "?who=user@example.com:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenEndpointURL(tt.endpoint, tt.params); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClient_RequestAccessToken_ErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantDesc string
	}{
		{
			name:     "oauth2 error object",
			status:   http.StatusUnauthorized,
			body:     `{"error":"invalid_client","error_description":"Client authentication failed"}`,
			wantCode: "invalid_client",
			wantDesc: "Client authentication failed",
		},
		{
			name:     "plain text body",
			status:   http.StatusInternalServerError,
			body:     "Internal Server Error",
			wantCode: "Internal Server Error",
		},
		{
			name:     "json without error field",
			status:   http.StatusBadRequest,
			body:     `{"message":"nope"}`,
			wantCode: `{"message":"nope"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpClient, _ := capture(t, tt.status, tt.body)

			_, err := NewClient(WithHTTPClient(httpClient)).RequestAccessToken(context.Background(), AccessTokenRequest{
				Endpoint: testTokenEndpoint,
				Body:     map[string]string{"grant_type": "client_credentials"},
			})

			var tokenErr *AccessTokenError
			if !errors.As(err, &tokenErr) {
				t.Fatalf("expected *AccessTokenError, got %v", err)
			}
			if tokenErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tokenErr.Status)
			}
			if tokenErr.ErrorCode != tt.wantCode {
				t.Errorf("expected error code %q, got %q", tt.wantCode, tokenErr.ErrorCode)
			}
			if tokenErr.ErrorDescription != tt.wantDesc {
				t.Errorf("expected description %q, got %q", tt.wantDesc, tokenErr.ErrorDescription)
			}
		})
	}
}

func TestClient_RequestAccessToken_TransportError(t *testing.T) {
	transportErr := errors.New("connection refused")
	httpClient := &http.Client{Transport: testutil.RoundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, transportErr
	})}

	_, err := NewClient(WithHTTPClient(httpClient)).RequestAccessToken(context.Background(), AccessTokenRequest{
		Endpoint: testTokenEndpoint,
	})

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if reqErr.Message != "Error requesting access token from "+testTokenEndpoint {
		t.Errorf("unexpected message %q", reqErr.Message)
	}
	if !errors.Is(err, transportErr) {
		t.Errorf("expected wrapped transport error, got %v", err)
	}
}

func TestClient_RequestAccessToken_InvalidJSON(t *testing.T) {
	httpClient, _ := capture(t, http.StatusOK, "not json")

	_, err := NewClient(WithHTTPClient(httpClient)).RequestAccessToken(context.Background(), AccessTokenRequest{
		Endpoint: testTokenEndpoint,
	})

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid token response") {
		t.Errorf("unexpected error: %v", err)
	}
}
