package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	fixtures "github.com/zalando-incubator/authmosphere-sub000/internal/testutil"
	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
	"github.com/zalando-incubator/authmosphere-sub000/testutil"
)

func staticToken(token string) AccessTokenFunc {
	return func(context.Context) (string, error) { return token, nil }
}

// echoAuthorization answers 200 with the received Authorization header as body, or 401 without one.
func echoAuthorization() http.RoundTripper {
	return fixtures.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		authHeader := req.Header.Get("Authorization")
		status := http.StatusOK
		if authHeader == "" {
			status = http.StatusUnauthorized
		}
		return &http.Response{
			StatusCode: status,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader(authHeader)),
			Request:    req,
		}, nil
	})
}

func newHarnessCache(t *testing.T, h *testutil.Harness) *oauth2client.TokenCache {
	t.Helper()

	cache, err := oauth2client.NewTokenCache(oauth2client.TokenCacheConfig{
		Tokens: map[string][]string{"nucleus": {"nucleus.read"}},
		OAuth: oauth2client.Config{
			Grant:               oauth2client.ClientCredentialsGrant{},
			AccessTokenEndpoint: h.AccessTokenEndpoint(),
			TokenInfoEndpoint:   h.TokenInfoEndpoint(),
			ClientID:            "stups_nucleus",
			ClientSecret:        "s3cr3t",
		},
	})
	if err != nil {
		t.Fatalf("NewTokenCache failed: %v", err)
	}
	return cache
}

func get(t *testing.T, client *http.Client) (int, string) {
	t.Helper()

	resp, err := client.Get("https://nucleus.example.com/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestNewBuilder(t *testing.T) {
	builder := NewBuilder()

	if builder == nil {
		t.Fatal("builder should not be nil")
	}

	if builder.timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", builder.timeout)
	}

	if !builder.followRedirects {
		t.Error("redirects should be enabled by default")
	}

	if builder.accessToken != nil {
		t.Error("no token should be configured by default")
	}
}

func TestBuilder_WithTokenCache(t *testing.T) {
	h := testutil.NewHarness(t)
	h.MockAccessTokenEndpoint(testutil.AccessTokenMock{AccessToken: "nucleus-token", ExpiresIn: 3600})
	h.MockTokenInfoEndpoint()

	client, err := NewBuilder().
		WithTokenCache(newHarnessCache(t, h), "nucleus").
		WithBaseTransport(echoAuthorization()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		status, body := get(t, client)
		if status != http.StatusOK {
			t.Fatalf("expected status 200, got %d", status)
		}
		if body != "Bearer nucleus-token" {
			t.Errorf("unexpected Authorization header %q", body)
		}
	}

	if n := len(h.AccessTokenRequests()); n != 1 {
		t.Errorf("expected the cached token to be reused, got %d token requests", n)
	}
}

func TestBuilder_WithTokenCache_Nil(t *testing.T) {
	builder := NewBuilder().WithTokenCache(nil, "nucleus")

	if builder.accessToken != nil {
		t.Error("a nil cache must not configure a token")
	}
}

func TestBuilder_WithTokenCache_UnknownName(t *testing.T) {
	h := testutil.NewHarness(t)

	client, err := NewBuilder().
		WithTokenCache(newHarnessCache(t, h), "halo").
		WithBaseTransport(echoAuthorization()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, err = client.Get("https://nucleus.example.com/data")
	if !errors.Is(err, oauth2client.ErrUnknownTokenName) {
		t.Errorf("expected ErrUnknownTokenName, got %v", err)
	}
}

func TestBuilder_WithTokenSource(t *testing.T) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "static-token", TokenType: "Bearer"})

	client, err := NewBuilder().
		WithTokenSource(ts).
		WithBaseTransport(echoAuthorization()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	status, body := get(t, client)
	if status != http.StatusOK || body != "Bearer static-token" {
		t.Errorf("unexpected response %d %q", status, body)
	}
}

func TestBuilder_WithAccessTokenFunc(t *testing.T) {
	builder := NewBuilder().WithAccessTokenFunc(staticToken("nucleus-token"))

	if builder.accessToken == nil {
		t.Fatal("access token func not set")
	}
}

func TestBuilder_WithTLS(t *testing.T) {
	builder := NewBuilder().
		WithTLS("/path/to/ca.crt", "/path/to/cert.crt", "/path/to/key.pem")

	if !builder.tlsEnabled {
		t.Error("TLS should be enabled")
	}

	if builder.tlsCAFile != "/path/to/ca.crt" {
		t.Errorf("unexpected CA file: %s", builder.tlsCAFile)
	}

	if builder.tlsCertFile != "/path/to/cert.crt" {
		t.Errorf("unexpected cert file: %s", builder.tlsCertFile)
	}

	if builder.tlsKeyFile != "/path/to/key.pem" {
		t.Errorf("unexpected key file: %s", builder.tlsKeyFile)
	}
}

func TestBuilder_WithInsecureSkipVerify(t *testing.T) {
	builder := NewBuilder().WithInsecureSkipVerify()

	if !builder.tlsSkipVerify {
		t.Error("InsecureSkipVerify should be enabled")
	}
}

func TestBuilder_WithTimeout(t *testing.T) {
	timeout := 45 * time.Second
	builder := NewBuilder().WithTimeout(timeout)

	if builder.timeout != timeout {
		t.Errorf("expected timeout %v, got %v", timeout, builder.timeout)
	}
}

func TestBuilder_WithBaseTransport(t *testing.T) {
	customTransport := &http.Transport{}
	builder := NewBuilder().WithBaseTransport(customTransport)

	if builder.baseTransport != customTransport {
		t.Error("base transport not set correctly")
	}
}

func TestBuilder_WithoutRedirects(t *testing.T) {
	builder := NewBuilder().WithoutRedirects()

	if builder.followRedirects {
		t.Error("redirects should be disabled")
	}
}

func TestBuilder_Build_Simple(t *testing.T) {
	builder := NewBuilder()

	client, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if client == nil {
		t.Fatal("client should not be nil")
	}

	if client.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", client.Timeout)
	}
}

func TestBuilder_Build_WithAccessTokenFunc(t *testing.T) {
	client, err := NewBuilder().WithAccessTokenFunc(staticToken("nucleus-token")).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, ok := client.Transport.(*OAuth2Transport); !ok {
		t.Errorf("transport should be OAuth2Transport, got %T", client.Transport)
	}
}

func TestBuilder_Build_WithTimeout(t *testing.T) {
	timeout := 60 * time.Second
	builder := NewBuilder().WithTimeout(timeout)

	client, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if client.Timeout != timeout {
		t.Errorf("expected timeout %v, got %v", timeout, client.Timeout)
	}
}

func TestBuilder_Build_WithoutRedirects(t *testing.T) {
	builder := NewBuilder().WithoutRedirects()

	client, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if client.CheckRedirect == nil {
		t.Error("CheckRedirect should be set")
	}

	// Test that redirects are disabled
	err = client.CheckRedirect(nil, nil)
	if err != http.ErrUseLastResponse {
		t.Errorf("expected ErrUseLastResponse, got %v", err)
	}
}

func TestBuilder_Build_WithBaseTransport(t *testing.T) {
	customTransport := &http.Transport{}
	builder := NewBuilder().WithBaseTransport(customTransport)

	client, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if client.Transport != customTransport {
		t.Error("client should use custom transport when no token is configured")
	}
}

func TestBuilder_Build_WithBaseTransport_AndToken(t *testing.T) {
	customTransport := &http.Transport{}

	builder := NewBuilder().
		WithBaseTransport(customTransport).
		WithAccessTokenFunc(staticToken("nucleus-token"))

	client, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Should wrap custom transport with OAuth2Transport
	oauth2Transport, ok := client.Transport.(*OAuth2Transport)
	if !ok {
		t.Fatal("transport should be OAuth2Transport")
	}

	if oauth2Transport.Base != customTransport {
		t.Error("OAuth2Transport should wrap custom transport")
	}
}

func TestBuilder_BuildTLSConfig_Simple(t *testing.T) {
	builder := NewBuilder()
	builder.tlsEnabled = true

	tlsConfig, err := builder.buildTLSConfig()
	if err != nil {
		t.Fatalf("buildTLSConfig failed: %v", err)
	}

	if tlsConfig.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected TLS 1.2, got %d", tlsConfig.MinVersion)
	}
}

func TestBuilder_BuildTLSConfig_WithInsecureSkipVerify(t *testing.T) {
	builder := NewBuilder()
	builder.tlsSkipVerify = true

	tlsConfig, err := builder.buildTLSConfig()
	if err != nil {
		t.Fatalf("buildTLSConfig failed: %v", err)
	}

	if !tlsConfig.InsecureSkipVerify {
		t.Error("InsecureSkipVerify should be true")
	}
}

func TestBuilder_BuildTLSConfig_WithCAFile(t *testing.T) {
	// Create temporary CA file
	tmpDir := t.TempDir()
	caFile := filepath.Join(tmpDir, "ca.crt")

	fixtures.WriteTestCACert(t, caFile)

	builder := NewBuilder()
	builder.tlsEnabled = true
	builder.tlsCAFile = caFile

	tlsConfig, err := builder.buildTLSConfig()
	if err != nil {
		t.Fatalf("buildTLSConfig failed: %v", err)
	}

	if tlsConfig.RootCAs == nil {
		t.Error("RootCAs should not be nil")
	}
}

func TestBuilder_BuildTLSConfig_InvalidCAFile(t *testing.T) {
	builder := NewBuilder()
	builder.tlsEnabled = true
	builder.tlsCAFile = "/nonexistent/ca.crt"

	_, err := builder.buildTLSConfig()
	if err == nil {
		t.Error("expected error for invalid CA file")
	}
}

func TestBuilder_BuildTLSConfig_InvalidCAContent(t *testing.T) {
	tmpDir := t.TempDir()
	caFile := filepath.Join(tmpDir, "ca.crt")

	if err := os.WriteFile(caFile, []byte("invalid cert content"), 0o600); err != nil {
		t.Fatalf("failed to write CA file: %v", err)
	}

	builder := NewBuilder()
	builder.tlsEnabled = true
	builder.tlsCAFile = caFile

	_, err := builder.buildTLSConfig()
	if err == nil {
		t.Error("expected error for invalid CA content")
	}
}

func TestBuilder_BuildTLSConfig_OnlyCert(t *testing.T) {
	builder := NewBuilder()
	builder.tlsEnabled = true
	builder.tlsCertFile = "/path/to/cert.crt"

	_, err := builder.buildTLSConfig()
	if err == nil {
		t.Error("expected error for cert without key")
	}
}

func TestBuilder_BuildTLSConfig_OnlyKey(t *testing.T) {
	builder := NewBuilder()
	builder.tlsEnabled = true
	builder.tlsKeyFile = "/path/to/key.pem"

	_, err := builder.buildTLSConfig()
	if err == nil {
		t.Error("expected error for key without cert")
	}
}

func TestBuilder_Build_WithTLS_UsesConfig(t *testing.T) {
	tmpDir := t.TempDir()
	caFile := filepath.Join(tmpDir, "ca.crt")
	fixtures.WriteTestCACert(t, caFile)

	client, err := NewBuilder().WithTLS(caFile, "", "").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}

	if transport.TLSClientConfig == nil {
		t.Fatal("TLSClientConfig should be set")
	}

	if transport.TLSClientConfig.RootCAs == nil {
		t.Error("RootCAs should be configured from CA file")
	}
}

func TestBuilder_Build_WithMutualTLS_LoadsCertificates(t *testing.T) {
	tmpDir := t.TempDir()
	caFile := filepath.Join(tmpDir, "ca.crt")
	certFile := filepath.Join(tmpDir, "client.crt")
	keyFile := filepath.Join(tmpDir, "client.key")

	fixtures.WriteTestCACert(t, caFile)
	fixtures.WriteTestCertAndKey(t, certFile, keyFile)

	client, err := NewBuilder().WithTLS(caFile, certFile, keyFile).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}

	if len(transport.TLSClientConfig.Certificates) == 0 {
		t.Fatal("expected client certificates to be loaded")
	}
}

func TestBuilder_Build_WithMutualTLS_InvalidCert(t *testing.T) {
	tmpDir := t.TempDir()
	certFile := filepath.Join(tmpDir, "client.crt")
	keyFile := filepath.Join(tmpDir, "client.key")

	if err := os.WriteFile(certFile, []byte("bad cert"), 0o600); err != nil {
		t.Fatalf("failed to write cert file: %v", err)
	}
	if err := os.WriteFile(keyFile, []byte("bad key"), 0o600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	_, err := NewBuilder().WithTLS("", certFile, keyFile).Build()
	if err == nil {
		t.Fatal("expected error for invalid cert/key")
	}

	if !strings.Contains(err.Error(), "load client certificate") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuilder_Build_WithInsecureSkipVerifyOnly(t *testing.T) {
	client, err := NewBuilder().WithInsecureSkipVerify().Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}

	if transport.TLSClientConfig == nil || !transport.TLSClientConfig.InsecureSkipVerify {
		t.Fatal("expected InsecureSkipVerify to be true")
	}
}

func TestBuilder_Build_FallbackDefaultTransportWithTLS(t *testing.T) {
	tmpDir := t.TempDir()
	caFile := filepath.Join(tmpDir, "ca.crt")
	fixtures.WriteTestCACert(t, caFile)

	origDefault := http.DefaultTransport
	http.DefaultTransport = fixtures.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader("ok")),
			Request:    req,
		}, nil
	})
	t.Cleanup(func() { http.DefaultTransport = origDefault })

	client, err := NewBuilder().WithTLS(caFile, "", "").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	resp, err := client.Get("https://example.com")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
}

func TestBuilder_Build_WithTLS_InvalidCertPair(t *testing.T) {
	tmpDir := t.TempDir()
	certFile := filepath.Join(tmpDir, "client.crt")
	keyFile := filepath.Join(tmpDir, "client.key")

	if err := os.WriteFile(certFile, []byte("bad cert"), 0o600); err != nil {
		t.Fatalf("failed to write cert file: %v", err)
	}
	fixtures.WriteTestCACert(t, keyFile) // write non-key content to trigger load error

	_, err := NewBuilder().WithTLS("", certFile, keyFile).Build()
	if err == nil {
		t.Fatal("expected error for invalid cert/key pair")
	}

	if !strings.Contains(err.Error(), "load client certificate") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuilder_Build_Integration(t *testing.T) {
	client, err := NewBuilder().
		WithAccessTokenFunc(staticToken("nucleus-token")).
		WithBaseTransport(echoAuthorization()).
		WithTimeout(10 * time.Second).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	status, _ := get(t, client)
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}

	plain, err := NewBuilder().WithBaseTransport(echoAuthorization()).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if status, _ := get(t, plain); status != http.StatusUnauthorized {
		t.Errorf("expected status 401 without token, got %d", status)
	}
}

func TestNewHTTPClient(t *testing.T) {
	h := testutil.NewHarness(t)
	h.MockAccessTokenEndpoint(testutil.AccessTokenMock{AccessToken: "nucleus-token", ExpiresIn: 3600})
	h.MockTokenInfoEndpoint()

	client := NewHTTPClient(newHarnessCache(t, h), "nucleus")

	if client.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", client.Timeout)
	}
	transport, ok := client.Transport.(*OAuth2Transport)
	if !ok {
		t.Fatalf("expected *OAuth2Transport, got %T", client.Transport)
	}
	transport.Base = echoAuthorization()

	status, body := get(t, client)
	if status != http.StatusOK || body != "Bearer nucleus-token" {
		t.Errorf("unexpected response %d %q", status, body)
	}
}

// Benchmark tests
func BenchmarkBuilder_Build(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		client, err := NewBuilder().Build()
		if err != nil {
			b.Fatalf("Build failed: %v", err)
		}
		_ = client
	}
}

func BenchmarkBuilder_Build_WithAccessTokenFunc(b *testing.B) {
	fn := staticToken("nucleus-token")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		client, err := NewBuilder().
			WithAccessTokenFunc(fn).
			Build()
		if err != nil {
			b.Fatalf("Build failed: %v", err)
		}
		_ = client
	}
}
