package grpcserver

import (
	"context"
	"testing"

	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

func TestTokenInfoContext(t *testing.T) {
	info := &TokenInfo{Scope: oauth2client.Scopes{"uid"}, Extra: map[string]any{"uid": "nucleus"}}

	got, ok := TokenInfoFromContext(WithTokenInfo(context.Background(), info))
	if !ok || got != info {
		t.Fatalf("expected stored token info, got %v, %v", got, ok)
	}

	if _, ok := TokenInfoFromContext(context.Background()); ok {
		t.Error("expected ok to be false when token info is not present")
	}
	if _, ok := TokenInfoFromContext(WithTokenInfo(context.Background(), nil)); ok {
		t.Error("expected ok to be false for nil token info")
	}
	if _, ok := TokenInfoFromContext(context.WithValue(context.Background(), tokenInfoKey, "nope")); ok {
		t.Error("expected ok to be false for a wrong type")
	}
}

func TestMustTokenInfoFromContext(t *testing.T) {
	info := &TokenInfo{Extra: map[string]any{"uid": "nucleus"}}
	if got := MustTokenInfoFromContext(WithTokenInfo(context.Background(), info)); got != info {
		t.Error("expected the stored token info to be returned")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic when token info is missing")
		}
	}()
	MustTokenInfoFromContext(context.Background())
}
