package authz

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

func TestEvaluator_DisabledWhenNoRequirements(t *testing.T) {
	evaluator := NewEvaluator(ScopePolicy{RequiredScopes: []string{" ", ""}})
	if evaluator.Enabled() {
		t.Fatal("expected evaluator to be disabled")
	}

	if err := evaluator.Authorize(nil); err != nil {
		t.Fatalf("expected nil error for disabled evaluator, got %v", err)
	}
	if err := evaluator.AuthorizeToken(nil); err != nil {
		t.Fatalf("expected nil error for disabled evaluator, got %v", err)
	}
}

func TestEvaluator_Authorize(t *testing.T) {
	tests := []struct {
		name        string
		policy      ScopePolicy
		claims      map[string]any
		wantMissing []string
	}{
		{
			name:   "space separated scope string",
			policy: ScopePolicy{RequiredScopes: []string{"nucleus.read"}},
			claims: map[string]any{"scope": "uid nucleus.read nucleus.write"},
		},
		{
			name:   "scope array",
			policy: ScopePolicy{RequiredScopes: []string{"nucleus.write", "nucleus.read"}},
			claims: map[string]any{"scope": []any{"nucleus.read", "nucleus.write"}},
		},
		{
			name:   "scp fallback",
			policy: ScopePolicy{RequiredScopes: []string{"uid"}},
			claims: map[string]any{"scp": []string{"uid"}},
		},
		{
			name:   "duplicates are ignored",
			policy: ScopePolicy{RequiredScopes: []string{"uid", "uid"}},
			claims: map[string]any{"scope": "uid"},
		},
		{
			name:   "nested claim path",
			policy: ScopePolicy{RequiredScopes: []string{"write"}, ScopeClaimPaths: []string{"realm_access.scopes"}},
			claims: map[string]any{"realm_access": map[string]any{"scopes": []any{"read", "write"}}},
		},
		{
			name:        "one scope missing",
			policy:      ScopePolicy{RequiredScopes: []string{"nucleus.read", "nucleus.write"}},
			claims:      map[string]any{"scope": "nucleus.read"},
			wantMissing: []string{"nucleus.write"},
		},
		{
			name:        "missing claim",
			policy:      ScopePolicy{RequiredScopes: []string{"uid"}},
			claims:      map[string]any{},
			wantMissing: []string{"uid"},
		},
		{
			name:        "wrong claim type",
			policy:      ScopePolicy{RequiredScopes: []string{"uid"}},
			claims:      map[string]any{"scope": 1234},
			wantMissing: []string{"uid"},
		},
		{
			name:        "path through a non object",
			policy:      ScopePolicy{RequiredScopes: []string{"uid"}, ScopeClaimPaths: []string{"scope.inner"}},
			claims:      map[string]any{"scope": "uid"},
			wantMissing: []string{"uid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewEvaluator(tt.policy).Authorize(tt.claims)
			if len(tt.wantMissing) == 0 {
				if err != nil {
					t.Fatalf("expected authorization to pass, got %v", err)
				}
				return
			}

			var denied *PermissionDeniedError
			if !errors.As(err, &denied) {
				t.Fatalf("expected *PermissionDeniedError, got %v", err)
			}
			if diff := cmp.Diff(tt.wantMissing, denied.MissingScopes); diff != "" {
				t.Errorf("missing scopes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluator_AuthorizeToken(t *testing.T) {
	evaluator := NewEvaluator(ScopePolicy{RequiredScopes: []string{"nucleus.read"}})

	granted := &oauth2client.Token{Scope: oauth2client.Scopes{"uid", "nucleus.read"}}
	if err := evaluator.AuthorizeToken(granted); err != nil {
		t.Fatalf("expected authorization to pass, got %v", err)
	}

	fromExtra := &oauth2client.Token{Extra: map[string]any{"scp": []any{"nucleus.read"}}}
	if err := evaluator.AuthorizeToken(fromExtra); err != nil {
		t.Fatalf("expected scp claim to be used, got %v", err)
	}

	if err := evaluator.AuthorizeToken(&oauth2client.Token{Scope: oauth2client.Scopes{"uid"}}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if err := evaluator.AuthorizeToken(nil); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for nil token, got %v", err)
	}
}

func TestMissingScopes(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		granted  []string
		want     []string
	}{
		{name: "none required", granted: []string{"uid"}},
		{name: "superset granted", required: []string{"a"}, granted: []string{"b", "a", "c"}},
		{name: "order independent", required: []string{"b", "a"}, granted: []string{"a", "b"}},
		{name: "nothing granted", required: []string{"a", "b", "a"}, want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, MissingScopes(tt.required, tt.granted)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPermissionDeniedError_Is(t *testing.T) {
	err := Evaluate(ScopePolicy{RequiredScopes: []string{"admin"}}, map[string]any{"scope": "read"})

	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if err.Error() != "authorization: missing required scopes [admin]" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if (&PermissionDeniedError{}).Error() != ErrPermissionDenied.Error() {
		t.Error("expected generic message without missing scopes")
	}
}

func TestDefaultScopeClaimPathsCopies(t *testing.T) {
	scopes := DefaultScopeClaimPaths()
	scopes[0] = "changed"

	if DefaultScopeClaimPaths()[0] == "changed" {
		t.Fatal("expected scope defaults to be copied")
	}
}

func TestEvaluator_RequiredScopes(t *testing.T) {
	evaluator := NewEvaluator(ScopePolicy{RequiredScopes: []string{" b ", "a", "b"}})

	if diff := cmp.Diff([]string{"b", "a"}, evaluator.RequiredScopes()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
