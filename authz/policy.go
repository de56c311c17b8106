package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando-incubator/authmosphere-sub000/oauth2client"
)

var defaultScopeClaimPaths = []string{"scope", "scp"}

// ScopePolicy requires a set of scopes to be granted to a token.
//
// The check is disabled when RequiredScopes is empty. Every required scope must be granted;
// order and duplicates are irrelevant and extra granted scopes are allowed.
//
// ScopeClaimPaths are dot separated paths into the token info document that hold granted scopes,
// as a space separated string or a list. Defaults to ["scope", "scp"].
type ScopePolicy struct {
	RequiredScopes  []string
	ScopeClaimPaths []string
}

// ErrPermissionDenied indicates that authorization requirements are not satisfied.
var ErrPermissionDenied = errors.New("authorization: permission denied")

// PermissionDeniedError carries the scopes that were required but not granted.
type PermissionDeniedError struct {
	MissingScopes []string
}

// Error returns a concise authorization error message.
func (e *PermissionDeniedError) Error() string {
	if len(e.MissingScopes) == 0 {
		return ErrPermissionDenied.Error()
	}
	return fmt.Sprintf("authorization: missing required scopes %v", e.MissingScopes)
}

// Is enables errors.Is(err, ErrPermissionDenied).
func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// Evaluator checks a ScopePolicy against token info documents.
// It is immutable and safe for concurrent use.
type Evaluator struct {
	required []string
	paths    []string
}

// NewEvaluator creates an evaluator with normalized defaults.
func NewEvaluator(policy ScopePolicy) *Evaluator {
	return &Evaluator{
		required: normalizeValues(policy.RequiredScopes),
		paths:    normalizePaths(policy.ScopeClaimPaths, defaultScopeClaimPaths),
	}
}

// Enabled reports whether this policy performs authorization checks.
func (e *Evaluator) Enabled() bool {
	return len(e.required) > 0
}

// RequiredScopes returns the normalized required scopes.
func (e *Evaluator) RequiredScopes() []string {
	scopes := make([]string, len(e.required))
	copy(scopes, e.required)
	return scopes
}

// Authorize evaluates the policy against a claims map.
func (e *Evaluator) Authorize(claims map[string]any) error {
	if !e.Enabled() {
		return nil
	}
	return e.check(extractValuesFromPaths(claims, e.paths))
}

// AuthorizeToken evaluates the policy against a token info document.
// A nil token is missing every required scope.
func (e *Evaluator) AuthorizeToken(token *oauth2client.Token) error {
	if !e.Enabled() {
		return nil
	}
	if token == nil {
		return e.check(nil)
	}
	return e.Authorize(token.Claims())
}

func (e *Evaluator) check(granted []string) error {
	missing := MissingScopes(e.required, granted)
	if len(missing) == 0 {
		return nil
	}
	return &PermissionDeniedError{MissingScopes: missing}
}

// Evaluate is a convenience function for one-off authorization checks.
func Evaluate(policy ScopePolicy, claims map[string]any) error {
	return NewEvaluator(policy).Authorize(claims)
}

// MissingScopes returns the entries of required that are not in granted, in the order of required
// and without duplicates. It returns nil when every required scope is granted.
func MissingScopes(required, granted []string) []string {
	available := make(map[string]struct{}, len(granted))
	for _, scope := range granted {
		available[scope] = struct{}{}
	}

	var missing []string
	for _, scope := range normalizeValues(required) {
		if _, ok := available[scope]; !ok {
			missing = append(missing, scope)
		}
	}
	return missing
}

// DefaultScopeClaimPaths returns a copy of the default scope claim paths.
func DefaultScopeClaimPaths() []string {
	paths := make([]string, len(defaultScopeClaimPaths))
	copy(paths, defaultScopeClaimPaths)
	return paths
}

func normalizeValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

func normalizePaths(paths []string, defaults []string) []string {
	if normalized := normalizeValues(paths); len(normalized) > 0 {
		return normalized
	}

	result := make([]string, len(defaults))
	copy(result, defaults)
	return result
}

func extractValuesFromPaths(claims map[string]any, paths []string) []string {
	if len(claims) == 0 {
		return nil
	}

	var values []string
	for _, path := range paths {
		claim, ok := resolveClaimPath(claims, path)
		if !ok {
			continue
		}
		values = append(values, extractClaimValues(claim)...)
	}
	return normalizeValues(values)
}

func resolveClaimPath(claims map[string]any, path string) (any, bool) {
	var current any = claims
	for _, segment := range strings.Split(path, ".") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return nil, false
		}

		object, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = object[segment]; !ok {
			return nil, false
		}
	}
	return current, true
}

func extractClaimValues(value any) []string {
	switch typed := value.(type) {
	case string:
		return strings.Fields(typed)
	case []string:
		var result []string
		for _, item := range typed {
			result = append(result, strings.Fields(item)...)
		}
		return result
	case []any:
		var result []string
		for _, item := range typed {
			result = append(result, extractClaimValues(item)...)
		}
		return result
	case oauth2client.Scopes:
		return extractClaimValues([]string(typed))
	default:
		return nil
	}
}
