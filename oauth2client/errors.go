package oauth2client

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every *ConfigError.
	ErrInvalidConfig = errors.New("oauth2client: invalid configuration")

	// ErrUnknownTokenName is matched by every *UnknownTokenNameError.
	ErrUnknownTokenName = errors.New("oauth2client: unknown token name")
)

// ConfigError reports a missing or inconsistent configuration field.
// It is returned before any I/O takes place.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "oauth2client: invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("oauth2client: invalid configuration: %s %s", e.Field, e.Reason)
}

// Is enables errors.Is(err, ErrInvalidConfig).
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// CredentialsError reports that a credentials file could not be read or parsed.
type CredentialsError struct {
	Path string
	Err  error
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("oauth2client: failed to load credentials from %s: %v", e.Path, e.Err)
}

func (e *CredentialsError) Unwrap() error {
	return e.Err
}

// AccessTokenError is returned when the token endpoint answers with a non-200 status.
// ErrorCode and ErrorDescription follow the RFC 6749 section 5.2 error response; when the body is
// not a JSON error object ErrorCode carries the raw body.
type AccessTokenError struct {
	ErrorCode        string
	ErrorDescription string
	Status           int
}

func (e *AccessTokenError) Error() string {
	if e.ErrorDescription != "" {
		return fmt.Sprintf("oauth2client: token endpoint returned status %d: %s: %s", e.Status, e.ErrorCode, e.ErrorDescription)
	}
	return fmt.Sprintf("oauth2client: token endpoint returned status %d: %s", e.Status, e.ErrorCode)
}

// RequestError is returned when a request could not be sent or no response was received.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// TokenInfoError is returned when a token could not be validated via the token info endpoint.
//
// For an unreachable endpoint Status is zero, ErrorDescription is set and Err holds the transport error.
// For a non-200 answer Status and Data (the decoded body, or the raw body string) are set.
type TokenInfoError struct {
	Message          string
	ErrorDescription string
	Status           int
	Data             any
	Err              error
}

func (e *TokenInfoError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Message, e.Status)
	case e.ErrorDescription != "":
		return fmt.Sprintf("%s: %s", e.Message, e.ErrorDescription)
	default:
		return e.Message
	}
}

func (e *TokenInfoError) Unwrap() error {
	return e.Err
}

// UnknownTokenNameError is returned by TokenCache for names it was not configured with.
type UnknownTokenNameError struct {
	Name string
}

func (e *UnknownTokenNameError) Error() string {
	return fmt.Sprintf("oauth2client: token %q is not configured", e.Name)
}

// Is enables errors.Is(err, ErrUnknownTokenName).
func (e *UnknownTokenNameError) Is(target error) bool {
	return target == ErrUnknownTokenName
}
