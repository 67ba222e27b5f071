package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrRateLimited   = errors.New("rate limited")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConfiguration = errors.New("configuration error")
	ErrUpstream      = errors.New("upstream error")
	ErrInvalidQuery  = errors.New("invalid query")
)

// ConfigError reports missing or malformed credentials or settings for a
// source. It is fatal to the call and must reach the caller untouched.
type ConfigError struct {
	Source Source
	Field  string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: configuration: %s: %v", e.Source, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: configuration: %s", e.Source, e.Field)
}

// Is makes errors.Is(err, ErrConfiguration) hold for every ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

func (e *ConfigError) Unwrap() error { return e.Err }

// UpstreamError reports a transport failure or non-2xx response from a source.
// StatusCode is zero for transport failures.
type UpstreamError struct {
	Source     Source
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream HTTP %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: upstream: %v", e.Source, e.Err)
}

// Is makes errors.Is(err, ErrUpstream) hold for every UpstreamError.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func (e *UpstreamError) Unwrap() error { return e.Err }

// Retryable reports whether retrying the same request could succeed.
// Authentication failures are not retryable; they need operator action.
func (e *UpstreamError) Retryable() bool {
	switch e.StatusCode {
	case 401, 403, 400, 404:
		return false
	}
	return true
}
