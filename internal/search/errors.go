package search

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies provider failures.
type ErrorKind int

const (
	// ErrHTTP covers transport failures and non-2xx responses.
	ErrHTTP ErrorKind = iota

	// ErrDecode covers unparseable response bodies.
	ErrDecode

	// ErrTimeout covers requests that exceeded the provider timeout.
	ErrTimeout
)

// String returns the kind's name for logs and error text.
func (k ErrorKind) String() string {
	switch k {
	case ErrHTTP:
		return "http"
	case ErrDecode:
		return "decode"
	case ErrTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ProviderError is a typed search backend failure.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Message  string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// ConfigError reports bad or missing provider configuration, detected
// before any network call.
type ConfigError struct {
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return e.Message
}

// requestError classifies a transport-level failure from http.Client.Do
// into a ProviderError, distinguishing timeouts from other failures.
func requestError(provider string, err error) *ProviderError {
	kind := ErrHTTP
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		kind = ErrTimeout
	}
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Message:  fmt.Sprintf("request failed: %v", err),
	}
}
