package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind classifies gateway failures so callers can pick a retry and
// messaging policy without inspecting provider-specific text.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrTimeout
	ErrAuth
	ErrRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTimeout:
		return "timeout"
	case ErrAuth:
		return "auth"
	case ErrRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// GatewayError is the uniform error returned by all providers.
type GatewayError struct {
	Provider string
	Kind     ErrorKind
	Status   int
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s gateway %s (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s gateway %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a second attempt could plausibly succeed.
// Auth failures never recover without operator action.
func (e *GatewayError) Retryable() bool {
	return e.Kind != ErrAuth
}

var errNoChoices = errors.New("no choices in response")

// wrapTransport classifies an error from http.Client.Do.
func wrapTransport(provider string, err error) *GatewayError {
	kind := ErrUnknown
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = ErrTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = ErrTimeout
	}
	return &GatewayError{Provider: provider, Kind: kind, Err: err}
}

// wrapStatus classifies a non-200 HTTP response.
func wrapStatus(provider string, status int, body []byte) *GatewayError {
	kind := ErrUnknown
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = ErrAuth
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		kind = ErrTimeout
	}
	return &GatewayError{
		Provider: provider,
		Kind:     kind,
		Status:   status,
		Err:      fmt.Errorf("%s", string(body)),
	}
}

// wrapDecode classifies a malformed response body.
func wrapDecode(provider string, err error) *GatewayError {
	return &GatewayError{Provider: provider, Kind: ErrUnknown, Err: fmt.Errorf("decode response: %w", err)}
}

// AsGateway extracts a GatewayError from an error chain, if present.
func AsGateway(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
