package credential

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates no credential record is on file. The caller must
// run interactive authorization (courier auth login) before retrying.
var ErrUnauthorized = errors.New("no credentials on file")

// ErrNoRefreshToken indicates a refresh was attempted without a prior
// authorization. Not retried; the caller must trigger interactive
// authorization.
var ErrNoRefreshToken = errors.New("no refresh token available")

// ExchangeError indicates the authorization server rejected the
// authorization-code exchange. Codes are single-use, so the exchange is
// never retried automatically; the status and body are surfaced verbatim
// to the operator.
type ExchangeError struct {
	// Status is the HTTP status returned by the token endpoint.
	Status int

	// Body is the raw response body.
	Body string
}

// Error returns the server status and body.
func (e *ExchangeError) Error() string {
	return fmt.Sprintf("authorization code exchange rejected (status %d): %s", e.Status, e.Body)
}

// RefreshRejectedError indicates the authorization server rejected the
// refresh token. This is terminal: the stored record has already been
// destroyed by the time the error is returned, and the caller must re-enter
// interactive authorization.
type RefreshRejectedError struct {
	// Status is the HTTP status returned by the token endpoint.
	Status int

	// Body is the raw response body.
	Body string
}

// Error returns the server status and body with the re-authorization remedy.
func (e *RefreshRejectedError) Error() string {
	return fmt.Sprintf("refresh token rejected (status %d): %s; run 'courier auth login' to re-authorize", e.Status, e.Body)
}

// NetworkError indicates a transient transport failure (timeout, connection
// reset) while talking to the authorization server. Unlike an explicit
// rejection it is safe to retry with caller-controlled backoff, and it never
// destroys the stored record.
type NetworkError struct {
	// Op is the operation that failed: "exchange" or "refresh".
	Op string

	// Err is the underlying transport error.
	Err error
}

// Error returns the failed operation and the underlying error.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed: authorization server unreachable: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
