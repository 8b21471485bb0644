package oauth

import "fmt"

// Token is the token endpoint response for both grant types.
type Token struct {
	// AccessToken is the bearer token used for authorization.
	AccessToken string `json:"access_token"`

	// RefreshToken is used to obtain new access tokens. The server may omit
	// it on refresh responses (rotation is optional).
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`
}

// TokenRequestError indicates the token endpoint rejected a grant with a
// non-success HTTP status. The body is captured verbatim so the operator
// sees the server's own error description.
type TokenRequestError struct {
	// Status is the HTTP status code returned by the token endpoint.
	Status int

	// Body is the raw response body.
	Body string
}

// Error returns a message carrying the server status and body.
func (e *TokenRequestError) Error() string {
	return fmt.Sprintf("token request failed with status %d: %s", e.Status, e.Body)
}

// TransportError indicates the token endpoint could not be reached at all:
// timeout, connection reset, DNS failure. It is safe to retry and must never
// be treated as a grant rejection.
type TransportError struct {
	// Err is the underlying transport error.
	Err error
}

// Error returns the wrapped transport error message.
func (e *TransportError) Error() string {
	return fmt.Sprintf("token endpoint unreachable: %v", e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *TransportError) Unwrap() error {
	return e.Err
}
