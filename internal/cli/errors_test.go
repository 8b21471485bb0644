package cli

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyConnectionError(t *testing.T) {
	endpoint := "https://api.courier.example.com"

	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, ClassifyConnectionError(nil, endpoint))
	})

	t.Run("certificate error", func(t *testing.T) {
		err := fmt.Errorf("request failed: %w", x509.UnknownAuthorityError{})
		connErr := ClassifyConnectionError(err, endpoint)
		require.NotNil(t, connErr)
		assert.Equal(t, ConnectionErrorTLS, connErr.Type)
	})

	t.Run("tls keyword in message", func(t *testing.T) {
		connErr := ClassifyConnectionError(errors.New("tls: handshake failure"), endpoint)
		require.NotNil(t, connErr)
		assert.Equal(t, ConnectionErrorTLS, connErr.Type)
	})

	t.Run("dns error", func(t *testing.T) {
		err := &url.Error{Op: "Post", URL: endpoint, Err: &net.DNSError{
			Err: "no such host", Name: "api.courier.example.com", IsNotFound: true,
		}}
		connErr := ClassifyConnectionError(err, endpoint)
		require.NotNil(t, connErr)
		assert.Equal(t, ConnectionErrorDNS, connErr.Type)
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		err := fmt.Errorf("calling token endpoint: %w", context.DeadlineExceeded)
		connErr := ClassifyConnectionError(err, endpoint)
		require.NotNil(t, connErr)
		assert.Equal(t, ConnectionErrorTimeout, connErr.Type)
	})

	t.Run("connection refused", func(t *testing.T) {
		err := errors.New(`dial tcp 127.0.0.1:443: connect: connection refused`)
		connErr := ClassifyConnectionError(err, endpoint)
		require.NotNil(t, connErr)
		assert.Equal(t, ConnectionErrorNetwork, connErr.Type)
	})

	t.Run("unclassified error", func(t *testing.T) {
		connErr := ClassifyConnectionError(errors.New("something odd"), endpoint)
		require.NotNil(t, connErr)
		assert.Equal(t, ConnectionErrorUnknown, connErr.Type)
	})

	t.Run("wraps the original error", func(t *testing.T) {
		cause := errors.New("dial tcp: connection reset")
		connErr := ClassifyConnectionError(cause, endpoint)
		assert.ErrorIs(t, connErr, cause)
	})
}

func TestConnectionErrorType_String(t *testing.T) {
	assert.Equal(t, "TLS certificate error", ConnectionErrorTLS.String())
	assert.Equal(t, "Connection timeout", ConnectionErrorTimeout.String())
	assert.Equal(t, "Connection error", ConnectionErrorUnknown.String())
}

func TestAuthErrors(t *testing.T) {
	endpoint := "https://api.courier.example.com"

	t.Run("auth required names the login command", func(t *testing.T) {
		err := &AuthRequiredError{Endpoint: endpoint}
		assert.Contains(t, err.Error(), "courier auth login")
		assert.Contains(t, err.Error(), endpoint)
	})

	t.Run("auth expired names the login command", func(t *testing.T) {
		err := &AuthExpiredError{Endpoint: endpoint}
		assert.Contains(t, err.Error(), "courier auth login")
	})

	t.Run("auth failed carries the reason", func(t *testing.T) {
		cause := errors.New("authorization code rejected")
		err := &AuthFailedError{Endpoint: endpoint, Reason: cause}
		assert.Contains(t, err.Error(), "authorization code rejected")
		assert.ErrorIs(t, err, cause)
	})

	t.Run("errors.Is matches by type", func(t *testing.T) {
		wrapped := fmt.Errorf("calling api: %w", &AuthRequiredError{Endpoint: endpoint})
		assert.ErrorIs(t, wrapped, &AuthRequiredError{})
		assert.NotErrorIs(t, wrapped, &AuthExpiredError{})
	})
}
