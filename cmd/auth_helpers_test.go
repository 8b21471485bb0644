package cmd

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"courier/internal/apiclient"
	"courier/internal/cli"
	"courier/internal/credential"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"negative", -time.Minute, "expired"},
		{"seconds", 30 * time.Second, "< 1 minute"},
		{"one minute", 90 * time.Second, "1 minute"},
		{"minutes", 45 * time.Minute, "45 minutes"},
		{"one hour", time.Hour + time.Minute, "1 hour"},
		{"hours", 5 * time.Hour, "5 hours"},
		{"one day", 25 * time.Hour, "1 day"},
		{"days", 72 * time.Hour, "3 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDuration(tt.d); got != tt.want {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatExpiryWithDirection(t *testing.T) {
	t.Run("future expiry", func(t *testing.T) {
		got := formatExpiryWithDirection(time.Now().Add(2 * time.Hour))
		if !strings.HasPrefix(got, "in ") {
			t.Errorf("Expected 'in ...' prefix, got %q", got)
		}
	})

	t.Run("past expiry", func(t *testing.T) {
		got := formatExpiryWithDirection(time.Now().Add(-2 * time.Hour))
		if !strings.Contains(got, "ago") {
			t.Errorf("Expected '... ago' suffix, got %q", got)
		}
	})
}

func TestMapCredentialError(t *testing.T) {
	endpoint := "https://api.courier.example.com"

	t.Run("nil stays nil", func(t *testing.T) {
		if err := mapCredentialError(nil, endpoint); err != nil {
			t.Errorf("Expected nil, got %v", err)
		}
	})

	t.Run("unauthorized becomes auth required", func(t *testing.T) {
		err := mapCredentialError(credential.ErrUnauthorized, endpoint)
		var authErr *cli.AuthRequiredError
		if !errors.As(err, &authErr) {
			t.Fatalf("Expected AuthRequiredError, got %T: %v", err, err)
		}
		if authErr.Endpoint != endpoint {
			t.Errorf("Expected endpoint %q, got %q", endpoint, authErr.Endpoint)
		}
	})

	t.Run("missing refresh token becomes auth required", func(t *testing.T) {
		err := mapCredentialError(credential.ErrNoRefreshToken, endpoint)
		var authErr *cli.AuthRequiredError
		if !errors.As(err, &authErr) {
			t.Fatalf("Expected AuthRequiredError, got %T: %v", err, err)
		}
	})

	t.Run("exchange failure becomes auth failed", func(t *testing.T) {
		err := mapCredentialError(&credential.ExchangeError{Status: 400, Body: "invalid_grant"}, endpoint)
		var failedErr *cli.AuthFailedError
		if !errors.As(err, &failedErr) {
			t.Fatalf("Expected AuthFailedError, got %T: %v", err, err)
		}
	})

	t.Run("network failure becomes connection error", func(t *testing.T) {
		cause := errors.New("dial tcp 10.0.0.1:443: connect: connection refused")
		err := mapCredentialError(&credential.NetworkError{Op: "refresh", Err: cause}, endpoint)
		var connErr *cli.ConnectionError
		if !errors.As(err, &connErr) {
			t.Fatalf("Expected ConnectionError, got %T: %v", err, err)
		}
		if connErr.Type != cli.ConnectionErrorNetwork {
			t.Errorf("Expected network classification, got %v", connErr.Type)
		}
	})

	t.Run("refresh rejection passes through", func(t *testing.T) {
		rejected := &credential.RefreshRejectedError{Status: 400, Body: "invalid_grant"}
		err := mapCredentialError(rejected, endpoint)
		var rejectedErr *credential.RefreshRejectedError
		if !errors.As(err, &rejectedErr) {
			t.Fatalf("Expected RefreshRejectedError to pass through, got %T: %v", err, err)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		cause := errors.New("boom")
		if err := mapCredentialError(cause, endpoint); !errors.Is(err, cause) {
			t.Errorf("Expected %v to pass through, got %v", cause, err)
		}
	})
}

func TestMapCallError(t *testing.T) {
	endpoint := "https://api.courier.example.com"

	t.Run("401 becomes auth expired", func(t *testing.T) {
		err := mapCallError(&apiclient.APIError{Status: http.StatusUnauthorized}, endpoint)
		var expiredErr *cli.AuthExpiredError
		if !errors.As(err, &expiredErr) {
			t.Fatalf("Expected AuthExpiredError, got %T: %v", err, err)
		}
	})

	t.Run("other API errors pass through", func(t *testing.T) {
		apiErr := &apiclient.APIError{Status: http.StatusForbidden, Body: "nope"}
		err := mapCallError(apiErr, endpoint)
		var got *apiclient.APIError
		if !errors.As(err, &got) {
			t.Fatalf("Expected APIError to pass through, got %T: %v", err, err)
		}
	})

	t.Run("credential errors still mapped", func(t *testing.T) {
		err := mapCallError(credential.ErrUnauthorized, endpoint)
		var authErr *cli.AuthRequiredError
		if !errors.As(err, &authErr) {
			t.Fatalf("Expected AuthRequiredError, got %T: %v", err, err)
		}
	})
}
