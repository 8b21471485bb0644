package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type staticTokenProvider struct {
	token *oauth2.Token
	err   error
	calls int
}

func (p *staticTokenProvider) OAuth2Token(ctx context.Context) (*oauth2.Token, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.token, nil
}

func bearerProvider() *staticTokenProvider {
	return &staticTokenProvider{
		token: &oauth2.Token{AccessToken: "A1", TokenType: "Bearer"},
	}
}

func TestClient_Call(t *testing.T) {
	t.Run("attaches bearer token and request id", func(t *testing.T) {
		var gotAuth, gotRequestID, gotPath string
		var gotBody map[string]interface{}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotRequestID = r.Header.Get("X-Request-Id")
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			_, _ = w.Write([]byte(`{"items":[]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, bearerProvider())
		result, err := client.Call(context.Background(), "list-shipments", map[string]interface{}{"limit": 10})
		require.NoError(t, err)

		assert.Equal(t, "Bearer A1", gotAuth)
		assert.Equal(t, "/v1/operations/list-shipments", gotPath)
		assert.Equal(t, float64(10), gotBody["limit"])
		assert.JSONEq(t, `{"items":[]}`, string(result))

		_, err = uuid.Parse(gotRequestID)
		assert.NoError(t, err, "X-Request-Id should be a UUID")
	})

	t.Run("fetches token per call", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		provider := bearerProvider()
		client := NewClient(server.URL, provider)

		for i := 0; i < 3; i++ {
			_, err := client.Call(context.Background(), "ping", nil)
			require.NoError(t, err)
		}
		assert.Equal(t, 3, provider.calls, "token must be fetched once per outbound call")
	})

	t.Run("nil params sent as empty object", func(t *testing.T) {
		var rawBody string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var buf [64]byte
			n, _ := r.Body.Read(buf[:])
			rawBody = string(buf[:n])
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, bearerProvider())
		_, err := client.Call(context.Background(), "ping", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, rawBody)
	})

	t.Run("non-success status yields APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("operation not permitted"))
		}))
		defer server.Close()

		client := NewClient(server.URL, bearerProvider())
		_, err := client.Call(context.Background(), "delete-everything", nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.Status)
		assert.Equal(t, "operation not permitted", apiErr.Body)
		assert.NotEmpty(t, apiErr.RequestID)
		assert.False(t, apiErr.Unauthorized())
	})

	t.Run("401 reported as unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewClient(server.URL, bearerProvider())
		_, err := client.Call(context.Background(), "ping", nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.Unauthorized())
	})

	t.Run("token provider failure propagates without network call", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		wantErr := errors.New("no credentials on file")
		client := NewClient(server.URL, &staticTokenProvider{err: wantErr})

		_, err := client.Call(context.Background(), "ping", nil)
		require.ErrorIs(t, err, wantErr)
		assert.False(t, called, "no request should be made without a token")
	})

	t.Run("escapes operation names", func(t *testing.T) {
		var gotEscapedPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotEscapedPath = r.URL.EscapedPath()
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, bearerProvider())
		_, err := client.Call(context.Background(), "weird/op name", nil)
		require.NoError(t, err)
		assert.Equal(t, "/v1/operations/weird%2Fop%20name", gotEscapedPath)
	})
}
