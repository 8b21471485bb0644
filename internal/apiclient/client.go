package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultHTTPTimeout is the default timeout for API requests.
const DefaultHTTPTimeout = 60 * time.Second

// TokenProvider supplies a current, unexpired credential. The credential
// manager satisfies it. The client calls it immediately before every
// outbound request and never caches the result beyond that one call.
type TokenProvider interface {
	OAuth2Token(ctx context.Context) (*oauth2.Token, error)
}

// Client invokes remote operations on the courier API. It is pure
// pass-through plumbing: parameters go out as JSON, results come back as
// raw JSON, and the bearer token is attached verbatim.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures the API client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates an API client for the given base URL.
func NewClient(baseURL string, tokens TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError indicates the remote API answered with a non-success status.
type APIError struct {
	// Status is the HTTP status code.
	Status int

	// Body is the raw response body.
	Body string

	// RequestID is the correlation ID sent with the failed request.
	RequestID string
}

// Error returns the status, body, and correlation ID.
func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed with status %d (request %s): %s", e.Status, e.RequestID, e.Body)
}

// Unauthorized reports whether the server rejected the bearer token.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// Call invokes a named remote operation with the given parameters and
// returns the raw JSON result.
func (c *Client) Call(ctx context.Context, operation string, params map[string]interface{}) (json.RawMessage, error) {
	token, err := c.tokens.OAuth2Token(ctx)
	if err != nil {
		return nil, err
	}

	if params == nil {
		params = map[string]interface{}{}
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode parameters: %w", err)
	}

	endpoint := c.baseURL + "/v1/operations/" + url.PathEscape(operation)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	token.SetAuthHeader(req)

	c.logger.Debug("Calling remote operation",
		"operation", operation,
		"request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("Remote operation failed",
			"operation", operation,
			"request_id", requestID,
			"status", resp.StatusCode)
		return nil, &APIError{Status: resp.StatusCode, Body: string(body), RequestID: requestID}
	}

	return json.RawMessage(body), nil
}
