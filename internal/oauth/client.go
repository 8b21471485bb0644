package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultHTTPTimeout is the default timeout for token endpoint requests.
const DefaultHTTPTimeout = 30 * time.Second

// Endpoints identifies the authorization server.
type Endpoints struct {
	// AuthorizationURL is the authorization endpoint shown to the operator.
	AuthorizationURL string

	// TokenURL is the token endpoint used for exchange and refresh.
	TokenURL string
}

// ClientCredentials identifies this application to the authorization server.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

// Client performs token endpoint operations against one authorization server.
type Client struct {
	endpoints   Endpoints
	credentials ClientCredentials
	redirectURI string
	httpClient  *http.Client
	logger      *slog.Logger
}

// ClientOption configures the OAuth client.
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

// NewClient creates a client for the given authorization server.
func NewClient(endpoints Endpoints, credentials ClientCredentials, redirectURI string, opts ...ClientOption) *Client {
	c := &Client{
		endpoints:   endpoints,
		credentials: credentials,
		redirectURI: redirectURI,
		httpClient:  &http.Client{Timeout: DefaultHTTPTimeout},
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AuthorizationURL constructs the authorization endpoint URL the operator
// opens to obtain a one-time code. It is pure: no network call, no random
// state, the same inputs always yield the same URL.
func (c *Client) AuthorizationURL() (string, error) {
	authURL, err := url.Parse(c.endpoints.AuthorizationURL)
	if err != nil {
		return "", fmt.Errorf("invalid authorization endpoint: %w", err)
	}

	query := authURL.Query()
	query.Set("response_type", "code")
	query.Set("client_id", c.credentials.ClientID)
	query.Set("redirect_uri", c.redirectURI)

	authURL.RawQuery = query.Encode()
	return authURL.String(), nil
}

// Exchange trades a one-time authorization code for a token pair.
func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.redirectURI},
		"client_id":     {c.credentials.ClientID},
		"client_secret": {c.credentials.ClientSecret},
	}

	return c.doTokenRequest(ctx, data)
}

// Refresh obtains a new access token using a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.credentials.ClientID},
		"client_secret": {c.credentials.ClientSecret},
	}

	return c.doTokenRequest(ctx, data)
}

// doTokenRequest performs a token endpoint request.
// SECURITY: Request bodies and token values are never logged.
func (c *Client) doTokenRequest(ctx context.Context, data url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("Token request rejected",
			"grant_type", data.Get("grant_type"),
			"status", resp.StatusCode)
		return nil, &TokenRequestError{Status: resp.StatusCode, Body: string(body)}
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response contained no access token")
	}

	c.logger.Debug("Token request succeeded",
		"grant_type", data.Get("grant_type"),
		"expires_in", token.ExpiresIn,
		"has_refresh_token", token.RefreshToken != "")

	return &token, nil
}
