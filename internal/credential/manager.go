package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"courier/internal/oauth"
)

// TokenClient is the protocol client used for exchange and refresh.
// internal/oauth.Client satisfies it; tests substitute fakes.
type TokenClient interface {
	AuthorizationURL() (string, error)
	Exchange(ctx context.Context, code string) (*oauth.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth.Token, error)
}

// CodePrompt obtains a one-time authorization code from the operator, given
// the authorization URL to display. The default CLI prompt reads a single
// line from stdin; tests inject a function returning a canned code.
type CodePrompt func(ctx context.Context, authURL string) (string, error)

// Manager owns the credential lifecycle: code exchange, persistence, expiry
// tracking, refresh-before-use, and recovery when a refresh is rejected.
// One Manager instance exclusively owns the store for the process.
type Manager struct {
	store  Store
	tokens TokenClient
	now    func() time.Time
	prompt CodePrompt

	mu     sync.Mutex
	record *Record
	loaded bool

	// refreshGroup deduplicates concurrent refreshes so the authorization
	// server sees at most one in-flight refresh. Some servers rotate
	// refresh tokens, making the loser of a refresh race unrecoverable.
	refreshGroup singleflight.Group
}

// ManagerOption configures the manager.
type ManagerOption func(*Manager)

// WithClock sets the time source. Tests use a fixed clock.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithCodePrompt sets the interactive authorization code prompt.
func WithCodePrompt(prompt CodePrompt) ManagerOption {
	return func(m *Manager) {
		m.prompt = prompt
	}
}

// NewManager creates a credential manager over the given store and protocol
// client.
func NewManager(store Store, tokens TokenClient, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		tokens: tokens,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// current returns the cached record, loading it from the store on first
// use. Callers must hold m.mu.
func (m *Manager) current() *Record {
	if !m.loaded {
		m.record = m.store.Load()
		m.loaded = true
	}
	return m.record
}

// AuthorizationURL returns the authorization endpoint URL the operator
// opens to obtain a one-time code. Pure; no network call, no side effects.
func (m *Manager) AuthorizationURL() (string, error) {
	return m.tokens.AuthorizationURL()
}

// HasValidCredentials reports whether a credential record is on file. The
// record may be expired; presence means an automatic refresh is possible.
func (m *Manager) HasValidCredentials() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current() != nil
}

// ExchangeAuthorizationCode trades a one-time authorization code for a
// token pair and persists it. On failure nothing is persisted and the
// manager stays Unauthorized.
func (m *Manager) ExchangeAuthorizationCode(ctx context.Context, code string) error {
	token, err := m.tokens.Exchange(ctx, code)
	if err != nil {
		var reqErr *oauth.TokenRequestError
		if errors.As(err, &reqErr) {
			return &ExchangeError{Status: reqErr.Status, Body: reqErr.Body}
		}
		var transportErr *oauth.TransportError
		if errors.As(err, &transportErr) {
			return &NetworkError{Op: "exchange", Err: transportErr.Err}
		}
		return err
	}

	record := NewRecord(token, nil, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(record); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}
	m.record = record
	m.loaded = true

	slog.Debug("Authorization code exchanged",
		"expires_at", record.ExpiresAt)

	return nil
}

// Refresh mints a new access token using the stored refresh token. When the
// server omits a rotated refresh token the previous one is retained. When
// the server rejects the refresh, the stored record is destroyed and
// RefreshRejectedError is returned: a rejected refresh token is assumed
// revoked, not transient, and the operator must re-authorize interactively.
// Transport failures return NetworkError and leave the record intact.
func (m *Manager) Refresh(ctx context.Context) error {
	_, err := m.refresh(ctx)
	return err
}

// refresh performs the refresh through the single-flight group and returns
// the resulting record.
func (m *Manager) refresh(ctx context.Context) (*Record, error) {
	result, err, _ := m.refreshGroup.Do("refresh", func() (interface{}, error) {
		m.mu.Lock()
		record := m.current()
		if record == nil || record.RefreshToken == "" {
			m.mu.Unlock()
			return nil, ErrNoRefreshToken
		}
		// Another caller may have completed a refresh while this one was
		// queued on the group; if the record is already fresh, reuse it.
		if !record.Expired(m.now()) {
			m.mu.Unlock()
			return record, nil
		}
		refreshToken := record.RefreshToken
		m.mu.Unlock()

		token, err := m.tokens.Refresh(ctx, refreshToken)
		if err != nil {
			return nil, m.handleRefreshError(err)
		}

		m.mu.Lock()
		defer m.mu.Unlock()

		newRecord := NewRecord(token, record, m.now())
		if err := m.store.Save(newRecord); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed credentials: %w", err)
		}
		m.record = newRecord

		slog.Debug("Access token refreshed",
			"expires_at", newRecord.ExpiresAt,
			"refresh_token_rotated", token.RefreshToken != "")

		return newRecord, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Record), nil
}

// handleRefreshError maps a protocol error to the credential taxonomy,
// destroying the stored record when the server explicitly rejected the
// refresh token.
func (m *Manager) handleRefreshError(err error) error {
	var reqErr *oauth.TokenRequestError
	if errors.As(err, &reqErr) {
		m.mu.Lock()
		m.record = nil
		m.loaded = true
		clearErr := m.store.Clear()
		m.mu.Unlock()

		if clearErr != nil {
			slog.Warn("Failed to clear credentials after refresh rejection",
				"error", clearErr.Error())
		}

		// SECURITY AUDIT: refresh token rejected, local credentials destroyed.
		slog.Info("SECURITY_AUDIT: refresh rejected, credentials destroyed",
			"event", "refresh_rejected",
			"status", reqErr.Status)

		return &RefreshRejectedError{Status: reqErr.Status, Body: reqErr.Body}
	}

	var transportErr *oauth.TransportError
	if errors.As(err, &transportErr) {
		return &NetworkError{Op: "refresh", Err: transportErr.Err}
	}

	return err
}

// validRecord returns the current record, refreshing first when expired.
func (m *Manager) validRecord(ctx context.Context) (*Record, error) {
	m.mu.Lock()
	record := m.current()
	if record == nil {
		m.mu.Unlock()
		return nil, ErrUnauthorized
	}
	if !record.Expired(m.now()) {
		m.mu.Unlock()
		return record, nil
	}
	m.mu.Unlock()

	return m.refresh(ctx)
}

// GetValidAccessToken is the single entry point used before each outbound
// API call. It returns a current, unexpired access token, refreshing
// transparently when the stored one has expired. A valid record costs zero
// network calls.
func (m *Manager) GetValidAccessToken(ctx context.Context) (string, error) {
	record, err := m.validRecord(ctx)
	if err != nil {
		return "", err
	}
	return record.AccessToken, nil
}

// OAuth2Token returns a current, unexpired credential as an oauth2.Token
// for attachment via Token.SetAuthHeader.
func (m *Manager) OAuth2Token(ctx context.Context) (*oauth2.Token, error) {
	record, err := m.validRecord(ctx)
	if err != nil {
		return nil, err
	}
	return record.OAuth2Token(), nil
}

// RunInteractiveAuthorization orchestrates the Unauthorized -> Authorized
// transition end to end: emit the authorization URL, wait for the operator
// to paste the one-time code, then exchange it. The wait has no timeout of
// its own but honors context cancellation.
func (m *Manager) RunInteractiveAuthorization(ctx context.Context) error {
	if m.prompt == nil {
		return errors.New("no authorization code prompt configured")
	}

	authURL, err := m.AuthorizationURL()
	if err != nil {
		return err
	}

	code, err := m.prompt(ctx, authURL)
	if err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("empty authorization code")
	}

	return m.ExchangeAuthorizationCode(ctx, code)
}

// Logout destroys the stored record and returns the manager to
// Unauthorized.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record = nil
	m.loaded = true
	return m.store.Clear()
}

// Invalidate drops the in-memory record so the next access re-reads the
// store. The credential watcher calls this when another process (such as a
// separate 'courier auth login') rewrites the file.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record = nil
	m.loaded = false
}

// Status is a non-network snapshot of the manager state for display.
type Status struct {
	// Authenticated reports whether a record is on file.
	Authenticated bool

	// Expired reports whether the on-file access token has passed its
	// (margin-adjusted) expiry.
	Expired bool

	// ExpiresAt is the stored expiry instant.
	ExpiresAt time.Time

	// HasRefreshToken reports whether an automatic refresh is possible.
	HasRefreshToken bool

	// TokenType is the stored token type.
	TokenType string
}

// Status returns a snapshot of the current credential state without any
// network calls.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := m.current()
	if record == nil {
		return Status{}
	}

	return Status{
		Authenticated:   true,
		Expired:         record.Expired(m.now()),
		ExpiresAt:       record.ExpiresAt,
		HasRefreshToken: record.RefreshToken != "",
		TokenType:       record.TokenType,
	}
}
