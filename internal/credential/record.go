package credential

import (
	"time"

	"golang.org/x/oauth2"

	"courier/internal/oauth"
)

// ExpiryMargin is subtracted from the server-reported token lifetime when
// computing the stored expiry. The margin guarantees the token is treated as
// expired strictly before the authorization server invalidates it, closing
// the race window where a call is dispatched with a token that expires
// mid-flight. It also absorbs clock skew and network latency.
const ExpiryMargin = 60 * time.Second

// Record is the persisted credential set. A record is either wholly present
// (all four fields populated) or wholly absent; the store treats anything
// in between as absent.
type Record struct {
	// AccessToken is the bearer token attached to API calls.
	AccessToken string `json:"access_token"`

	// RefreshToken mints a new access token without user interaction.
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the absolute instant after which AccessToken must not be
	// used. It already includes the safety margin.
	ExpiresAt time.Time `json:"expires_at"`

	// TokenType is the server-reported token type, passed through unchanged.
	TokenType string `json:"token_type"`
}

// NewRecord builds a record from a token endpoint response issued at the
// given instant. When the response omits a refresh token (rotation is
// optional), the refresh token from prev is retained.
func NewRecord(token *oauth.Token, prev *Record, issuedAt time.Time) *Record {
	record := &Record{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    issuedAt.Add(time.Duration(token.ExpiresIn) * time.Second).Add(-ExpiryMargin),
		TokenType:    token.TokenType,
	}

	if record.RefreshToken == "" && prev != nil {
		record.RefreshToken = prev.RefreshToken
	}

	return record
}

// Expired reports whether the access token must no longer be used as of now.
// ExpiresAt already carries the safety margin, so this is a plain comparison.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// complete reports whether all four fields are populated. The store uses
// this to reject partially written or truncated records on load.
func (r *Record) complete() bool {
	return r.AccessToken != "" &&
		r.RefreshToken != "" &&
		r.TokenType != "" &&
		!r.ExpiresAt.IsZero()
}

// OAuth2Token converts the record to an oauth2.Token so consumers can
// attach it with Token.SetAuthHeader.
func (r *Record) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		Expiry:       r.ExpiresAt,
	}
}
