// Package credential owns the OAuth credential lifecycle for courier:
// obtaining, persisting, validating, and transparently refreshing the
// token pair used to call the courier API.
//
// # Architecture
//
// Two pieces:
//
//   - Store: durable storage of exactly one credential record, as a JSON
//     file under ~/.config/courier (0600 file, 0700 directory). Loading is
//     fail-open: a missing, corrupt, or partially written file reads as
//     "no record", never as an error.
//
//   - Manager: the state machine. Unauthorized -> Authorized (via code
//     exchange) -> expired (lazily, by the clock) -> Authorized again (via
//     refresh) or back to Unauthorized (when the server rejects the refresh,
//     in which case the stored record is destroyed).
//
// The Manager is constructed once per process with an injected store, clock,
// and protocol client. There is no package-level token state; tests use a
// fixed clock and an in-memory store.
//
// # Expiry policy
//
// The stored expiry is computed as issued_at + expires_in - 60s. The fixed
// margin guarantees the token is treated as expired strictly before the
// authorization server invalidates it, so a call never goes out with a token
// that dies mid-flight.
//
// # Consumer contract
//
// Everything that talks to the courier API calls GetValidAccessToken (or
// OAuth2Token) immediately before each outbound request and attaches the
// result verbatim. Consumers must not cache the token beyond a single call.
// Concurrent callers around an expiry boundary are safe: refreshes are
// deduplicated through a single-flight group, so the authorization server
// sees at most one refresh at a time.
package credential
