// Package oauth implements the OAuth 2.0 protocol operations courier needs:
// building the authorization URL, exchanging an authorization code for a
// token pair, and refreshing an access token.
//
// The package only speaks the wire protocol. Persistence, expiry policy,
// and recovery from rejected refreshes live in internal/credential.
//
// # Token endpoint
//
// Both grants are form-encoded POSTs to the configured token endpoint:
//
//	grant_type=authorization_code  code, redirect_uri, client_id, client_secret
//	grant_type=refresh_token       refresh_token, client_id, client_secret
//
// The response shape is the same for both:
//
//	{access_token, refresh_token, expires_in, token_type}
//
// A non-2xx status is returned as *TokenRequestError carrying the status and
// verbatim body. A transport failure (timeout, connection reset, DNS) is
// returned as *TransportError. Callers rely on this distinction: a rejected
// grant is terminal, a transport failure is retryable.
package oauth
