// Package apiclient is the request-dispatch layer for the courier API.
//
// It owns none of the credential lifecycle: before each outbound call it
// asks the injected TokenProvider (the credential manager) for a current
// token and attaches it as an Authorization: Bearer header. Operation names
// and parameter shapes are opaque to this package; it ships JSON out and
// hands raw JSON back.
package apiclient
