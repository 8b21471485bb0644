// Package logging provides the shared logging setup for courier.
//
// It is a thin wrapper around log/slog that adds a subsystem tag to every
// entry and printf-style formatting. Packages that want structured key/value
// logging use log/slog directly; this package exists for call sites that
// want one-line progress or diagnostic messages keyed by subsystem.
//
// Init must be called once at startup (cmd/root.go does this) before any
// subsystem logs. Messages logged before Init are dropped.
package logging
