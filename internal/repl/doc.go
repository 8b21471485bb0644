// Package repl implements the interactive courier shell.
//
// The shell wraps the API client and the credential session behind a
// readline loop with history and tab completion. Its prompt carries an
// AUTH REQUIRED marker whenever no usable credentials are stored, and the
// marker reacts to credential changes made by other processes through the
// credential file watcher.
package repl
