package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"courier/internal/cli"
	"courier/internal/credential"
)

// Exit codes for CLI commands. These follow common conventions so that
// scripts can distinguish "retry after login" from plain failures.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authorization is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the authorization flow itself failed.
	ExitCodeAuthFailed = 3
)

// rootCmd represents the base command for the courier application.
var rootCmd = &cobra.Command{
	Use:   "courier",
	Short: "Call authenticated operations on a remote courier API",
	Long: `courier is a command line client for OAuth-protected courier APIs.

It manages the authorization-code login flow, keeps the resulting
credentials on disk, and refreshes expired access tokens transparently
before each call.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "courier version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var authRequired *cli.AuthRequiredError
	if errors.As(err, &authRequired) {
		return ExitCodeAuthRequired
	}

	var authExpired *cli.AuthExpiredError
	if errors.As(err, &authExpired) {
		return ExitCodeAuthRequired
	}

	// A rejected refresh destroyed the stored credentials; the remedy is the
	// same as for missing credentials.
	var rejected *credential.RefreshRejectedError
	if errors.As(err, &rejected) {
		return ExitCodeAuthRequired
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
