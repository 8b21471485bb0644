package cmd

import (
	"github.com/spf13/cobra"
)

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize courier against the configured API",
	Long: `Authorize courier using the OAuth authorization-code flow.

The command prints the authorization URL for the configured authorization
server. Open it in a browser, approve the request, and paste the displayed
code back into the terminal. The resulting credentials are stored on disk
and refreshed transparently from then on.

Examples:
  courier auth login                   # Login to the configured API
  courier auth login -q                # Login without progress output`,
	RunE: runAuthLogin,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	manager, _, cfg, err := buildCredentialManager()
	if err != nil {
		return err
	}

	if err := manager.RunInteractiveAuthorization(cmd.Context()); err != nil {
		return mapCredentialError(err, cfg.API.BaseURL)
	}

	status := manager.Status()
	authPrintln()
	authPrint("Authorized. Access token valid %s.\n", formatExpiryWithDirection(status.ExpiresAt))
	return nil
}
