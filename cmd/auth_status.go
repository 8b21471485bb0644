package cmd

import (
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"courier/internal/credential"
)

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored credential state",
	Long: `Show the current authorization status.

This command displays whether credentials are stored, when the access
token expires, and whether a refresh token is available. It never
contacts the network.

Examples:
  courier auth status                  # Show authorization status`,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	manager, _, cfg, err := buildCredentialManager()
	if err != nil {
		return err
	}

	authPrintln("Courier API")
	authPrint("  Endpoint:  %s\n", cfg.API.BaseURL)

	printCredentialStatus(manager.Status())
	return nil
}

// printCredentialStatus renders the credential state with the same layout
// regardless of which state we are in, so scripted greps stay stable.
func printCredentialStatus(status credential.Status) {
	if !status.Authenticated {
		authPrint("  Status:    %s\n", text.FgYellow.Sprint("Not authorized"))
		authPrintln()
		authPrintln("To authorize, run:")
		authPrintln("  courier auth login")
		return
	}

	if status.Expired {
		authPrint("  Status:    %s\n", text.FgYellow.Sprint("Access token expired"))
	} else {
		authPrint("  Status:    %s\n", text.FgGreen.Sprint("Authorized"))
	}

	if !status.ExpiresAt.IsZero() {
		authPrint("  Expires:   %s\n", formatExpiryWithDirection(status.ExpiresAt))
	}
	if status.TokenType != "" {
		authPrint("  Type:      %s\n", status.TokenType)
	}
	if status.HasRefreshToken {
		authPrint("  Refresh:   %s\n", text.FgGreen.Sprint("Available"))
		if status.Expired {
			authPrintln()
			authPrintln("The access token will be refreshed on the next call.")
		}
	} else {
		authPrint("  Refresh:   %s\n", text.FgYellow.Sprint("Not available"))
		if status.Expired {
			authPrintln()
			authPrintln("To re-authorize, run:")
			authPrintln("  courier auth login")
		}
	}
}
