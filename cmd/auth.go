package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	authConfigPath string
	authQuiet      bool
)

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authorization for courier",
	Long: `Manage authorization for courier CLI commands.

The auth command group provides subcommands to login, logout, check status,
and refresh the stored access token for the configured courier API.

Examples:
  courier auth login                   # Run the authorization-code login flow
  courier auth status                  # Show the stored credential state
  courier auth refresh                 # Force an access token refresh
  courier auth logout                  # Remove stored credentials`,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	Long: `Remove the stored credential record.

After logout the next call requires a fresh 'courier auth login'.

Examples:
  courier auth logout                  # Remove credentials after confirmation
  courier auth logout --yes            # Remove credentials without confirmation`,
	RunE: runAuthLogout,
}

// authRefreshCmd represents the auth refresh command
var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force an access token refresh",
	Long: `Force a refresh of the stored access token.

The access token is normally refreshed transparently before each call;
this command is useful when diagnosing authorization issues. A rejected
refresh removes the stored credentials.`,
	RunE: runAuthRefresh,
}

var logoutYes bool

// authPrint prints output only if the --quiet flag is not set.
func authPrint(format string, args ...interface{}) {
	if !authQuiet {
		fmt.Printf(format, args...)
	}
}

// authPrintln prints a line only if the --quiet flag is not set.
func authPrintln(a ...interface{}) {
	if !authQuiet {
		fmt.Println(a...)
	}
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRefreshCmd)

	authCmd.PersistentFlags().StringVar(&authConfigPath, "config-path", "", "Configuration directory (default: ~/.config/courier)")
	authCmd.PersistentFlags().BoolVarP(&authQuiet, "quiet", "q", false, "Suppress non-essential output")

	authLogoutCmd.Flags().BoolVarP(&logoutYes, "yes", "y", false, "Skip confirmation prompt")
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	manager, _, _, err := buildCredentialManager()
	if err != nil {
		return err
	}

	status := manager.Status()
	if !status.Authenticated {
		authPrintln("No stored credentials to remove.")
		return nil
	}

	if !logoutYes {
		fmt.Print("Remove stored credentials? [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := manager.Logout(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	authPrintln("Credentials removed.")
	return nil
}

func runAuthRefresh(cmd *cobra.Command, args []string) error {
	manager, _, cfg, err := buildCredentialManager()
	if err != nil {
		return err
	}

	authPrint("Refreshing access token for %s...\n", cfg.API.BaseURL)
	if err := manager.Refresh(cmd.Context()); err != nil {
		return mapCredentialError(err, cfg.API.BaseURL)
	}

	authPrintln("Access token refreshed.")
	return nil
}
