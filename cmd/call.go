package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"courier/internal/apiclient"
	"courier/internal/cli"
)

// callCmd represents the call command
var callCmd = &cobra.Command{
	Use:   "call <operation> [key=value ...]",
	Short: "Invoke an operation on the remote courier API",
	Long: `Invoke a named operation on the configured courier API.

Parameters are passed as key=value pairs; values that parse as JSON are
sent typed, everything else is sent as a string. A valid access token is
attached to the request automatically, refreshing it first when needed.

Examples:
  courier call list-shipments                     # No parameters
  courier call list-shipments limit=10            # Numeric parameter
  courier call create-shipment name=berlin-depot  # String parameter`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringVar(&authConfigPath, "config-path", "", "Configuration directory (default: ~/.config/courier)")
	callCmd.Flags().BoolVarP(&authQuiet, "quiet", "q", false, "Suppress non-essential output")
}

func runCall(cmd *cobra.Command, args []string) error {
	operation := args[0]
	params, err := cli.ParseParams(args[1:])
	if err != nil {
		return err
	}

	manager, _, cfg, err := buildCredentialManager()
	if err != nil {
		return err
	}

	client := apiclient.NewClient(cfg.API.BaseURL, manager)

	var spin *spinner.Spinner
	if !authQuiet {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = fmt.Sprintf(" calling %s...", operation)
		spin.Start()
	}
	result, err := client.Call(cmd.Context(), operation, params)
	if spin != nil {
		spin.Stop()
	}

	if err != nil {
		return mapCallError(err, cfg.API.BaseURL)
	}

	var pretty bytes.Buffer
	if indentErr := json.Indent(&pretty, result, "", "  "); indentErr != nil {
		fmt.Fprintln(cmd.OutOrStdout(), string(result))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return nil
}

// mapCallError translates API call failures into actionable CLI errors. The
// API rejecting a token the credential layer considered valid means the
// server revoked it; the remedy is a fresh login.
func mapCallError(err error, endpoint string) error {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		return &cli.AuthExpiredError{Endpoint: endpoint}
	}
	return mapCredentialError(err, endpoint)
}
