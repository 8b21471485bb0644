package cmd

import (
	"github.com/spf13/cobra"

	"courier/internal/apiclient"
	"courier/internal/credential"
	"courier/internal/repl"
)

var shellVerbose bool

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive courier shell",
	Long: `Start an interactive shell for invoking operations on the courier API.

The shell keeps command history, offers tab completion, and shows an
AUTH REQUIRED marker in the prompt when no usable credentials are stored.
Credential changes made by other processes, such as a login or logout in
another terminal, are picked up automatically.

Examples:
  courier shell                        # Start the interactive shell`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringVar(&authConfigPath, "config-path", "", "Configuration directory (default: ~/.config/courier)")
	shellCmd.Flags().BoolVarP(&shellVerbose, "verbose", "v", false, "Show debug output")
}

func runShell(cmd *cobra.Command, args []string) error {
	manager, store, cfg, err := buildCredentialManager()
	if err != nil {
		return err
	}

	client := apiclient.NewClient(cfg.API.BaseURL, manager)
	logger := repl.NewLogger(shellVerbose, true)
	shell := repl.NewREPL(client, manager, logger, cfg.API.BaseURL)

	// Another process replacing or removing the credential file invalidates
	// the cached record, so the next call re-reads from disk.
	watcher := credential.NewWatcher(credential.WatcherConfig{
		Path: store.Path(),
		OnChange: func() {
			manager.Invalidate()
			shell.RefreshAuthState()
		},
	})
	if err := watcher.Start(); err != nil {
		logger.Debug("Credential watcher unavailable: %v", err)
	} else {
		defer watcher.Stop()
	}

	return shell.Run(cmd.Context())
}
