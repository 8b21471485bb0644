package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"courier/internal/cli"
	"courier/internal/config"
	"courier/internal/credential"
	"courier/internal/oauth"
	"courier/pkg/logging"
)

// loadValidatedConfig loads the configuration, initializes logging from it,
// and checks that everything needed to reach the API is present.
func loadValidatedConfig() (config.Config, error) {
	configPath := authConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return config.Config{}, err
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	logging.Init(logging.ParseLevel(cfg.LogLevel), os.Stderr)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildCredentialManager wires the credential manager from configuration:
// file store, token endpoint client, and the interactive code prompt. The
// store is returned alongside the manager so the shell can watch its path.
func buildCredentialManager() (*credential.Manager, *credential.FileStore, config.Config, error) {
	cfg, err := loadValidatedConfig()
	if err != nil {
		return nil, nil, config.Config{}, err
	}

	secret, err := cfg.OAuth.ResolveClientSecret()
	if err != nil {
		return nil, nil, config.Config{}, err
	}

	storePath := cfg.Credentials.Path
	if storePath == "" {
		storePath, err = credential.DefaultCredentialsPath()
		if err != nil {
			return nil, nil, config.Config{}, err
		}
	}

	store, err := credential.NewFileStore(storePath)
	if err != nil {
		return nil, nil, config.Config{}, err
	}

	tokens := oauth.NewClient(
		oauth.Endpoints{
			AuthorizationURL: cfg.OAuth.AuthorizationEndpoint,
			TokenURL:         cfg.OAuth.TokenEndpoint,
		},
		oauth.ClientCredentials{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: secret,
		},
		cfg.OAuth.RedirectURI,
	)

	manager := credential.NewManager(store, tokens, credential.WithCodePrompt(promptForCode))
	return manager, store, cfg, nil
}

// promptForCode displays the authorization URL and reads the code the
// operator copies back from the authorization server. Reading happens in a
// goroutine so a cancelled context aborts the wait; there is no timeout, the
// operator may take as long as they need.
func promptForCode(ctx context.Context, authURL string) (string, error) {
	fmt.Println("Open the following URL in your browser and approve the request:")
	fmt.Println()
	fmt.Printf("  %s\n", authURL)
	fmt.Println()
	fmt.Print("Enter the authorization code shown after approval: ")

	type readResult struct {
		line string
		err  error
	}
	resultCh := make(chan readResult, 1)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		resultCh <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case result := <-resultCh:
		if result.err != nil {
			return "", fmt.Errorf("failed to read authorization code: %w", result.err)
		}
		return strings.TrimSpace(result.line), nil
	}
}

// mapCredentialError translates credential layer errors into the actionable
// CLI error types. A rejected refresh passes through unchanged, its message
// already names the remedy and the stored credentials are gone.
func mapCredentialError(err error, endpoint string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, credential.ErrUnauthorized) || errors.Is(err, credential.ErrNoRefreshToken) {
		return &cli.AuthRequiredError{Endpoint: endpoint}
	}

	var exchangeErr *credential.ExchangeError
	if errors.As(err, &exchangeErr) {
		return &cli.AuthFailedError{Endpoint: endpoint, Reason: err}
	}

	var netErr *credential.NetworkError
	if errors.As(err, &netErr) {
		return cli.ClassifyConnectionError(err, endpoint)
	}

	return err
}

// formatDuration renders a duration in coarse human units.
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "expired"
	}
	if d < time.Minute {
		return "< 1 minute"
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// formatExpiryWithDirection formats a time as "in X" or "expired X ago".
func formatExpiryWithDirection(expiresAt time.Time) string {
	remaining := time.Until(expiresAt)
	if remaining > 0 {
		return "in " + formatDuration(remaining)
	}
	expiredAgo := -remaining
	return text.FgYellow.Sprintf("expired %s ago", formatDuration(expiredAgo))
}
