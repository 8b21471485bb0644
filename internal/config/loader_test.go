package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0600))
}

func validConfigYAML() string {
	return `
api:
  baseURL: https://api.courier.example.com
oauth:
  authorizationEndpoint: https://auth.courier.example.com/authorize
  tokenEndpoint: https://auth.courier.example.com/token
  clientID: courier-cli
  clientSecret: hunter2
`
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, DefaultRedirectURI, cfg.OAuth.RedirectURI)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Empty(t, cfg.API.BaseURL)
	})

	t.Run("loads values from file", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, validConfigYAML())

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, "https://api.courier.example.com", cfg.API.BaseURL)
		assert.Equal(t, "https://auth.courier.example.com/token", cfg.OAuth.TokenEndpoint)
		assert.Equal(t, "courier-cli", cfg.OAuth.ClientID)
		assert.Equal(t, DefaultRedirectURI, cfg.OAuth.RedirectURI)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `
logLevel: debug
oauth:
  redirectURI: urn:example:custom-oob
`)

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "urn:example:custom-oob", cfg.OAuth.RedirectURI)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "api: [not: valid")

		_, err := LoadConfig(dir)
		require.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		return Config{
			API: APIConfig{BaseURL: "https://api.courier.example.com"},
			OAuth: OAuthConfig{
				AuthorizationEndpoint: "https://auth.courier.example.com/authorize",
				TokenEndpoint:         "https://auth.courier.example.com/token",
				ClientID:              "courier-cli",
				ClientSecret:          "hunter2",
				RedirectURI:           DefaultRedirectURI,
			},
		}
	}

	t.Run("complete config validates", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing base URL", func(t *testing.T) {
		cfg := base()
		cfg.API.BaseURL = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api.baseURL")
	})

	t.Run("missing client id", func(t *testing.T) {
		cfg := base()
		cfg.OAuth.ClientID = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oauth.clientID")
	})

	t.Run("secret env satisfies the secret requirement", func(t *testing.T) {
		cfg := base()
		cfg.OAuth.ClientSecret = ""
		cfg.OAuth.ClientSecretEnv = "COURIER_CLIENT_SECRET"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing secret entirely", func(t *testing.T) {
		cfg := base()
		cfg.OAuth.ClientSecret = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "clientSecret")
	})
}

func TestOAuthConfig_ResolveClientSecret(t *testing.T) {
	t.Run("inline secret wins", func(t *testing.T) {
		o := OAuthConfig{ClientSecret: "inline", ClientSecretEnv: "COURIER_TEST_SECRET"}
		secret, err := o.ResolveClientSecret()
		require.NoError(t, err)
		assert.Equal(t, "inline", secret)
	})

	t.Run("env var secret", func(t *testing.T) {
		t.Setenv("COURIER_TEST_SECRET", "  from-env\n")
		o := OAuthConfig{ClientSecretEnv: "COURIER_TEST_SECRET"}
		secret, err := o.ResolveClientSecret()
		require.NoError(t, err)
		assert.Equal(t, "from-env", secret)
	})

	t.Run("unset env var is an error", func(t *testing.T) {
		o := OAuthConfig{ClientSecretEnv: "COURIER_TEST_SECRET_UNSET"}
		_, err := o.ResolveClientSecret()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "COURIER_TEST_SECRET_UNSET")
	})

	t.Run("nothing configured is an error", func(t *testing.T) {
		_, err := OAuthConfig{}.ResolveClientSecret()
		require.Error(t, err)
	})
}
