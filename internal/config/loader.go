package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"courier/pkg/logging"
)

const (
	userConfigDir  = ".config/courier"
	configFileName = "config.yaml"
)

// GetDefaultConfigPath returns the default configuration directory under the
// user's home directory.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads configuration from the specified directory. The directory
// should contain config.yaml; a missing file yields the defaults.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	if config.OAuth.RedirectURI == "" {
		config.OAuth.RedirectURI = DefaultRedirectURI
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// Validate checks that all fields required to reach the API and the
// authorization server are present.
func (c Config) Validate() error {
	var missing []string
	if c.API.BaseURL == "" {
		missing = append(missing, "api.baseURL")
	}
	if c.OAuth.AuthorizationEndpoint == "" {
		missing = append(missing, "oauth.authorizationEndpoint")
	}
	if c.OAuth.TokenEndpoint == "" {
		missing = append(missing, "oauth.tokenEndpoint")
	}
	if c.OAuth.ClientID == "" {
		missing = append(missing, "oauth.clientID")
	}
	if c.OAuth.ClientSecret == "" && c.OAuth.ClientSecretEnv == "" {
		missing = append(missing, "oauth.clientSecret (or oauth.clientSecretEnv)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ResolveClientSecret returns the client secret, preferring the inline value
// over the environment variable indirection.
func (o OAuthConfig) ResolveClientSecret() (string, error) {
	if o.ClientSecret != "" {
		return o.ClientSecret, nil
	}
	if o.ClientSecretEnv != "" {
		value := strings.TrimSpace(os.Getenv(o.ClientSecretEnv))
		if value == "" {
			return "", fmt.Errorf("client secret env var not set: %s", o.ClientSecretEnv)
		}
		return value, nil
	}
	return "", errors.New("no client secret configured")
}
