package config

// Config is the top-level configuration structure for courier.
type Config struct {
	API         APIConfig         `yaml:"api"`
	OAuth       OAuthConfig       `yaml:"oauth"`
	Credentials CredentialsConfig `yaml:"credentials,omitempty"`
	LogLevel    string            `yaml:"logLevel,omitempty"` // debug, info, warn, error (default: info)
}

// APIConfig locates the courier API.
type APIConfig struct {
	BaseURL string `yaml:"baseURL"` // e.g. https://api.courier.example.com
}

// OAuthConfig identifies the authorization server and this client.
type OAuthConfig struct {
	// AuthorizationEndpoint is shown to the operator during login.
	AuthorizationEndpoint string `yaml:"authorizationEndpoint"`

	// TokenEndpoint receives the exchange and refresh grants.
	TokenEndpoint string `yaml:"tokenEndpoint"`

	// ClientID identifies this application.
	ClientID string `yaml:"clientID"`

	// ClientSecret is the client secret, inline. Prefer ClientSecretEnv so
	// the secret stays out of the config file.
	ClientSecret string `yaml:"clientSecret,omitempty"`

	// ClientSecretEnv names an environment variable holding the secret.
	ClientSecretEnv string `yaml:"clientSecretEnv,omitempty"`

	// RedirectURI is the out-of-band redirect target. The default signals
	// "display the code for manual copy" and is never routed to.
	RedirectURI string `yaml:"redirectURI,omitempty"`
}

// CredentialsConfig overrides credential storage.
type CredentialsConfig struct {
	// Path overrides the credential file location
	// (default: ~/.config/courier/credentials.json).
	Path string `yaml:"path,omitempty"`
}
