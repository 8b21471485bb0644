package config

// DefaultRedirectURI is the fixed out-of-band redirect target. It is not
// routable; the authorization server displays the code for manual copy.
const DefaultRedirectURI = "urn:ietf:params:oauth:oob"

// GetDefaultConfig returns the default configuration for courier.
func GetDefaultConfig() Config {
	return Config{
		OAuth: OAuthConfig{
			RedirectURI: DefaultRedirectURI,
		},
		LogLevel: "info",
	}
}
