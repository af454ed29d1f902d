package config

import (
	"os"
	"path/filepath"
	"strings"
)

// GoogleConfig contains OAuth/OIDC configuration for Google sign-in.
// The client runs a loopback redirect flow and exchanges the resulting
// ID token at the library API's /auth/google endpoint.
type GoogleConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	// RedirectAddr is the loopback address the browser is sent back to
	// during sign-in.
	RedirectAddr string `env:"REDIRECT_ADDR" envDefault:"127.0.0.1:8971"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	// IssuerURL is the OIDC issuer used for discovery.
	IssuerURL string `env:"ISSUER_URL" envDefault:"https://accounts.google.com"`
}

// Enabled reports whether Google sign-in is configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// AuthConfig groups session-token storage and Google sign-in configuration.
type AuthConfig struct {
	// TokenFile is the path of the file holding the raw session token.
	// Absence of the file means logged out. Defaults to
	// $XDG_CONFIG_HOME/shelfctl/token (or the OS equivalent).
	TokenFile string `env:"SHELF_TOKEN_FILE"`

	// Google configuration for the optional Google sign-in flow.
	Google GoogleConfig `envPrefix:"SHELF_GOOGLE_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.TokenFile = strings.TrimSpace(a.TokenFile)
	if a.TokenFile == "" {
		a.TokenFile = defaultTokenFile()
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		// Last resort: relative to the working directory.
		return filepath.Join(".shelfctl", "token")
	}
	return filepath.Join(dir, "shelfctl", "token")
}
