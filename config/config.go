package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: remote API endpoint configuration
//   - auth.go: token storage and Google sign-in configuration
//   - output.go: terminal output configuration
type AppConfig struct {
	// IsDev controls development mode behavior (debug logging, relaxed
	// guardrails). Set DEV=true for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Remote API configuration
	API APIConfig `envPrefix:"SHELF_API_"`

	// Token storage and Google sign-in configuration
	Auth AuthConfig

	// Terminal output configuration
	Output OutputConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Auth.Sanitize()
	c.Output.Sanitize()

	c.detectDevMode()
}

// detectDevMode checks both DEV and SHELF_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		shelfEnv := strings.ToLower(os.Getenv("SHELF_ENV"))
		c.IsDev = shelfEnv == "development" || shelfEnv == "dev"
	}
}
