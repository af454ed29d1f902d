package config

import (
	"strings"
	"time"
)

// APIConfig contains configuration for the remote library API.
type APIConfig struct {
	// BaseURL is the base address of the library API, including the
	// path prefix (e.g., "http://localhost:8080/api").
	BaseURL string `env:"URL" envDefault:"http://localhost:8080/api"`

	// Timeout bounds every HTTP request to the API. The API itself
	// specifies no timeout; this is a client-side guardrail and is
	// fully configurable.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")

	// A zero or negative timeout would disable the request bound entirely.
	if a.Timeout <= 0 {
		a.Timeout = 30 * time.Second
	}
}
