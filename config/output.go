package config

import (
	"fmt"
	"strings"
)

// OutputFormat represents the rendering mode for command output.
type OutputFormat string

const (
	// OutputTable renders aligned tabular output for humans.
	OutputTable OutputFormat = "table"
	// OutputJSON renders raw JSON, suitable for piping and --query.
	OutputJSON OutputFormat = "json"
)

// UnmarshalText implements encoding.TextUnmarshaler for OutputFormat.
func (o *OutputFormat) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "table", "json":
		*o = OutputFormat(v)
		return nil
	default:
		return fmt.Errorf("invalid OutputFormat: %q (valid options: table, json)", v)
	}
}

// OutputConfig contains terminal output configuration.
type OutputConfig struct {
	// Format selects the default output rendering mode.
	Format OutputFormat `env:"SHELF_OUTPUT" envDefault:"table"`

	// PageSize is the default page size for list screens.
	PageSize int `env:"SHELF_PAGE_SIZE" envDefault:"10"`
}

// Sanitize applies guardrails to output configuration values.
func (o *OutputConfig) Sanitize() {
	if o.Format != OutputTable && o.Format != OutputJSON {
		o.Format = OutputTable
	}
	// Clamp page size to a sane window.
	if o.PageSize < 1 {
		o.PageSize = 10
	}
	if o.PageSize > 100 {
		o.PageSize = 100
	}
}
