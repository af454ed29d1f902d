package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.API.BaseURL != "http://localhost:8080/api" {
		t.Errorf("unexpected default base URL: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("unexpected default timeout: %v", cfg.API.Timeout)
	}
	if cfg.Output.Format != OutputTable {
		t.Errorf("unexpected default output format: %q", cfg.Output.Format)
	}
	if cfg.Output.PageSize != 10 {
		t.Errorf("unexpected default page size: %d", cfg.Output.PageSize)
	}
	if cfg.Auth.TokenFile == "" {
		t.Error("expected sanitized token file path, got empty")
	}
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SHELF_API_URL", "https://library.example.com/api/")
	t.Setenv("SHELF_API_TIMEOUT", "5s")
	t.Setenv("SHELF_TOKEN_FILE", "/tmp/shelf-token")
	t.Setenv("SHELF_OUTPUT", "json")
	t.Setenv("SHELF_PAGE_SIZE", "25")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.API.BaseURL != "https://library.example.com/api" {
		t.Errorf("trailing slash should be trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.API.Timeout)
	}
	if cfg.Auth.TokenFile != "/tmp/shelf-token" {
		t.Errorf("unexpected token file: %q", cfg.Auth.TokenFile)
	}
	if cfg.Output.Format != OutputJSON {
		t.Errorf("unexpected output format: %q", cfg.Output.Format)
	}
	if cfg.Output.PageSize != 25 {
		t.Errorf("unexpected page size: %d", cfg.Output.PageSize)
	}
}

func TestAPIConfig_SanitizeGuardrails(t *testing.T) {
	a := APIConfig{BaseURL: "  http://api.local/ ", Timeout: -time.Second}
	a.Sanitize()
	if a.BaseURL != "http://api.local" {
		t.Errorf("unexpected base URL after sanitize: %q", a.BaseURL)
	}
	if a.Timeout != 30*time.Second {
		t.Errorf("non-positive timeout should reset to default, got %v", a.Timeout)
	}
}

func TestOutputFormat_UnmarshalText(t *testing.T) {
	tests := []struct {
		input       string
		expected    OutputFormat
		expectError bool
	}{
		{input: "table", expected: OutputTable},
		{input: "JSON", expected: OutputJSON},
		{input: "yaml", expectError: true},
	}
	for _, tt := range tests {
		var f OutputFormat
		err := f.UnmarshalText([]byte(tt.input))
		if tt.expectError {
			if err == nil {
				t.Errorf("%q: expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if f != tt.expected {
			t.Errorf("%q: got %q, want %q", tt.input, f, tt.expected)
		}
	}
}

func TestOutputConfig_SanitizeClampsPageSize(t *testing.T) {
	o := OutputConfig{Format: OutputTable, PageSize: 0}
	o.Sanitize()
	if o.PageSize != 10 {
		t.Errorf("zero page size should reset to default, got %d", o.PageSize)
	}

	o = OutputConfig{Format: OutputTable, PageSize: 500}
	o.Sanitize()
	if o.PageSize != 100 {
		t.Errorf("oversized page size should clamp to 100, got %d", o.PageSize)
	}
}

func TestGoogleConfig_Enabled(t *testing.T) {
	if (GoogleConfig{}).Enabled() {
		t.Error("empty google config should not be enabled")
	}
	g := GoogleConfig{ClientID: "id", ClientSecret: "secret"}
	if !g.Enabled() {
		t.Error("expected enabled google config")
	}
}
