//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"fmt"
	"strings"
	"time"
)

const dateOnly = "2006-01-02"

// Date wraps time.Time to accept the API's date fields, which arrive
// either as date-only strings or full RFC 3339 timestamps.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{dateOnly, time.RFC3339} {
		t, err := time.Parse(layout, s)
		if err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

// MarshalJSON implements json.Marshaler, emitting date-only form.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateOnly) + `"`), nil
}

// String renders the date-only form, or empty for the zero value.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateOnly)
}
