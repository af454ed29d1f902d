package validation

import (
	"regexp"
	"testing"
)

const errNameRequired = "Name is required."

func TestRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		maxLen    int
		value     string
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "valid input",
			fieldName: "Name",
			maxLen:    10,
			value:     "valid",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "Name",
			maxLen:    10,
			value:     "",
			wantErr:   true,
			errMsg:    errNameRequired,
		},
		{
			name:      "whitespace only",
			fieldName: "Name",
			maxLen:    10,
			value:     "   ",
			wantErr:   true,
			errMsg:    errNameRequired,
		},
		{
			name:      "exceeds max length",
			fieldName: "Name",
			maxLen:    5,
			value:     "toolong",
			wantErr:   true,
			errMsg:    "Name cannot exceed 5 characters.",
		},
		{
			name:      "exactly max length",
			fieldName: "Name",
			maxLen:    5,
			value:     "exact",
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Required(tt.fieldName, tt.maxLen)
			err := v(tt.value)
			if tt.wantErr && err == "" {
				t.Errorf("Required() expected error but got none")
			}
			if !tt.wantErr && err != "" {
				t.Errorf("Required() unexpected error: %v", err)
			}
			if tt.wantErr && err != tt.errMsg {
				t.Errorf("Required() error = %v, want %v", err, tt.errMsg)
			}
		})
	}
}

func TestRequiredRange(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		min       int
		max       int
		value     string
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "valid input",
			fieldName: "Name",
			min:       3,
			max:       10,
			value:     "valid",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "Name",
			min:       3,
			max:       10,
			value:     "",
			wantErr:   true,
			errMsg:    errNameRequired,
		},
		{
			name:      "too short",
			fieldName: "Name",
			min:       5,
			max:       10,
			value:     "ab",
			wantErr:   true,
			errMsg:    "Name must be between 5 and 10 characters.",
		},
		{
			name:      "too long",
			fieldName: "Name",
			min:       3,
			max:       5,
			value:     "toolong",
			wantErr:   true,
			errMsg:    "Name must be between 3 and 5 characters.",
		},
		{
			name:      "exactly min length",
			fieldName: "Name",
			min:       3,
			max:       10,
			value:     "abc",
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := RequiredRange(tt.fieldName, tt.min, tt.max)
			err := v(tt.value)
			if tt.wantErr && err == "" {
				t.Errorf("RequiredRange() expected error but got none")
			}
			if !tt.wantErr && err != "" {
				t.Errorf("RequiredRange() unexpected error: %v", err)
			}
			if tt.wantErr && err != tt.errMsg {
				t.Errorf("RequiredRange() error = %v, want %v", err, tt.errMsg)
			}
		})
	}
}

func TestMinLength(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr string
	}{
		{name: "long enough", value: "secret123", wantErr: ""},
		{name: "exactly minimum", value: "123456", wantErr: ""},
		{name: "too short", value: "12345", wantErr: "Password must be at least 6 characters."},
		{name: "empty", value: "", wantErr: "Password is required."},
		{name: "whitespace counts", value: "      ", wantErr: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinLength("Password", 6)(tt.value); got != tt.wantErr {
				t.Errorf("MinLength() = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestIntRange(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		min       int
		max       int
		value     string
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "valid integer",
			fieldName: "Copies",
			min:       1,
			max:       100,
			value:     "50",
			wantErr:   false,
		},
		{
			name:      "below minimum",
			fieldName: "Copies",
			min:       10,
			max:       100,
			value:     "5",
			wantErr:   true,
			errMsg:    "Copies must be between 10 and 100.",
		},
		{
			name:      "above maximum",
			fieldName: "Copies",
			min:       1,
			max:       10,
			value:     "20",
			wantErr:   true,
			errMsg:    "Copies must be between 1 and 10.",
		},
		{
			name:      "not a number",
			fieldName: "Copies",
			min:       1,
			max:       100,
			value:     "abc",
			wantErr:   true,
			errMsg:    "Copies must be a number.",
		},
		{
			name:      "empty string",
			fieldName: "Copies",
			min:       1,
			max:       100,
			value:     "",
			wantErr:   true,
			errMsg:    "Copies must be a number.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := IntRange(tt.fieldName, tt.min, tt.max)
			err := v(tt.value)
			if tt.wantErr && err == "" {
				t.Errorf("IntRange() expected error but got none")
			}
			if !tt.wantErr && err != "" {
				t.Errorf("IntRange() unexpected error: %v", err)
			}
			if tt.wantErr && err != tt.errMsg {
				t.Errorf("IntRange() error = %v, want %v", err, tt.errMsg)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr string
	}{
		{name: "valid address", value: "reader@library.org", wantErr: ""},
		{name: "subdomain", value: "a@mail.example.co.uk", wantErr: ""},
		{name: "trims whitespace", value: "  a@b.com  ", wantErr: ""},
		{name: "empty", value: "", wantErr: "Email is required."},
		{name: "missing at", value: "reader.library.org", wantErr: "Enter a valid email address."},
		{name: "missing domain dot", value: "reader@library", wantErr: "Enter a valid email address."},
		{name: "spaces inside", value: "read er@library.org", wantErr: "Enter a valid email address."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Email("Email")(tt.value); got != tt.wantErr {
				t.Errorf("Email() = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestOneOf(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		options   []string
		value     string
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "valid option exact case",
			fieldName: "Status",
			options:   []string{"BORROWED", "RETURNED"},
			value:     "BORROWED",
			wantErr:   false,
		},
		{
			name:      "valid option different case",
			fieldName: "Status",
			options:   []string{"BORROWED", "RETURNED"},
			value:     "returned",
			wantErr:   false,
		},
		{
			name:      "invalid option",
			fieldName: "Status",
			options:   []string{"BORROWED", "RETURNED"},
			value:     "LOST",
			wantErr:   true,
			errMsg:    "Status must be one of: BORROWED, RETURNED",
		},
		{
			name:      "empty string",
			fieldName: "Status",
			options:   []string{"BORROWED", "RETURNED"},
			value:     "",
			wantErr:   true,
			errMsg:    "Status must be one of: BORROWED, RETURNED",
		},
		{
			name:      "whitespace trimmed",
			fieldName: "Status",
			options:   []string{"BORROWED", "RETURNED"},
			value:     "  RETURNED  ",
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := OneOf(tt.fieldName, tt.options)
			err := v(tt.value)
			if tt.wantErr && err == "" {
				t.Errorf("OneOf() expected error but got none")
			}
			if !tt.wantErr && err != "" {
				t.Errorf("OneOf() unexpected error: %v", err)
			}
			if tt.wantErr && err != tt.errMsg {
				t.Errorf("OneOf() error = %v, want %v", err, tt.errMsg)
			}
		})
	}
}

func TestPattern(t *testing.T) {
	isbnRe := regexp.MustCompile(`^[0-9Xx-]+$`)

	tests := []struct {
		name      string
		fieldName string
		re        *regexp.Regexp
		value     string
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "matches pattern",
			fieldName: "ISBN",
			re:        isbnRe,
			value:     "978-0-452-28423-4",
			wantErr:   false,
		},
		{
			name:      "does not match pattern",
			fieldName: "ISBN",
			re:        isbnRe,
			value:     "abc",
			wantErr:   true,
			errMsg:    "ISBN has an invalid format.",
		},
		{
			name:      "empty string allowed",
			fieldName: "ISBN",
			re:        isbnRe,
			value:     "",
			wantErr:   false,
		},
		{
			name:      "whitespace trimmed before validation",
			fieldName: "ISBN",
			re:        isbnRe,
			value:     "  0452284236  ",
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Pattern(tt.fieldName, tt.re)
			err := v(tt.value)
			if tt.wantErr && err == "" {
				t.Errorf("Pattern() expected error but got none")
			}
			if !tt.wantErr && err != "" {
				t.Errorf("Pattern() unexpected error: %v", err)
			}
			if tt.wantErr && err != tt.errMsg {
				t.Errorf("Pattern() error = %v, want %v", err, tt.errMsg)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	if got := Match("Confirm password", "hunter2")("hunter2"); got != "" {
		t.Errorf("Match() unexpected error: %v", got)
	}
	if got := Match("Confirm password", "hunter2")("hunter3"); got != "Confirm password does not match." {
		t.Errorf("Match() = %q", got)
	}
	// No trimming: a stray space is a mismatch.
	if got := Match("Confirm password", "hunter2")("hunter2 "); got == "" {
		t.Error("Match() expected error for trailing space")
	}
}

func TestFieldValidator_MultipleFieldsWithErrors(t *testing.T) {
	fv := New().
		Validate("name", "", Required("Name", 10)).
		Validate("copies", "100", IntRange("Copies", 1, 10))
	errs := fv.Errors()
	if len(errs) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(errs))
	}
	if errs["name"] != errNameRequired {
		t.Errorf("Expected %q, got %v", errNameRequired, errs["name"])
	}
	if errs["copies"] != "Copies must be between 1 and 10." {
		t.Errorf("Expected 'Copies must be between 1 and 10.', got %v", errs["copies"])
	}
}

func TestFieldValidator_StopsAtFirstError(t *testing.T) {
	fv := New().Validate("email", "", Required("Email", 100), Email("Email"))
	errs := fv.Errors()
	if len(errs) != 1 {
		t.Errorf("Expected 1 error, got %d", len(errs))
	}
	if errs["email"] != "Email is required." {
		t.Errorf("Expected required error, got %v", errs["email"])
	}
}

func TestFieldValidator_Err(t *testing.T) {
	if err := New().Validate("name", "ok", Required("Name", 10)).Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	err := New().
		Validate("b", "", Required("Author", 10)).
		Validate("a", "", Required("Title", 10)).
		Err()
	if err == nil {
		t.Fatal("Err() expected error")
	}
	want := "Title is required. Author is required."
	if err.Error() != want {
		t.Errorf("Err() = %q, want %q", err.Error(), want)
	}
}
