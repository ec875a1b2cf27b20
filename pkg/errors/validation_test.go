package errors

import (
	"strings"
	"testing"
)

func TestValidateProjectName(t *testing.T) {
	valid := []string{"demo", "my-project", "my_project", "shop.v2", "0day"}
	invalid := []string{"", strings.Repeat("a", 129), "a..b", "foo/bar", ".hidden",
		"foo\x00bar", "foo bar", "-flag", "ümlaut"}

	for _, name := range valid {
		if err := ValidateProjectName(name); err != nil {
			t.Errorf("ValidateProjectName(%q) = %v", name, err)
		}
	}
	for _, name := range invalid {
		err := ValidateProjectName(name)
		if !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateProjectName(%q) = %v, want INVALID_INPUT", name, err)
		}
	}
}

func TestValidateDisplayName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr string
	}{
		{"Order processing", ""},
		{"Überblick (copy)", ""},
		{strings.Repeat("ж", 200), ""},
		{"", "blank"},
		{"   ", "blank"},
		{strings.Repeat("x", 201), "too long"},
		{"two\nlines", "control"},
		{"bad\xffutf8", "UTF-8"},
	}
	for _, tt := range tests {
		err := ValidateDisplayName("diagram", tt.input)
		switch {
		case tt.wantErr == "" && err != nil:
			t.Errorf("ValidateDisplayName(%q) = %v", tt.input, err)
		case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
			t.Errorf("ValidateDisplayName(%q) = %v, want error containing %q", tt.input, err, tt.wantErr)
		}
	}
}
