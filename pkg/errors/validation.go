package errors

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxProjectName = 128
	maxDisplayName = 200
)

// projectNameRegex matches names usable as store keys and file basenames.
var projectNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateProjectName checks that name can serve as a store key and as a
// file basename: letters, digits, dot, dash and underscore, starting with
// a letter or digit, no "..", at most 128 bytes.
func ValidateProjectName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidInput, "project name cannot be empty")
	case len(name) > maxProjectName:
		return New(ErrCodeInvalidInput, "project name too long (max %d characters)", maxProjectName)
	case strings.Contains(name, ".."):
		return New(ErrCodeInvalidInput, "project name contains %q", "..")
	case !projectNameRegex.MatchString(name):
		return New(ErrCodeInvalidInput, "invalid project name: %q", name)
	}
	return nil
}

// ValidateDisplayName checks a name shown to users, such as a diagram or
// folder name. Any printable text is allowed; it must not be blank and
// must fit on one line.
func ValidateDisplayName(what, name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be blank", what)
	}
	if !utf8.ValidString(name) {
		return New(ErrCodeInvalidInput, "%s name is not valid UTF-8", what)
	}
	if n := utf8.RuneCountInString(name); n > maxDisplayName {
		return New(ErrCodeInvalidInput, "%s name too long (%d > %d characters)", what, n, maxDisplayName)
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return New(ErrCodeInvalidInput, "%s name contains control characters", what)
	}
	return nil
}
