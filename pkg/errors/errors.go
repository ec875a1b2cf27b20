// Package errors provides structured error types for modelgraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Location context (entity, kind, field) for document errors
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Document errors come in three flavors:
//   - STRUCTURE_ERROR: a record is malformed or a link points at the wrong kind
//   - IDENTIFIER_FORMAT: an identifier string is not a valid UUID
//   - UNKNOWN_IDENTIFIER: an identifier has no record in the document
//
// The remaining codes cover input validation, missing resources and
// unexpected internal failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeStructure, "missing field %q", "name")
//	if errors.Is(err, errors.ErrCodeStructure) {
//	    // Handle malformed document
//	}
//
//	// Attach location
//	err = errors.Structure("unexpected kind %s", kind).At(id, "umlclass.class").InField("source")
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Document errors
	ErrCodeStructure         Code = "STRUCTURE_ERROR"
	ErrCodeIdentifierFormat  Code = "IDENTIFIER_FORMAT"
	ErrCodeUnknownIdentifier Code = "UNKNOWN_IDENTIFIER"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeProjectNotFound Code = "PROJECT_NOT_FOUND"

	// Backend errors
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code, optional location and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Entity  string // Identifier of the offending entity (optional)
	Kind    string // Kind tag of the offending entity (optional)
	Field   string // Field being resolved when the error occurred (optional)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	if loc := e.location(); loc != "" {
		b.WriteString(loc)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) location() string {
	var parts []string
	if e.Kind != "" {
		parts = append(parts, e.Kind)
	}
	if e.Entity != "" {
		parts = append(parts, e.Entity)
	}
	if e.Field != "" {
		parts = append(parts, "field "+e.Field)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// At records the entity the error belongs to. An existing location is kept,
// so the innermost entity wins when errors bubble up through nested nodes.
func (e *Error) At(entity, kind string) *Error {
	if e.Entity == "" {
		e.Entity = entity
		e.Kind = kind
	}
	return e
}

// InField records the field being resolved. An existing field is kept.
func (e *Error) InField(field string) *Error {
	if e.Field == "" {
		e.Field = field
	}
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Structure creates a STRUCTURE_ERROR.
func Structure(format string, args ...any) *Error {
	return New(ErrCodeStructure, format, args...)
}

// UnknownIdentifier creates an UNKNOWN_IDENTIFIER error for id.
func UnknownIdentifier(id string) *Error {
	return &Error{
		Code:    ErrCodeUnknownIdentifier,
		Message: "element not found in source",
		Entity:  id,
	}
}

// IdentifierFormat creates an IDENTIFIER_FORMAT error for the raw string s.
func IdentifierFormat(s string, cause error) *Error {
	return &Error{
		Code:    ErrCodeIdentifierFormat,
		Message: fmt.Sprintf("invalid identifier %q", s),
		Cause:   cause,
	}
}

// Locate attaches entity and field context to err if it is an *Error.
// Other errors are wrapped into a STRUCTURE_ERROR carrying the location.
func Locate(err error, entity, kind, field string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.At(entity, kind)
		if field != "" {
			e.InField(field)
		}
		return err
	}
	w := Wrap(ErrCodeStructure, err, "invalid value").At(entity, kind)
	if field != "" {
		w.InField(field)
	}
	return w
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message with its location but without the
// code prefix. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if loc := e.location(); loc != "" {
			return loc + ": " + e.Message
		}
		return e.Message
	}
	return err.Error()
}
