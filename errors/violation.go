package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a class of content list failure.
type ErrorCode string

const (
	// ErrCacheDoubleRegister indicates a list was inserted into a dedup cache twice.
	ErrCacheDoubleRegister ErrorCode = "cache-double-register"
	// ErrCacheMissingEntry indicates a list tried to deregister a cache entry that it does not own.
	ErrCacheMissingEntry ErrorCode = "cache-missing-entry"
	// ErrRefcountUnderflow indicates Release was called more times than Retain.
	ErrRefcountUnderflow ErrorCode = "list-refcount-underflow"
	// ErrInvalidOptions indicates an engine option is out of range.
	ErrInvalidOptions ErrorCode = "invalid-options"

	// ErrScriptParse indicates a query script could not be decoded.
	ErrScriptParse ErrorCode = "script-parse"
	// ErrScriptStep indicates a query script step referenced something that does not exist.
	ErrScriptStep ErrorCode = "script-step"
	// ErrDocumentParse indicates the input document could not be parsed.
	ErrDocumentParse ErrorCode = "document-parse"
)

// Violation describes a content list failure with a code, message and an
// optional subject (list description, script step, node path).
//
//nolint:errname // public API name.
type Violation struct {
	Code    string
	Message string
	Subject string
	Step    int
}

// Error formats the violation for display, including code, message, and context.
func (v *Violation) Error() string {
	if v == nil {
		return "violation <nil>"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", v.Code, v.Message))
	if v.Subject != "" {
		b.WriteString(fmt.Sprintf(" at %s", v.Subject))
	}
	if v.Step > 0 {
		b.WriteString(fmt.Sprintf(" (step %d)", v.Step))
	}
	return b.String()
}

// NewViolation builds a Violation with a code, message, and optional subject.
func NewViolation(code ErrorCode, msg, subject string) *Violation {
	return &Violation{Code: string(code), Message: msg, Subject: subject}
}

// NewViolationf formats a message and builds a Violation.
func NewViolationf(code ErrorCode, subject, format string, args ...any) *Violation {
	return NewViolation(code, fmt.Sprintf(format, args...), subject)
}

// AsViolation extracts a Violation from err or from a recovered panic value.
func AsViolation(err any) (*Violation, bool) {
	switch v := err.(type) {
	case nil:
		return nil, false
	case *Violation:
		return v, v != nil
	case error:
		var target *Violation
		if errors.As(v, &target) && target != nil {
			return target, true
		}
	}
	return nil, false
}

// Is reports whether err carries a Violation with the given code.
func Is(err error, code ErrorCode) bool {
	v, ok := AsViolation(err)
	return ok && v.Code == string(code)
}
