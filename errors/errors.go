// Package errors defines the error types reported by the TONL codec.
package errors

import (
	"fmt"
	"strings"
)

// ErrLimitExceeded is matched by every SecurityError.
var ErrLimitExceeded = limitError{}

type limitError struct{}

func (limitError) Error() string { return "tonl: resource limit exceeded" }

// ParseError represents a structural or syntax error found while decoding.
// It includes the offending line and a short excerpt of its surroundings.
type ParseError struct {
	Message string
	Line    int      // 1-based; 0 when not tied to a line
	Text    string   // the offending line
	Context []string // surrounding lines, only for structural errors
	Err     error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("tonl: ")
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Text != "" {
		fmt.Fprintf(&b, " (%q)", e.Text)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// SecurityError reports input that breaks a configured resource limit. It is
// kept apart from ParseError so callers can tell bad data from likely abuse.
type SecurityError struct {
	Limit  string
	Max    int
	Actual int
	Line   int
}

func (e *SecurityError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("tonl: line %d: %s limit exceeded (%d > %d)", e.Line, e.Limit, e.Actual, e.Max)
	}
	return fmt.Sprintf("tonl: %s limit exceeded (%d > %d)", e.Limit, e.Actual, e.Max)
}

func (e *SecurityError) Is(target error) bool { return target == ErrLimitExceeded }

// CoercionError reports a literal that does not satisfy its type hint.
type CoercionError struct {
	Text   string
	Hint   string
	Reason string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("tonl: cannot coerce %q to %s: %s", e.Text, e.Hint, e.Reason)
}

// CycleError reports a circular reference found while encoding.
type CycleError struct {
	Path string
}

func (e *CycleError) Error() string {
	return "tonl: circular reference detected at " + e.Path
}
