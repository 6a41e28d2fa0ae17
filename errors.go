package tonl

import (
	"reflect"

	tonlerrors "github.com/KimNorgaard/go-tonl/errors"
	"github.com/KimNorgaard/go-tonl/internal/marshaler"
)

// A MarshalerError represents an error from calling a MarshalTONL or
// MarshalText method.
type MarshalerError = marshaler.Error

// An UnmarshalerError represents an error from calling an UnmarshalTONL or
// UnmarshalText method.
type UnmarshalerError struct {
	Type reflect.Type
	// Method is the name of the method that failed.
	Method string
	Err    error
}

func (e *UnmarshalerError) Error() string {
	return "tonl: error calling " + e.Method + " for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *UnmarshalerError) Unwrap() error { return e.Err }

type (
	// ParseError is returned for malformed documents.
	ParseError = tonlerrors.ParseError
	// SecurityError is returned when a document breaks a resource limit.
	SecurityError = tonlerrors.SecurityError
	// CoercionError is returned when a value does not satisfy its type hint.
	CoercionError = tonlerrors.CoercionError
	// CycleError is returned when a value to encode refers to itself.
	CycleError = tonlerrors.CycleError
)

// ErrLimitExceeded matches every SecurityError under errors.Is.
var ErrLimitExceeded = tonlerrors.ErrLimitExceeded
