package tonl

import (
	"bytes"

	"github.com/KimNorgaard/go-tonl/internal/parser"
)

// Marshaler is the interface implemented by types that can marshal
// themselves into a valid TONL document. The document's value takes the
// place of the type in the output.
type Marshaler interface {
	MarshalTONL() ([]byte, error)
}

// Unmarshaler is the interface implemented by types that can unmarshal a
// TONL description of themselves. The input is a complete document
// holding the value, as produced by Marshal.
type Unmarshaler interface {
	UnmarshalTONL([]byte) error
}

// Marshal returns the TONL encoding of v.
//
// Maps must have string (or integer, or encoding.TextMarshaler) keys.
// Structs encode as objects using the field name, or the name given by a
// `tonl` tag, falling back to a `json` tag. The "omitempty" tag option and
// the "-" name behave as in encoding/json. Object keys are written in
// sorted order. NaN and infinite floats encode as null.
//
// Marshal returns a *CycleError if v refers to itself; no output is
// produced in that case.
func Marshal(v any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, opts...)
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse decodes a TONL document into a generic value: nil, bool, float64
// (int64 with UseInt64), string, []any or map[string]any.
func Parse(data []byte, opts ...Option) (any, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return parser.Parse(data, o.parseContext())
}

// Unmarshal parses the TONL-encoded data and stores the result in the
// value pointed to by v. If v is nil or not a pointer, Unmarshal returns
// an error.
//
// Object keys are matched against struct fields by tag or field name,
// preferring an exact match and falling back to a case-insensitive one.
// Unknown keys are ignored.
func Unmarshal(data []byte, v any, opts ...Option) error {
	return NewDecoder(bytes.NewReader(data), opts...).Decode(v)
}
