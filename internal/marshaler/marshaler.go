// Package marshaler converts arbitrary Go values into the generic value
// tree the encoder works on: nil, bool, int64, uint64, float64, string,
// []any and map[string]any.
package marshaler

import (
	"encoding"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	tonlerrors "github.com/KimNorgaard/go-tonl/errors"
	"github.com/KimNorgaard/go-tonl/internal/mapper"
	"github.com/KimNorgaard/go-tonl/internal/token"
)

// DefaultMaxDepth bounds the nesting of non-cyclic values.
const DefaultMaxDepth = 1000

// Marshaler is implemented by types that render themselves as a TONL
// document.
type Marshaler interface {
	MarshalTONL() ([]byte, error)
}

// Error is returned when a Marshaler or TextMarshaler fails or produces
// a document that cannot be decoded.
type Error struct {
	Type reflect.Type
	// Method is the name of the method that failed.
	Method string
	Err    error
}

func (e *Error) Error() string {
	return "tonl: error calling " + e.Method + " for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Options configures Marshal.
type Options struct {
	// MaxDepth bounds nesting; zero means DefaultMaxDepth.
	MaxDepth int
	// Parse decodes the output of a Marshaler into a value tree.
	Parse func([]byte) (any, error)
}

var numberType = reflect.TypeFor[json.Number]()

// Marshal walks v and returns its value tree. A value reachable from
// itself is rejected with a *errors.CycleError naming the path of the
// repeated reference.
func Marshal(v any, o Options) (any, error) {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	m := &marshaler{opts: o, active: make(map[visit]struct{})}
	return m.marshal(reflect.ValueOf(v))
}

// visit identifies a container by address and type. Slices also carry
// their length, since a subslice shares its address with the parent.
type visit struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

type marshaler struct {
	opts   Options
	active map[visit]struct{}
	path   []string
	depth  int
}

func (m *marshaler) marshal(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil, nil
	}
	if out, ok, err := m.marshalHook(v); ok {
		return out, err
	}

	switch v.Kind() {
	case reflect.Interface:
		return m.marshal(v.Elem())
	case reflect.Pointer:
		leave, err := m.enter(v.Pointer(), v.Type(), 0)
		if err != nil {
			return nil, err
		}
		defer leave()
		return m.marshal(v.Elem())
	case reflect.String:
		if v.Type() == numberType {
			return parseNumber(v.String())
		}
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := v.Uint(); u > math.MaxInt64 {
			return u, nil
		}
		return int64(v.Uint()), nil
	case reflect.Float32:
		// Round-trip through the 32-bit representation so 0.1 stays 0.1.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(v.Float(), 'g', -1, 32), 64)
		return f, nil
	case reflect.Float64:
		return v.Float(), nil
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(v.Bytes()), nil
		}
		leave, err := m.enter(v.Pointer(), v.Type(), v.Len())
		if err != nil {
			return nil, err
		}
		defer leave()
		return m.marshalArray(v)
	case reflect.Array:
		return m.marshalArray(v)
	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		leave, err := m.enter(v.Pointer(), v.Type(), 0)
		if err != nil {
			return nil, err
		}
		defer leave()
		return m.marshalMap(v)
	case reflect.Struct:
		return m.marshalStruct(v)
	}
	return nil, fmt.Errorf("tonl: unsupported type for marshaling: %s", v.Type())
}

// enter marks a container as being walked. The returned func unmarks it.
func (m *marshaler) enter(ptr uintptr, t reflect.Type, n int) (func(), error) {
	key := visit{ptr: ptr, typ: t, n: n}
	if _, ok := m.active[key]; ok {
		return nil, &tonlerrors.CycleError{Path: m.pathString()}
	}
	m.active[key] = struct{}{}
	return func() { delete(m.active, key) }, nil
}

func (m *marshaler) push(seg string) error {
	m.depth++
	if m.depth > m.opts.MaxDepth {
		return fmt.Errorf("tonl: exceeded max depth of %d at %s", m.opts.MaxDepth, m.pathString())
	}
	m.path = append(m.path, seg)
	return nil
}

func (m *marshaler) pop() {
	m.depth--
	m.path = m.path[:len(m.path)-1]
}

func (m *marshaler) pathString() string {
	return "$" + strings.Join(m.path, "")
}

func (m *marshaler) marshalArray(v reflect.Value) (any, error) {
	out := make([]any, v.Len())
	for i := range out {
		if err := m.push("[" + strconv.Itoa(i) + "]"); err != nil {
			return nil, err
		}
		elem, err := m.marshal(v.Index(i))
		m.pop()
		if err != nil {
			return nil, err
		}
		out[i] = elem
	}
	return out, nil
}

func (m *marshaler) marshalMap(v reflect.Value) (any, error) {
	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := mapKey(iter.Key())
		if err != nil {
			return nil, err
		}
		if err := m.push("." + key); err != nil {
			return nil, err
		}
		elem, err := m.marshal(iter.Value())
		m.pop()
		if err != nil {
			return nil, err
		}
		out[key] = elem
	}
	return out, nil
}

func (m *marshaler) marshalStruct(v reflect.Value) (any, error) {
	fields := mapper.CachedFields(v.Type())
	out := make(map[string]any, len(fields.List))
	for _, f := range fields.List {
		fv, err := v.FieldByIndexErr(f.Index)
		if err != nil {
			// Promoted through a nil embedded pointer.
			continue
		}
		if f.OmitEmpty && mapper.IsEmptyValue(fv) {
			continue
		}
		if err := m.push("." + f.Name); err != nil {
			return nil, err
		}
		elem, err := m.marshal(fv)
		m.pop()
		if err != nil {
			return nil, err
		}
		out[f.Name] = elem
	}
	return out, nil
}

// marshalHook applies Marshaler and encoding.TextMarshaler, checking both
// the value and a pointer to it.
func (m *marshaler) marshalHook(v reflect.Value) (any, bool, error) {
	if u, pv, ok := implements[Marshaler](v); ok {
		b, err := u.MarshalTONL()
		if err != nil {
			return nil, true, &Error{Type: pv.Type(), Method: "MarshalTONL", Err: err}
		}
		if len(strings.TrimSpace(string(b))) == 0 {
			return nil, true, nil
		}
		if m.opts.Parse == nil {
			return nil, true, &Error{Type: pv.Type(), Method: "MarshalTONL", Err: fmt.Errorf("no decoder available")}
		}
		out, err := m.opts.Parse(b)
		if err != nil {
			return nil, true, &Error{Type: pv.Type(), Method: "MarshalTONL", Err: fmt.Errorf("invalid TONL output: %w", err)}
		}
		return out, true, nil
	}
	if u, pv, ok := implements[encoding.TextMarshaler](v); ok {
		b, err := u.MarshalText()
		if err != nil {
			return nil, true, &Error{Type: pv.Type(), Method: "MarshalText", Err: err}
		}
		return string(b), true, nil
	}
	return nil, false, nil
}

func implements[T any](v reflect.Value) (T, reflect.Value, bool) {
	var zero T
	iface := reflect.TypeFor[T]()
	if v.Kind() != reflect.Interface && v.Type().Implements(iface) && v.CanInterface() {
		return v.Interface().(T), v, true
	}
	if v.Kind() != reflect.Pointer && v.Kind() != reflect.Interface && reflect.PointerTo(v.Type()).Implements(iface) {
		var pv reflect.Value
		if v.CanAddr() {
			pv = v.Addr()
		} else {
			// For non-addressable values, check a pointer to a copy.
			pv = reflect.New(v.Type())
			pv.Elem().Set(v)
		}
		if pv.CanInterface() {
			return pv.Interface().(T), pv, true
		}
	}
	return zero, reflect.Value{}, false
}

func mapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if k.Kind() == reflect.Pointer && k.IsNil() {
			return "", nil
		}
		b, err := tm.MarshalText()
		if err != nil {
			return "", &Error{Type: k.Type(), Method: "MarshalText", Err: err}
		}
		return string(b), nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("tonl: unsupported map key type %s", k.Type())
}

func parseNumber(s string) (any, error) {
	switch typ, _ := token.LookupNumber(s); typ {
	case token.INT:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return u, nil
		}
		fallthrough
	case token.FLOAT:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("tonl: invalid number literal %q", s)
}
