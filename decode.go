package tonl

import (
	"bytes"
	"encoding"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"

	"github.com/KimNorgaard/go-tonl/internal/formatter"
	"github.com/KimNorgaard/go-tonl/internal/mapper"
	"github.com/KimNorgaard/go-tonl/internal/parser"
)

// Decoder reads and decodes TONL documents from an input stream.
type Decoder struct {
	r    io.Reader
	opts []Option
}

// NewDecoder returns a new decoder that reads from r.
//
// Functional options can be provided to configure the decoding process,
// such as strict mode or the resource limits.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode reads the TONL document from its input and stores it in the
// value pointed to by v.
//
// See the documentation for Unmarshal for details about the conversion of
// TONL into a Go value.
//
// Note: This is a non-streaming implementation. It reads the entire
// reader into memory, up to the input size limit, before parsing.
func (d *Decoder) Decode(v any) error {
	if d.r == nil {
		return fmt.Errorf("tonl: Decode(nil reader)")
	}
	o, err := newOptions(d.opts)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("tonl: Unmarshal(non-pointer %T or nil)", v)
	}

	// Read one byte past the limit so oversized input is reported as such.
	data, err := io.ReadAll(io.LimitReader(d.r, int64(o.maxInputSize)+1))
	if err != nil {
		return err
	}
	// Integers are kept exact until the destination type is known.
	ctx := o.parseContext()
	ctx.UseInt64 = true
	tree, err := parser.Parse(data, ctx)
	if err != nil {
		return err
	}
	ds := &decodeState{opts: o}
	return ds.mapValue(tree, rv.Elem())
}

type decodeState struct {
	opts *options
}

func (ds *decodeState) mapValue(node any, rv reflect.Value) error {
	if node == nil {
		switch rv.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
	}

	// Attempt to use a custom unmarshaler if available.
	handled, err := ds.tryCustomUnmarshal(node, rv)
	if err != nil {
		return err
	}
	if handled {
		return nil
	}

	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return ds.mapValue(node, rv.Elem())
	}

	if rv.Kind() == reflect.Interface {
		if rv.NumMethod() != 0 {
			return fmt.Errorf("tonl: cannot unmarshal into non-empty interface %s", rv.Type())
		}
		node = ds.generic(node)
		rv.Set(reflect.ValueOf(&node).Elem())
		return nil
	}
	if !rv.CanSet() {
		return fmt.Errorf("tonl: cannot set value of type %s", rv.Type())
	}

	switch n := node.(type) {
	case nil:
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	case string:
		return ds.mapString(n, rv)
	case bool:
		if rv.Kind() != reflect.Bool {
			return fmt.Errorf("tonl: cannot unmarshal boolean into Go value of type %s", rv.Type())
		}
		rv.SetBool(n)
		return nil
	case float64:
		return ds.mapFloat(n, rv)
	case int64:
		return ds.mapInt(n, rv)
	case []any:
		switch rv.Kind() {
		case reflect.Slice:
			return ds.mapSlice(n, rv)
		case reflect.Array:
			return ds.mapArray(n, rv)
		default:
			return fmt.Errorf("tonl: cannot unmarshal array into Go value of type %s", rv.Type())
		}
	case map[string]any:
		switch rv.Kind() {
		case reflect.Struct:
			return ds.mapStruct(n, rv)
		case reflect.Map:
			return ds.mapMap(n, rv)
		default:
			return fmt.Errorf("tonl: cannot unmarshal object into Go value of type %s", rv.Type())
		}
	}
	return fmt.Errorf("tonl: cannot unmarshal %T into Go value of type %s", node, rv.Type())
}

// generic converts int64 leaves to float64 unless UseInt64 was given.
func (ds *decodeState) generic(node any) any {
	if ds.opts.useInt64 {
		return node
	}
	switch n := node.(type) {
	case int64:
		return float64(n)
	case []any:
		for i, e := range n {
			n[i] = ds.generic(e)
		}
	case map[string]any:
		for k, e := range n {
			n[k] = ds.generic(e)
		}
	}
	return node
}

// tryCustomUnmarshal attempts to use a custom unmarshaler (tonl.Unmarshaler or
// encoding.TextUnmarshaler) on the given reflect.Value. It returns true if a
// custom unmarshaler was found and used, in which case the caller should not
// proceed with default unmarshaling.
func (ds *decodeState) tryCustomUnmarshal(node any, rv reflect.Value) (bool, error) {
	if !rv.CanAddr() {
		return false, nil
	}
	pv := rv.Addr()
	if !pv.CanInterface() {
		return false, nil
	}
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		pv = rv
	}

	if u, ok := pv.Interface().(Unmarshaler); ok {
		// The subtree is handed over as a document of its own.
		var buf bytes.Buffer
		if err := formatter.New(&buf, ds.opts.formatContext()).Format(node); err != nil {
			return true, fmt.Errorf("tonl: failed to re-encode value for custom unmarshaler: %w", err)
		}
		if err := u.UnmarshalTONL(buf.Bytes()); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Method: "UnmarshalTONL", Err: err}
		}
		return true, nil
	}

	if u, ok := pv.Interface().(encoding.TextUnmarshaler); ok {
		s, isString := node.(string)
		if !isString {
			// TextUnmarshaler can only be used on string values.
			return false, nil
		}
		if err := u.UnmarshalText([]byte(s)); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Method: "UnmarshalText", Err: err}
		}
		return true, nil
	}

	return false, nil
}

func (ds *decodeState) mapString(s string, rv reflect.Value) error {
	switch {
	case rv.Kind() == reflect.String:
		rv.SetString(s)
		return nil
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return fmt.Errorf("tonl: cannot decode base64 into %s: %w", rv.Type(), err)
		}
		rv.SetBytes(b)
		return nil
	}
	return fmt.Errorf("tonl: cannot unmarshal string into Go value of type %s", rv.Type())
}

func (ds *decodeState) mapInt(n int64, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.OverflowInt(n) {
			return fmt.Errorf("tonl: integer value %d overflows Go value of type %s", n, rv.Type())
		}
		rv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if n < 0 || rv.OverflowUint(uint64(n)) {
			return fmt.Errorf("tonl: integer value %d overflows Go value of type %s", n, rv.Type())
		}
		rv.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		rv.SetFloat(float64(n))
		return nil
	}
	return fmt.Errorf("tonl: cannot unmarshal integer into Go value of type %s", rv.Type())
}

func (ds *decodeState) mapFloat(f float64, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		if rv.OverflowFloat(f) {
			return fmt.Errorf("tonl: float value %v overflows Go value of type %s", f, rv.Type())
		}
		rv.SetFloat(f)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return fmt.Errorf("tonl: cannot unmarshal number %v into Go value of type %s", f, rv.Type())
		}
		return ds.mapInt(int64(f), rv)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return fmt.Errorf("tonl: cannot unmarshal number %v into Go value of type %s", f, rv.Type())
		}
		u := uint64(f)
		if rv.OverflowUint(u) {
			return fmt.Errorf("tonl: number %v overflows Go value of type %s", f, rv.Type())
		}
		rv.SetUint(u)
		return nil
	}
	return fmt.Errorf("tonl: cannot unmarshal number into Go value of type %s", rv.Type())
}

func (ds *decodeState) mapSlice(a []any, rv reflect.Value) error {
	newSlice := reflect.MakeSlice(rv.Type(), len(a), len(a))
	for i, elem := range a {
		if err := ds.mapValue(elem, newSlice.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(newSlice)
	return nil
}

func (ds *decodeState) mapArray(a []any, rv reflect.Value) error {
	if rv.Len() != len(a) {
		return fmt.Errorf("tonl: cannot unmarshal array of length %d into Go array of length %d", len(a), rv.Len())
	}
	for i, elem := range a {
		if err := ds.mapValue(elem, rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (ds *decodeState) mapMap(obj map[string]any, rv reflect.Value) error {
	mapType := rv.Type()
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(mapType))
	} else {
		for _, k := range rv.MapKeys() {
			rv.SetMapIndex(k, reflect.Value{}) // The zero Value deletes the key
		}
	}
	elemType := mapType.Elem()
	for key, value := range obj {
		kv, err := mapKey(key, mapType.Key())
		if err != nil {
			return err
		}
		newVal := reflect.New(elemType).Elem()
		if err := ds.mapValue(value, newVal); err != nil {
			return err
		}
		rv.SetMapIndex(kv, newVal)
	}
	return nil
}

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

func mapKey(key string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() != reflect.String {
		var pv reflect.Value
		switch {
		case t.Kind() == reflect.Pointer && t.Implements(textUnmarshalerType):
			pv = reflect.New(t.Elem())
		case reflect.PointerTo(t).Implements(textUnmarshalerType):
			pv = reflect.New(t)
		}
		if pv.IsValid() {
			if err := pv.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(key)); err != nil {
				return reflect.Value{}, &UnmarshalerError{Type: pv.Type(), Method: "UnmarshalText", Err: err}
			}
			if t.Kind() == reflect.Pointer {
				return pv, nil
			}
			return pv.Elem(), nil
		}
	}
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(key).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(key, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("tonl: invalid map key %q for type %s", key, t)
		}
		return reflect.ValueOf(n).Convert(t), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(key, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("tonl: invalid map key %q for type %s", key, t)
		}
		return reflect.ValueOf(n).Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("tonl: cannot unmarshal object into map with key type %s", t)
}

func (ds *decodeState) mapStruct(obj map[string]any, rv reflect.Value) error {
	fields := mapper.CachedFields(rv.Type())
	for key, value := range obj {
		f, ok := fields.Lookup(key)
		if !ok {
			continue
		}
		fv, err := fieldByIndex(rv, f.Index)
		if err != nil {
			return err
		}
		if err := ds.mapValue(value, fv); err != nil {
			return err
		}
	}
	return nil
}

// fieldByIndex is like reflect.Value.FieldByIndex but allocates nil
// embedded struct pointers on the way.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, error) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, fmt.Errorf("tonl: cannot set embedded pointer to unexported struct %s", v.Type().Elem())
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, nil
}
