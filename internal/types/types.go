// Package types maps values to compact TONL type hints and turns hinted
// or untyped literals back into values.
package types

import (
	"math"
	"reflect"
)

// Hint is a compact type tag attached to a column. Hints describe data;
// they are never enforced beyond the coercion of a single literal.
type Hint string

const (
	Null Hint = "null"
	Bool Hint = "bool"
	U32  Hint = "u32"
	I32  Hint = "i32"
	F64  Hint = "f64"
	Str  Hint = "str"
	Obj  Hint = "obj"
	List Hint = "list"
)

var hints = map[string]Hint{
	"null": Null,
	"bool": Bool,
	"u32":  U32,
	"i32":  I32,
	"f64":  F64,
	"str":  Str,
	"obj":  Obj,
	"list": List,
}

// ParseHint looks up a hint by name.
func ParseHint(s string) (Hint, bool) {
	h, ok := hints[s]
	return h, ok
}

// Infer returns the hint for v. It is total: every value gets a hint.
func Infer(v any) Hint {
	switch x := v.(type) {
	case nil:
		return Null
	case bool:
		return Bool
	case string:
		return Str
	case []any:
		return List
	case map[string]any:
		return Obj
	case int64:
		return intHint(x)
	case uint64:
		if x <= math.MaxUint32 {
			return U32
		}
		return F64
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return F64
		}
		if x >= 0 && x <= math.MaxUint32 {
			return U32
		}
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			return I32
		}
		return F64
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return Bool
	case reflect.String:
		return Str
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intHint(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Infer(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Infer(rv.Float())
	case reflect.Slice, reflect.Array:
		return List
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null
		}
		return Infer(rv.Elem().Interface())
	}
	return Obj
}

func intHint(x int64) Hint {
	switch {
	case x >= 0 && x <= math.MaxUint32:
		return U32
	case x >= math.MinInt32 && x <= math.MaxInt32:
		return I32
	}
	return F64
}

// ColumnHint unifies the hints of a column's values. Nulls are ignored,
// u32 widens to i32 and integers widen to f64. It returns "" when the
// column mixes kinds or holds nothing but nulls.
func ColumnHint(values []any) Hint {
	var h Hint
	wideU32 := false
	for _, v := range values {
		vh := Infer(v)
		if vh == Null {
			continue
		}
		if vh == U32 && !fitsInt32(v) {
			wideU32 = true
		}
		switch {
		case h == "" || h == vh:
			h = vh
		case isNumeric(h) && isNumeric(vh):
			h = widen(h, vh)
		default:
			return ""
		}
	}
	if h == I32 && wideU32 {
		return F64
	}
	return h
}

func fitsInt32(v any) bool {
	switch x := v.(type) {
	case int64:
		return x <= math.MaxInt32
	case uint64:
		return x <= math.MaxInt32
	case float64:
		return x <= math.MaxInt32
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() <= math.MaxInt32
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() <= math.MaxInt32
	case reflect.Float32, reflect.Float64:
		return rv.Float() <= math.MaxInt32
	}
	return true
}

func isNumeric(h Hint) bool {
	return h == U32 || h == I32 || h == F64
}

func widen(a, b Hint) Hint {
	if a == F64 || b == F64 {
		return F64
	}
	return I32
}
