// Package mapper caches the reflection view of Go structs shared by the
// encoder and the decoder.
package mapper

import (
	"reflect"
	"strings"
	"sync"
)

// Field is one serialisable struct field.
type Field struct {
	Name      string
	Index     []int
	Tagged    bool
	OmitEmpty bool
	depth     int
}

// Fields is the cached field set of a struct type.
type Fields struct {
	// List holds the fields in declaration order, embedded fields inlined.
	List   []Field
	byName map[string]int
	// byFold maps lower-cased names for the case-insensitive fallback.
	byFold map[string]int
}

// Lookup finds the field for key, trying an exact match first and then a
// case-insensitive one.
func (fs *Fields) Lookup(key string) (*Field, bool) {
	if i, ok := fs.byName[key]; ok {
		return &fs.List[i], true
	}
	if i, ok := fs.byFold[strings.ToLower(key)]; ok {
		return &fs.List[i], true
	}
	return nil, false
}

var fieldCache sync.Map // map[reflect.Type]*Fields

// CachedFields returns the fields of struct type t. Unexported fields and
// fields tagged "-" are skipped. The name comes from the `tonl` tag, then
// the `json` tag, then the Go field name. Fields of embedded structs are
// promoted unless a shallower field has the same name.
func CachedFields(t reflect.Type) *Fields {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*Fields)
	}

	fs := &Fields{byName: make(map[string]int), byFold: make(map[string]int)}
	var walk func(t reflect.Type, idx []int, depth int)
	walk = func(t reflect.Type, idx []int, depth int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			tag, ok := sf.Tag.Lookup("tonl")
			if !ok {
				tag = sf.Tag.Get("json")
			}
			if tag == "-" {
				continue
			}
			name, opts, _ := strings.Cut(tag, ",")
			index := append(append([]int(nil), idx...), i)

			if sf.Anonymous && name == "" {
				ft := sf.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					walk(ft, index, depth+1)
					continue
				}
			}
			if !sf.IsExported() {
				continue
			}

			f := Field{Name: sf.Name, Index: index, depth: depth}
			if name != "" {
				f.Name, f.Tagged = name, true
			}
			for opts != "" {
				var opt string
				opt, opts, _ = strings.Cut(opts, ",")
				if opt == "omitempty" {
					f.OmitEmpty = true
				}
			}
			fs.add(f)
		}
	}
	walk(t, nil, 0)

	fieldCache.Store(t, fs)
	return fs
}

func (fs *Fields) add(f Field) {
	if i, ok := fs.byName[f.Name]; ok {
		prev := fs.List[i]
		if prev.depth < f.depth || (prev.depth == f.depth && (prev.Tagged || !f.Tagged)) {
			return
		}
		fs.List[i] = f
		return
	}
	fs.byName[f.Name] = len(fs.List)
	lower := strings.ToLower(f.Name)
	if _, ok := fs.byFold[lower]; !ok {
		fs.byFold[lower] = len(fs.List)
	}
	fs.List = append(fs.List, f)
}

// IsEmptyValue reports whether v is empty in the encoding/json sense:
// false, 0, a nil pointer, a nil interface value, and any empty array,
// slice, map, or string.
func IsEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}
