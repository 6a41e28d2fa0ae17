// Package formatter renders a value tree as TONL text.
package formatter

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/KimNorgaard/go-tonl/internal/strutil"
	"github.com/KimNorgaard/go-tonl/internal/token"
	"github.com/KimNorgaard/go-tonl/internal/types"
)

// Formatter writes a value tree to an output stream.
type Formatter struct {
	w   io.Writer
	ctx *Context
	buf bytes.Buffer
}

// New returns a new formatter that writes to w. A nil ctx uses
// NewContext().
func New(w io.Writer, ctx *Context) *Formatter {
	if ctx == nil {
		ctx = NewContext()
	}
	return &Formatter{w: w, ctx: ctx.normalized()}
}

// Format writes the TONL document for v. The document is rendered in
// full before anything reaches the writer.
func (f *Formatter) Format(v any) error {
	f.buf.Reset()
	f.buf.WriteString(token.VersionPrefix + " " + f.ctx.Version + "\n")
	if f.ctx.Delimiter != token.DefaultDelimiter {
		f.buf.WriteString(token.DelimiterPrefix + " " + token.DelimiterString(f.ctx.Delimiter) + "\n")
	}

	if obj, ok := v.(map[string]any); ok {
		for _, k := range sortedKeys(obj) {
			if err := f.writeEntry(f.key(k), obj[k], 0); err != nil {
				return err
			}
		}
	} else {
		f.buf.WriteString("@" + string(token.Root) + "\n")
		if err := f.writeEntry(token.RootKey, v, 0); err != nil {
			return err
		}
	}

	_, err := f.w.Write(f.buf.Bytes())
	return err
}

func (f *Formatter) key(k string) string {
	return strutil.FormatKey(k, f.ctx.Delimiter)
}

// writeEntry writes v under the already formatted key at depth.
func (f *Formatter) writeEntry(key string, v any, depth int) error {
	ind := strutil.Indent(depth, f.ctx.Indent)
	switch classify(v, f.ctx) {
	case LayoutPrimitiveArray:
		return f.writePrimitiveArray(ind, key, v.([]any), depth)
	case LayoutTabular:
		return f.writeTabular(ind, key, v.([]any), depth)
	case LayoutMixedArray:
		arr := v.([]any)
		f.line(ind, key, "[", strconv.Itoa(len(arr)), "]:")
		for i, elem := range arr {
			if err := f.writeEntry("["+strconv.Itoa(i)+"]", elem, depth+1); err != nil {
				return err
			}
		}
		return nil
	case LayoutSingleLineObject:
		return f.writeSingleLineObject(ind, key, v.(map[string]any))
	case LayoutMultiLineObject:
		obj := v.(map[string]any)
		f.line(ind, key, ":")
		for _, k := range sortedKeys(obj) {
			if err := f.writeEntry(f.key(k), obj[k], depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	lit, err := f.scalar(v)
	if err != nil {
		return err
	}
	// Continuation lines of a """ string carry the entry's indentation,
	// which the parser strips again.
	if ind != "" {
		lit = strings.ReplaceAll(lit, "\n", "\n"+ind)
	}
	f.line(ind, key, ": ", lit)
	return nil
}

func (f *Formatter) writePrimitiveArray(ind, key string, arr []any, depth int) error {
	header := key + "[" + strconv.Itoa(len(arr)) + "]:"
	if len(arr) == 0 {
		f.line(ind, header)
		return nil
	}
	fields, err := f.scalars(arr)
	if err != nil {
		return err
	}
	if f.ctx.MultiLinePrimitiveArrays {
		f.line(ind, header)
		child := strutil.Indent(depth+1, f.ctx.Indent)
		for _, field := range fields {
			f.line(child, field)
		}
		return nil
	}
	f.line(ind, header, " ", strings.Join(fields, f.ctx.joiner()))
	return nil
}

func (f *Formatter) writeTabular(ind, key string, arr []any, depth int) error {
	cols, _ := tabularColumns(arr, f.ctx.SemiUniformThreshold)
	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = f.key(col)
		if f.ctx.TypeHints {
			values := make([]any, 0, len(arr))
			for _, e := range arr {
				if v, ok := e.(map[string]any)[col]; ok {
					values = append(values, v)
				}
			}
			if h := types.ColumnHint(values); h != "" {
				defs[i] += ":" + string(h)
			}
		}
	}
	f.line(ind, key, "[", strconv.Itoa(len(arr)), "]{", strings.Join(defs, ","), "}:")

	child := strutil.Indent(depth+1, f.ctx.Indent)
	fields := make([]string, len(cols))
	for _, e := range arr {
		obj := e.(map[string]any)
		for i, col := range cols {
			v, ok := obj[col]
			if !ok {
				fields[i] = token.Missing
				continue
			}
			lit, err := f.scalar(v)
			if err != nil {
				return err
			}
			fields[i] = lit
		}
		f.line(child, strings.Join(fields, f.ctx.joiner()))
	}
	return nil
}

func (f *Formatter) writeSingleLineObject(ind, key string, obj map[string]any) error {
	if len(obj) == 0 {
		f.line(ind, key, "{}:")
		return nil
	}
	keys := sortedKeys(obj)
	defs := make([]string, len(keys))
	values := make([]any, len(keys))
	for i, k := range keys {
		defs[i], values[i] = k, obj[k]
		if f.ctx.TypeHints {
			defs[i] += ":" + string(types.Infer(obj[k]))
		}
	}
	fields, err := f.scalars(values)
	if err != nil {
		return err
	}
	f.line(ind, key, "{", strings.Join(defs, ","), "}: ", strings.Join(fields, f.ctx.joiner()))
	return nil
}

func (f *Formatter) line(parts ...string) {
	for _, p := range parts {
		f.buf.WriteString(p)
	}
	f.buf.WriteByte('\n')
}

func (f *Formatter) scalars(values []any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		lit, err := f.scalar(v)
		if err != nil {
			return nil, err
		}
		out[i] = lit
	}
	return out, nil
}

// scalar renders a leaf literal.
func (f *Formatter) scalar(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(x), nil
	case string:
		return strutil.FormatString(x, f.ctx.Delimiter), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int:
		return strconv.Itoa(x), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return FormatFloat(x), nil
	case float32:
		return FormatFloat(float64(x)), nil
	}
	return "", fmt.Errorf("tonl: unsupported value of type %T", v)
}

// FormatFloat renders f in its shortest form. Magnitudes below 1e-6 or
// from 1e21 up use exponent notation. NaN and the infinities have no
// literal and become null; negative zero becomes 0.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return "null"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs < 1e-6 || abs >= 1e21 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys(obj map[string]any) []string {
	return slices.Sorted(maps.Keys(obj))
}
