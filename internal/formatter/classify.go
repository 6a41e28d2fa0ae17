package formatter

import (
	"slices"
	"strings"

	"github.com/KimNorgaard/go-tonl/internal/strutil"
)

// Layout is the shape an entry is written in.
type Layout int

const (
	// LayoutScalar is "key: literal".
	LayoutScalar Layout = iota
	// LayoutTabular is "key[N]{cols}:" followed by one row per element.
	LayoutTabular
	// LayoutMixedArray is "key[N]:" followed by one "[i]" entry per element.
	LayoutMixedArray
	// LayoutPrimitiveArray is "key[N]: v1,v2,...".
	LayoutPrimitiveArray
	// LayoutSingleLineObject is "key{a,b}: va,vb".
	LayoutSingleLineObject
	// LayoutMultiLineObject is "key:" followed by one entry per key.
	LayoutMultiLineObject
)

func (l Layout) String() string {
	switch l {
	case LayoutScalar:
		return "scalar"
	case LayoutTabular:
		return "tabular"
	case LayoutMixedArray:
		return "mixed-array"
	case LayoutPrimitiveArray:
		return "primitive-array"
	case LayoutSingleLineObject:
		return "single-line-object"
	case LayoutMultiLineObject:
		return "multi-line-object"
	}
	return "unknown"
}

// Classify picks the layout of v from its shape alone.
func Classify(v any, ctx *Context) Layout {
	if ctx == nil {
		ctx = NewContext()
	}
	return classify(v, ctx.normalized())
}

func classify(v any, ctx *Context) Layout {
	switch x := v.(type) {
	case []any:
		if len(x) == 0 || allInline(x) {
			return LayoutPrimitiveArray
		}
		if _, ok := tabularColumns(x, ctx.SemiUniformThreshold); ok {
			return LayoutTabular
		}
		return LayoutMixedArray
	case map[string]any:
		if singleLine(x, ctx.Delimiter) {
			return LayoutSingleLineObject
		}
		return LayoutMultiLineObject
	}
	return LayoutScalar
}

func isScalar(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return false
	}
	return true
}

// isInline reports whether v is a scalar that fits on a shared line.
func isInline(v any) bool {
	if s, ok := v.(string); ok {
		return !strings.ContainsRune(s, '\n')
	}
	return isScalar(v)
}

func allInline(values []any) bool {
	for _, v := range values {
		if !isInline(v) {
			return false
		}
	}
	return true
}

// singleLine reports whether obj can be written as "key{a,b}: va,vb": the
// empty object, or two or more inline values under keys that need no
// quoting.
func singleLine(obj map[string]any, delim byte) bool {
	if len(obj) == 0 {
		return true
	}
	if len(obj) < 2 {
		return false
	}
	for k, v := range obj {
		if !isInline(v) || strutil.NeedsKeyQuote(k, delim) {
			return false
		}
	}
	return true
}

// tabularColumns returns the sorted column union of arr when it can be
// written as a table: every element a non-empty object of inline values,
// and either all key sets equal or at least threshold of the elements
// carrying every key found in more than half of them.
func tabularColumns(arr []any, threshold float64) ([]string, bool) {
	if len(arr) == 0 {
		return nil, false
	}
	counts := make(map[string]int)
	for _, e := range arr {
		obj, ok := e.(map[string]any)
		if !ok || len(obj) == 0 {
			return nil, false
		}
		for k, v := range obj {
			if !isInline(v) {
				return nil, false
			}
			counts[k]++
		}
	}

	uniform := true
	var majority []string
	for k, n := range counts {
		if n != len(arr) {
			uniform = false
		}
		if n*2 > len(arr) {
			majority = append(majority, k)
		}
	}
	if !uniform {
		if len(majority) == 0 {
			return nil, false
		}
		sharing := 0
		for _, e := range arr {
			if hasAll(e.(map[string]any), majority) {
				sharing++
			}
		}
		if float64(sharing)/float64(len(arr)) < threshold {
			return nil, false
		}
	}

	cols := make([]string, 0, len(counts))
	for k := range counts {
		cols = append(cols, k)
	}
	slices.Sort(cols)
	return cols, true
}

func hasAll(obj map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}
