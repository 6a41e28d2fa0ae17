package parser

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	tonlerrors "github.com/KimNorgaard/go-tonl/errors"
)

func doc(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		input    []byte
		expected any
	}{
		{
			name:     "empty document",
			input:    doc("#version 1.0"),
			expected: map[string]any{},
		},
		{
			name:  "scalars",
			input: doc("#version 1.0", "a: 1", "b: -2.5", "c: true", "d: null", "e: hello world", `f: "42"`, `g: ""`),
			expected: map[string]any{
				"a": 1.0, "b": -2.5, "c": true, "d": nil, "e": "hello world", "f": "42", "g": "",
			},
		},
		{
			name:  "nested object",
			input: doc("user:", "  name: Alice", "  address:", "    city: Oslo", "  age: 30", "id: 7"),
			expected: map[string]any{
				"user": map[string]any{
					"name":    "Alice",
					"address": map[string]any{"city": "Oslo"},
					"age":     30.0,
				},
				"id": 7.0,
			},
		},
		{
			name:  "tabular array",
			input: doc("users[2]{id,name}:", "  1,Alice", "  2,Bob"),
			expected: map[string]any{
				"users": []any{
					map[string]any{"id": 1.0, "name": "Alice"},
					map[string]any{"id": 2.0, "name": "Bob"},
				},
			},
		},
		{
			name:  "tabular missing and null",
			input: doc("rows[3]{a,b}:", "  1,-", "  2,null", "  3"),
			expected: map[string]any{
				"rows": []any{
					map[string]any{"a": 1.0},
					map[string]any{"a": 2.0, "b": nil},
					map[string]any{"a": 3.0},
				},
			},
		},
		{
			name:  "tabular with hints",
			input: doc("rows[1]{id:u32,name:str,ok:bool}:", "  5,007,true"),
			expected: map[string]any{
				"rows": []any{map[string]any{"id": 5.0, "name": "007", "ok": true}},
			},
		},
		{
			name:     "primitive array",
			input:    doc(`tags[4]: a,"b,c",3,`),
			expected: map[string]any{"tags": []any{"a", "b,c", 3.0, nil}},
		},
		{
			name:     "empty array",
			input:    doc("tags[0]:", "next: 1"),
			expected: map[string]any{"tags": []any{}, "next": 1.0},
		},
		{
			name:     "primitive array over lines",
			input:    doc("nums[5]:", "  1,2,3", "  4,5"),
			expected: map[string]any{"nums": []any{1.0, 2.0, 3.0, 4.0, 5.0}},
		},
		{
			name: "mixed array",
			input: doc(
				"items[4]:",
				"  [0]: 1",
				"  [1][2]: a,b",
				"  [2]:",
				"    name: x",
				"  [3]{}:",
			),
			expected: map[string]any{
				"items": []any{1.0, []any{"a", "b"}, map[string]any{"name": "x"}, map[string]any{}},
			},
		},
		{
			name: "nested tabular element",
			input: doc(
				"matrix[2]:",
				"  [0][1]{a}:",
				"    1",
				"  [1][0]:",
			),
			expected: map[string]any{
				"matrix": []any{[]any{map[string]any{"a": 1.0}}, []any{}},
			},
		},
		{
			name:     "single line object",
			input:    doc("point{x,y}: 1,2", "empty{}:"),
			expected: map[string]any{"point": map[string]any{"x": 1.0, "y": 2.0}, "empty": map[string]any{}},
		},
		{
			name:     "object block with hints",
			input:    doc("cfg{port:u32,name:str}:", "  port: 80", "  name: 1"),
			expected: map[string]any{"cfg": map[string]any{"port": 80.0, "name": "1"}},
		},
		{
			name:     "inline array value",
			input:    doc("pairs: [1, [2, 3]]"),
			expected: map[string]any{"pairs": []any{1.0, []any{2.0, 3.0}}},
		},
		{
			name:     "multiline string",
			input:    doc("a:", `  text: """first`, "  second", "    indented", `  last"""`, "  after: 1"),
			expected: map[string]any{"a": map[string]any{"text": "first\nsecond\n  indented\nlast", "after": 1.0}},
		},
		{
			name:     "single line triple quotes",
			input:    doc(`t: """a: b\\c"""`),
			expected: map[string]any{"t": `a: b\c`},
		},
		{
			name:     "multiline containing header-like lines",
			input:    doc(`doc: """x`, "y: 1", "z[2]:", `"""`, "n: 2"),
			expected: map[string]any{"doc": "x\ny: 1\nz[2]:\n", "n": 2.0},
		},
		{
			name:     "pipe delimiter header",
			input:    doc("#version 1.0", "#delimiter |", "rows[1]{a,b}:", "  x,y|z"),
			expected: map[string]any{"rows": []any{map[string]any{"a": "x,y", "b": "z"}}},
		},
		{
			name:     "tab delimiter header",
			input:    doc("#delimiter \\t", "v[2]: a\tb"),
			expected: map[string]any{"v": []any{"a", "b"}},
		},
		{
			name:     "root scalar",
			input:    doc("#version 1.0", "@root", "root: 42"),
			expected: 42.0,
		},
		{
			name:     "root array",
			input:    doc("@root", "root[2]: x,y"),
			expected: []any{"x", "y"},
		},
		{
			name:     "skipped directives",
			input:    doc("@schema users.schema", "@include other.tonl", "a: 1"),
			expected: map[string]any{"a": 1.0},
		},
		{
			name:     "at keys are data",
			input:    doc("@root: 1", "@id: x"),
			expected: map[string]any{"@root": 1.0, "@id": "x"},
		},
		{
			name:     "comments and blank lines",
			input:    doc("# a comment", "", "a:", "  # inner", "", "  b: 1", "", "c: 2"),
			expected: map[string]any{"a": map[string]any{"b": 1.0}, "c": 2.0},
		},
		{
			name:     "crlf and bom",
			input:    []byte("\ufeffa: 1\r\nb: x\r\n"),
			expected: map[string]any{"a": 1.0, "b": "x"},
		},
		{
			name:     "prototype keys are ordinary",
			input:    doc("__proto__: 1", "constructor:", "  prototype: 2"),
			expected: map[string]any{"__proto__": 1.0, "constructor": map[string]any{"prototype": 2.0}},
		},
		{
			name:     "escapes",
			input:    doc(`s: "line\nnexté"`),
			expected: map[string]any{"s": "line\nnexté"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Parse(tc.input, nil)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.expected, v); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseUseInt64(t *testing.T) {
	ctx := NewContext()
	ctx.UseInt64 = true
	v, err := Parse(doc("a: 9007199254740993", "b: 1.5", "c[2]{n:i32}:", "  -3", "  4"), ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"a": int64(9007199254740993),
		"b": 1.5,
		"c": []any{map[string]any{"n": int64(-3)}, map[string]any{"n": int64(4)}},
	}, v)
}

func TestParseDelimiterOverride(t *testing.T) {
	ctx := NewContext()
	ctx.Delimiter = ';'
	v, err := Parse(doc("#delimiter |", "v[2]: a|b;c"), ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"v": []any{"a|b", "c"}}, v)
}

func TestParseStrict(t *testing.T) {
	testCases := []struct {
		name    string
		input   []byte
		lenient any
	}{
		{
			name:    "unparseable line",
			input:   doc("a: 1", "garbage", "b: 2"),
			lenient: map[string]any{"a": 1.0, "b": 2.0},
		},
		{
			name:    "surplus row fields",
			input:   doc("rows[1]{a}:", "  1,2,3"),
			lenient: map[string]any{"rows": []any{map[string]any{"a": 1.0}}},
		},
		{
			name:    "length mismatch",
			input:   doc("v[3]: 1,2"),
			lenient: map[string]any{"v": []any{1.0, 2.0}},
		},
		{
			name:    "duplicate key",
			input:   doc("a: 1", "a: 2"),
			lenient: map[string]any{"a": 2.0},
		},
		{
			name:    "index outside array",
			input:   doc("[0]: 1", "a: 2"),
			lenient: map[string]any{"a": 2.0},
		},
		{
			name:    "values after tabular header",
			input:   doc("rows[1]{a}: 9", "  1"),
			lenient: map[string]any{"rows": []any{map[string]any{"a": 1.0}}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			ctx := NewContext()
			ctx.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
			v, err := Parse(tc.input, ctx)
			require.NoError(t, err)
			require.Equal(t, tc.lenient, v)
			require.NotEmpty(t, logs.String())

			ctx = NewContext()
			ctx.Strict = true
			_, err = Parse(tc.input, ctx)
			var perr *tonlerrors.ParseError
			require.ErrorAs(t, err, &perr)
			require.Positive(t, perr.Line)
			require.NotEmpty(t, perr.Context)
		})
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input []byte
		line  int
	}{
		{"malformed length", doc("a: 1", "v[x]: 1"), 2},
		{"unterminated multiline", doc(`t: """abc`, "def"), 1},
		{"bad escape", doc(`s: "a\qb"`), 1},
		{"unterminated quote", doc(`s: "abc`), 1},
		{"hint violation", doc("rows[1]{n:u32}:", "  -1"), 2},
		{"index out of range", doc("v[1]:", "  [5]: x"), 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.input, nil)
			var perr *tonlerrors.ParseError
			require.ErrorAs(t, err, &perr)
			require.Equal(t, tc.line, perr.Line)
		})
	}
}

func TestParseCoercionErrorIsWrapped(t *testing.T) {
	_, err := Parse(doc("rows[1]{n:i32}:", "  3000000000"), nil)
	var cerr *tonlerrors.CoercionError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "3000000000", cerr.Text)
}

func TestParseLimits(t *testing.T) {
	deep := []string{}
	for i := range 5 {
		deep = append(deep, strings.Repeat("  ", i)+"k:")
	}
	deep = append(deep, strings.Repeat("  ", 5)+"v: 1")

	testCases := []struct {
		name  string
		input []byte
		setup func(*Context)
		limit string
	}{
		{"input size", doc("a: 1"), func(c *Context) { c.MaxInputSize = 3 }, "input size"},
		{"line length", doc("a: 1", "b: 123456"), func(c *Context) { c.MaxLineLength = 6 }, "line length"},
		{"fields per line", doc("v[4]: 1,2,3,4"), func(c *Context) { c.MaxFields = 3 }, "fields per line"},
		{"nesting depth", doc(deep...), func(c *Context) { c.MaxDepth = 4 }, "nesting depth"},
		{"inline array depth", doc("v: [[[1]]]"), func(c *Context) { c.MaxDepth = 2 }, "nesting depth"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := NewContext()
			tc.setup(ctx)
			_, err := Parse(tc.input, ctx)
			require.True(t, errors.Is(err, tonlerrors.ErrLimitExceeded), "got %v", err)
			var serr *tonlerrors.SecurityError
			require.ErrorAs(t, err, &serr)
			require.Equal(t, tc.limit, serr.Limit)
		})
	}

	t.Run("depth within limit", func(t *testing.T) {
		ctx := NewContext()
		ctx.MaxDepth = 5
		_, err := Parse(doc(deep...), ctx)
		require.NoError(t, err)
	})
}
