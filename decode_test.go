package tonl_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/KimNorgaard/go-tonl"
	"github.com/stretchr/testify/require"
)

// doc joins lines into a document body with a trailing newline.
func doc(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

// rootDoc wraps a single entry line as a non-object root document.
func rootDoc(entry string) []byte {
	return doc("#version 1.0", "@root", "root"+entry)
}

func TestUnmarshal(t *testing.T) {
	t.Run("Scalar Types", func(t *testing.T) {
		var s string
		err := tonl.Unmarshal(rootDoc(": hello world"), &s)
		require.NoError(t, err)
		require.Equal(t, "hello world", s)

		var i int
		err = tonl.Unmarshal(rootDoc(": 123"), &i)
		require.NoError(t, err)
		require.Equal(t, 123, i)

		var f float64
		err = tonl.Unmarshal(rootDoc(": 3.14"), &f)
		require.NoError(t, err)
		require.Equal(t, 3.14, f)

		var b bool
		err = tonl.Unmarshal(rootDoc(": true"), &b)
		require.NoError(t, err)
		require.Equal(t, true, b)
	})

	t.Run("Null Handling", func(t *testing.T) {
		var s = "preset"
		err := tonl.Unmarshal(rootDoc(": null"), &s)
		require.NoError(t, err)
		require.Equal(t, "", s, "null should set string to its zero value")

		var p *int
		err = tonl.Unmarshal(rootDoc(": null"), &p)
		require.NoError(t, err)
		require.Nil(t, p, "null should set pointer to nil")
	})

	t.Run("Large Integers Stay Exact", func(t *testing.T) {
		var n int64
		err := tonl.Unmarshal(rootDoc(": 9007199254740993"), &n)
		require.NoError(t, err)
		require.Equal(t, int64(9007199254740993), n)
	})

	t.Run("Slices", func(t *testing.T) {
		var ints []int
		err := tonl.Unmarshal(rootDoc("[3]: 1,2,3"), &ints)
		require.NoError(t, err)
		require.Equal(t, []int{1, 2, 3}, ints)

		var empty []string
		err = tonl.Unmarshal(rootDoc("[0]:"), &empty)
		require.NoError(t, err)
		require.NotNil(t, empty)
		require.Empty(t, empty)
	})

	t.Run("Arrays", func(t *testing.T) {
		var arr [3]int
		err := tonl.Unmarshal(rootDoc("[3]: 1,2,3"), &arr)
		require.NoError(t, err)
		require.Equal(t, [3]int{1, 2, 3}, arr)

		var arr2 [2]int
		err = tonl.Unmarshal(rootDoc("[3]: 1,2,3"), &arr2)
		require.Error(t, err)
		require.Contains(t, err.Error(), "cannot unmarshal array of length 3 into Go array of length 2")
	})

	t.Run("Maps", func(t *testing.T) {
		var m map[string]int
		err := tonl.Unmarshal(doc("#version 1.0", "a: 1", "b: 2"), &m)
		require.NoError(t, err)
		require.Equal(t, map[string]int{"a": 1, "b": 2}, m)

		byID := map[int]string{99: "stale"}
		err = tonl.Unmarshal(doc("#version 1.0", "1: one", "2: two"), &byID)
		require.NoError(t, err)
		require.Equal(t, map[int]string{1: "one", 2: "two"}, byID)
	})

	t.Run("Interface", func(t *testing.T) {
		var v any
		err := tonl.Unmarshal(doc("#version 1.0", "n: 1", "tags[2]: a,b"), &v)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"n": 1.0, "tags": []any{"a", "b"}}, v)

		err = tonl.Unmarshal(doc("#version 1.0", "n: 1"), &v, tonl.UseInt64())
		require.NoError(t, err)
		require.Equal(t, map[string]any{"n": int64(1)}, v)
	})

	t.Run("Bytes", func(t *testing.T) {
		var b []byte
		err := tonl.Unmarshal(rootDoc(": aGVsbG8="), &b)
		require.NoError(t, err)
		require.Equal(t, []byte("hello"), b)
	})
}

func TestUnmarshal_Structs(t *testing.T) {
	type Address struct {
		City string `tonl:"city"`
		Zip  string `json:"zip"`
	}
	type User struct {
		ID      uint32   `tonl:"id"`
		Name    string   `tonl:"name"`
		Email   *string  `tonl:"email"`
		Tags    []string `tonl:"tags"`
		Address Address  `tonl:"address"`
		Ignored string   `tonl:"-"`
		Active  bool
	}

	input := doc(
		"#version 1.0",
		"users[2]{active,address,email,id,name}:",
		"  true,-,a@example.com,1,Alice",
		"  false,-,null,2,Bob",
	)
	var out struct {
		Users []User `tonl:"users"`
	}
	require.NoError(t, tonl.Unmarshal(input, &out))
	require.Len(t, out.Users, 2)
	require.Equal(t, uint32(1), out.Users[0].ID)
	require.Equal(t, "Alice", out.Users[0].Name)
	require.NotNil(t, out.Users[0].Email)
	require.Equal(t, "a@example.com", *out.Users[0].Email)
	require.True(t, out.Users[0].Active, "untagged field matches case-insensitively")
	require.Nil(t, out.Users[1].Email)

	nested := doc(
		"#version 1.0",
		"address{city,zip}: Oslo,\"0150\"",
		"Ignored: nope",
		"name: Carol",
		"tags[1]: x",
		"unknown: skipped",
	)
	var u User
	require.NoError(t, tonl.Unmarshal(nested, &u))
	require.Equal(t, User{Name: "Carol", Tags: []string{"x"}, Address: Address{City: "Oslo", Zip: "0150"}}, u)
}

func TestUnmarshal_Embedded(t *testing.T) {
	type Base struct {
		ID   int    `tonl:"id"`
		Kind string `tonl:"kind"`
	}
	type Audit struct {
		Created string `tonl:"created"`
	}
	type Item struct {
		Base
		*Audit
		Kind string `tonl:"kind"`
		Name string `tonl:"name"`
	}

	input := doc("#version 1.0", "created: today", "id: 7", "kind: outer", "name: widget")
	var it Item
	require.NoError(t, tonl.Unmarshal(input, &it))
	require.Equal(t, 7, it.ID)
	require.Equal(t, "outer", it.Kind, "the shallower field wins")
	require.Empty(t, it.Base.Kind)
	require.NotNil(t, it.Audit, "nil embedded pointer is allocated")
	require.Equal(t, "today", it.Created)
	require.Equal(t, "widget", it.Name)
}

func TestDecoder(t *testing.T) {
	r := bytes.NewReader(doc("#version 1.0", "name: stream"))
	var v map[string]string
	require.NoError(t, tonl.NewDecoder(r).Decode(&v))
	require.Equal(t, map[string]string{"name": "stream"}, v)

	err := tonl.NewDecoder(nil).Decode(&v)
	require.Error(t, err)

	err = tonl.NewDecoder(bytes.NewReader(nil)).Decode(v)
	require.ErrorContains(t, err, "non-pointer")
}

func TestParse(t *testing.T) {
	v, err := tonl.Parse(doc("#version 1.0", "@root", "root[2]{id}:", "  1", "  2"))
	require.NoError(t, err)
	require.Equal(t, []any{map[string]any{"id": 1.0}, map[string]any{"id": 2.0}}, v)

	v, err = tonl.Parse(doc("#version 1.0", "#delimiter |", "row{a,b}: x, y|z"))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"row": map[string]any{"a": "x, y", "b": "z"}}, v)
}
