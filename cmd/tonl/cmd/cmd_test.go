package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

// run executes the tool with args and stdin and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

const usersJSON = `{"users":[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]}`

const usersTONL = "#version 1.0\nusers[2]{id,name}:\n  1,Alice\n  2,Bob\n"

func TestEncode(t *testing.T) {
	testCases := []struct {
		name     string
		stdin    string
		args     []string
		expected string
	}{
		{
			name:     "JSON From Stdin",
			stdin:    usersJSON,
			args:     []string{"encode"},
			expected: usersTONL,
		},
		{
			name:     "Type Hints And Delimiter",
			stdin:    usersJSON,
			args:     []string{"encode", "--type-hints", "-d", "|"},
			expected: "#version 1.0\n#delimiter |\nusers[2]{id:u32,name:str}:\n  1|Alice\n  2|Bob\n",
		},
		{
			name:     "YAML",
			stdin:    "name: svc\nports:\n  - 80\n  - 443\n",
			args:     []string{"encode", "--from", "yaml"},
			expected: "#version 1.0\nname: svc\nports[2]: 80,443\n",
		},
		{
			name:     "Smart",
			stdin:    `{"note":"a, b, c"}`,
			args:     []string{"encode", "--smart"},
			expected: "#version 1.0\n#delimiter |\nnote: a, b, c\n",
		},
		{
			name:     "Large Integers Stay Exact",
			stdin:    `{"id":9007199254740993}`,
			args:     []string{"encode"},
			expected: "#version 1.0\nid: 9007199254740993\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, tc.stdin, tc.args...)
			require.NoError(t, err)
			require.Equal(t, tc.expected, out)
		})
	}
}

func TestEncode_CompressedInput(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte(usersJSON))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	out, err := run(t, "", "encode", writeFile(t, "users.json.gz", gz.Bytes()))
	require.NoError(t, err)
	require.Equal(t, usersTONL, out)

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zst := enc.EncodeAll([]byte("users:\n  - id: 1\n    name: Alice\n  - id: 2\n    name: Bob\n"), nil)
	require.NoError(t, enc.Close())

	out, err = run(t, "", "encode", writeFile(t, "users.yaml.zst", zst))
	require.NoError(t, err)
	require.Equal(t, usersTONL, out)
}

func TestEncode_Errors(t *testing.T) {
	_, err := run(t, "{", "encode")
	require.ErrorContains(t, err, "invalid JSON")

	_, err = run(t, usersJSON, "encode", "-d", ":")
	require.ErrorContains(t, err, "unsupported delimiter")

	_, err = run(t, usersJSON, "encode", "--from", "xml")
	require.ErrorContains(t, err, "unsupported format")
}

func TestDecode(t *testing.T) {
	out, err := run(t, usersTONL, "decode")
	require.NoError(t, err)
	require.JSONEq(t, usersJSON, out)

	out, err = run(t, usersTONL, "decode", "--to", "yaml")
	require.NoError(t, err)
	require.Equal(t, "users:\n    - id: 1\n      name: Alice\n    - id: 2\n      name: Bob\n", out)

	lenient := "#version 1.0\na: 1\n!!! junk\n"
	out, err = run(t, lenient, "decode")
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, out)

	_, err = run(t, lenient, "decode", "--strict")
	require.ErrorContains(t, err, "line 3")
}

func TestCheck(t *testing.T) {
	out, err := run(t, usersJSON, "check", "--no-color")
	require.NoError(t, err)
	require.Contains(t, out, "ok stdin")

	out, err = run(t, `{"text":"multi\nline","rows":[{"a":1},{"a":2,"b":null}]}`, "check", "--smart")
	require.NoError(t, err)
	require.Contains(t, out, "ok")
}

func TestPrintDiff(t *testing.T) {
	var buf bytes.Buffer
	printDiff(&buf, true, "{\n  \"a\": 1\n}\n", "{\n  \"a\": 2\n}\n")
	require.Equal(t, " {\n-  \"a\": 1\n+  \"a\": 2\n }\n", buf.String())
}

func TestStats(t *testing.T) {
	out, err := run(t, usersJSON, "stats")
	require.NoError(t, err)
	require.Contains(t, out, "json")
	require.Contains(t, out, "tonl (smart)")
	require.Contains(t, out, "100.0%")
}

func TestProfile(t *testing.T) {
	profile := writeFile(t, "tonl.toml", []byte(`
[encode]
delimiter = ";"
type_hints = true

[decode]
to = "yaml"
`))

	out, err := run(t, usersJSON, "encode", "--config", profile)
	require.NoError(t, err)
	require.Equal(t, "#version 1.0\n#delimiter ;\nusers[2]{id:u32,name:str}:\n  1;Alice\n  2;Bob\n", out)

	out, err = run(t, usersJSON, "encode", "--config", profile, "-d", ",")
	require.NoError(t, err, "flags override the profile")
	require.Equal(t, "#version 1.0\nusers[2]{id:u32,name:str}:\n  1,Alice\n  2,Bob\n", out)

	out, err = run(t, usersTONL, "decode", "--config", profile)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "users:\n"))

	bad := writeFile(t, "bad.toml", []byte("[encode]\ndelimeter = \"|\"\n"))
	_, err = run(t, usersJSON, "encode", "--config", bad)
	require.ErrorContains(t, err, "encode.delimeter")
}

func TestEncode_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tonl")
	out, err := run(t, usersJSON, "encode", "-o", path)
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, usersTONL, string(data))
}
