package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// maxReadSize caps what the tool reads from one input, after
// decompression.
const maxReadSize = 256 << 20

// readInput reads the named file, or stdin for "" and "-". Files ending
// in .gz or .zst are decompressed.
func readInput(stdin io.Reader, name string) ([]byte, error) {
	var r io.Reader = stdin
	if name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	switch filepath.Ext(name) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", name, err)
		}
		defer zr.Close()
		r = zr
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", name, err)
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(io.LimitReader(bufio.NewReader(r), maxReadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", displayName(name), err)
	}
	if len(data) > maxReadSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", displayName(name), maxReadSize)
	}
	return data, nil
}

// writeOutput writes data to the named file, or to w when name is empty.
func writeOutput(w io.Writer, name string, data []byte) error {
	if name == "" || name == "-" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(name, data, 0o644)
}

func displayName(name string) string {
	if name == "" || name == "-" {
		return "stdin"
	}
	return name
}

// sourceFormat picks the input format from an explicit name or the file
// extension, looking through compression suffixes. JSON is the default.
func sourceFormat(explicit, name string) (string, error) {
	if explicit != "" {
		switch f := strings.ToLower(explicit); f {
		case "json", "yaml":
			return f, nil
		case "yml":
			return "yaml", nil
		}
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", explicit)
	}
	base := strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ".zst")
	switch filepath.Ext(base) {
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "json", nil
}

// decodeSource parses JSON or YAML into a generic tree. JSON numbers keep
// their literal text so integers reach the encoder exactly.
func decodeSource(data []byte, format string) (any, error) {
	switch format {
	case "yaml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		return normalizeYAML(v), nil
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("invalid JSON: trailing data after the first value")
		}
		return v, nil
	}
}

// normalizeYAML turns the map[any]any nodes yaml.v3 produces for
// non-string keys into map[string]any.
func normalizeYAML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeYAML(e)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return m
	case []any:
		for i, e := range x {
			x[i] = normalizeYAML(e)
		}
		return x
	}
	return v
}

// encodeTarget renders a generic tree as indented JSON or as YAML.
func encodeTarget(v any, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(v)
	}
	return nil, fmt.Errorf("unsupported output format %q (want json or yaml)", format)
}

// useColor reports whether w is a terminal and colour was not disabled.
func useColor(w io.Writer, disabled bool) bool {
	if disabled {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func paint(w io.Writer, disabled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if useColor(w, disabled) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func errorColor(w io.Writer, disabled bool) *color.Color {
	return paint(w, disabled, color.FgRed, color.Bold)
}
