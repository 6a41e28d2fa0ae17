// Package testutil gives tests access to the shared TONL fixtures.
package testutil

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// TestdataFS holds the embedded fixtures. Every name.json has a name.tonl
// holding its expected encoding.
//
//go:embed testdata
var TestdataFS embed.FS

// ReadTestData reads and returns the content of an embedded test file.
func ReadTestData(name string) ([]byte, error) {
	data, err := fs.ReadFile(TestdataFS, path.Join("testdata", name))
	if err != nil {
		return nil, fmt.Errorf("failed to read test data file '%s': %w", name, err)
	}
	return data, nil
}

// Fixtures returns the sorted base names of the fixtures with extension
// ext, such as ".json".
func Fixtures(ext string) ([]string, error) {
	files, err := fs.Glob(TestdataFS, "testdata/*"+ext)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = strings.TrimSuffix(path.Base(f), ext)
	}
	slices.Sort(names)
	return names, nil
}
