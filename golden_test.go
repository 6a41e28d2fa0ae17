package tonl_test

import (
	"encoding/json"
	"testing"

	"github.com/KimNorgaard/go-tonl"
	"github.com/KimNorgaard/go-tonl/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestGolden encodes every testdata/*.json fixture and compares the result
// with the .tonl file of the same name, then decodes that file and compares
// the tree with the JSON one.
func TestGolden(t *testing.T) {
	names, err := testutil.Fixtures(".json")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			src, err := testutil.ReadTestData(name + ".json")
			require.NoError(t, err)
			var want any
			require.NoError(t, json.Unmarshal(src, &want))

			expected, err := testutil.ReadTestData(name + ".tonl")
			require.NoError(t, err, "golden file not found")

			actual, err := tonl.Marshal(want)
			require.NoError(t, err)
			require.Equal(t, string(expected), string(actual), "encoded output does not match golden file")

			got, err := tonl.Parse(expected)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("decoded tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
