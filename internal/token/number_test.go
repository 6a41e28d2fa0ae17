package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupNumber(t *testing.T) {
	testCases := []struct {
		input string
		typ   Type
		ok    bool
	}{
		{"0", INT, true},
		{"42", INT, true},
		{"-7", INT, true},
		{"3.14", FLOAT, true},
		{"-0.5", FLOAT, true},
		{"1e10", FLOAT, true},
		{"2.5E-3", FLOAT, true},
		{"1e+21", FLOAT, true},
		{"007", IDENT, false},
		{"+1", IDENT, false},
		{".5", IDENT, false},
		{"1.", IDENT, false},
		{"1e", IDENT, false},
		{"-", IDENT, false},
		{"", IDENT, false},
		{"12abc", IDENT, false},
		{"NaN", IDENT, false},
		{"Infinity", IDENT, false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			typ, ok := LookupNumber(tc.input)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.typ, typ)
		})
	}
}
