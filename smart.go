package tonl

import (
	"bytes"
	"maps"
	"slices"
	"strings"

	"github.com/KimNorgaard/go-tonl/internal/token"
)

// smartScanLimit bounds the bytes of string content MarshalSmart inspects.
const smartScanLimit = 1 << 20

// MarshalSmart is like Marshal but picks the delimiter for the data: the
// candidate (',', '|', '\t', ';') that occurs least often in the keys and
// string values, preferring ',' on ties. Type hints are off. Delimiter and
// TypeHints options given explicitly take precedence.
func MarshalSmart(v any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	e := &Encoder{w: &buf, opts: opts, smart: true}
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *options) applySmart(tree any) {
	if !o.delimiterSet {
		o.delimiter = chooseDelimiter(tree)
	}
	if !o.typeHintsSet {
		o.typeHints = false
	}
}

func chooseDelimiter(tree any) byte {
	c := &delimiterCounter{budget: smartScanLimit}
	c.walk(tree)
	best := 0
	for i := 1; i < len(token.Delimiters); i++ {
		if c.counts[i] < c.counts[best] {
			best = i
		}
	}
	return token.Delimiters[best]
}

type delimiterCounter struct {
	counts [4]int
	budget int
}

func (c *delimiterCounter) walk(v any) {
	if c.budget <= 0 {
		return
	}
	switch x := v.(type) {
	case string:
		c.count(x)
	case []any:
		for _, e := range x {
			c.walk(e)
		}
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(x)) {
			c.count(k)
			c.walk(x[k])
		}
	}
}

func (c *delimiterCounter) count(s string) {
	if len(s) > c.budget {
		s = s[:c.budget]
	}
	c.budget -= len(s)
	for i, d := range token.Delimiters {
		c.counts[i] += strings.Count(s, string(d))
	}
}
