package tonl

import (
	"io"

	"github.com/KimNorgaard/go-tonl/internal/formatter"
	"github.com/KimNorgaard/go-tonl/internal/marshaler"
	"github.com/KimNorgaard/go-tonl/internal/parser"
)

// Encoder writes TONL documents to an output stream.
type Encoder struct {
	w     io.Writer
	opts  []Option
	smart bool
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the TONL document for v to the stream. Nothing is written
// if v cannot be encoded.
func (e *Encoder) Encode(v any) error {
	o, err := newOptions(e.opts)
	if err != nil {
		return err
	}

	tree, err := marshaler.Marshal(v, marshaler.Options{Parse: parseHookOutput})
	if err != nil {
		return err
	}
	if e.smart {
		o.applySmart(tree)
	}
	return formatter.New(e.w, o.formatContext()).Format(tree)
}

// parseHookOutput decodes the document returned by a Marshaler. Integers
// stay int64 so they are written back unchanged.
func parseHookOutput(b []byte) (any, error) {
	ctx := parser.NewContext()
	ctx.UseInt64 = true
	return parser.Parse(b, ctx)
}
