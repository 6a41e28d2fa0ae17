package tonl

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/KimNorgaard/go-tonl/internal/formatter"
	"github.com/KimNorgaard/go-tonl/internal/parser"
	"github.com/KimNorgaard/go-tonl/internal/token"
)

// Option configures encoding and decoding. Options that do not apply to
// an operation are ignored by it.
type Option func(*options) error

type options struct {
	delimiter    byte
	delimiterSet bool
	typeHints    bool
	typeHintsSet bool

	version                  string
	indent                   int
	multiLinePrimitiveArrays bool
	prettyDelimiters         bool
	semiUniformThreshold     float64

	strict        bool
	useInt64      bool
	maxDepth      int
	maxLineLength int
	maxFields     int
	maxInputSize  int
	logger        *slog.Logger
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		delimiter:     token.DefaultDelimiter,
		version:       token.DefaultVersion,
		maxDepth:      parser.DefaultMaxDepth,
		maxLineLength: parser.DefaultMaxLineLength,
		maxFields:     parser.DefaultMaxFields,
		maxInputSize:  parser.DefaultMaxInputSize,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *options) formatContext() *formatter.Context {
	return &formatter.Context{
		Delimiter:                o.delimiter,
		TypeHints:                o.typeHints,
		Version:                  o.version,
		Indent:                   o.indent,
		MultiLinePrimitiveArrays: o.multiLinePrimitiveArrays,
		PrettyDelimiters:         o.prettyDelimiters,
		SemiUniformThreshold:     o.semiUniformThreshold,
	}
}

func (o *options) parseContext() *parser.Context {
	ctx := &parser.Context{
		Strict:        o.strict,
		UseInt64:      o.useInt64,
		MaxDepth:      o.maxDepth,
		MaxLineLength: o.maxLineLength,
		MaxFields:     o.maxFields,
		MaxInputSize:  o.maxInputSize,
		Logger:        o.logger,
	}
	// An explicit delimiter overrides the document's #delimiter header.
	if o.delimiterSet {
		ctx.Delimiter = o.delimiter
	}
	return ctx
}

// Delimiter sets the field delimiter: ',', '|', '\t' or ';'. When
// decoding it overrides the document's #delimiter header.
func Delimiter(d byte) Option {
	return func(o *options) error {
		if !token.IsDelimiter(d) {
			return fmt.Errorf("tonl: unsupported delimiter %q", d)
		}
		o.delimiter, o.delimiterSet = d, true
		return nil
	}
}

// TypeHints controls whether column lists carry type hints such as
// {id:u32,name:str}.
func TypeHints(enabled bool) Option {
	return func(o *options) error {
		o.typeHints, o.typeHintsSet = enabled, true
		return nil
	}
}

// Version sets the version written in the document header.
func Version(v string) Option {
	return func(o *options) error {
		if v == "" || strings.ContainsAny(v, " \t\r\n") {
			return fmt.Errorf("tonl: invalid version %q", v)
		}
		o.version = v
		return nil
	}
}

// Indent sets the number of spaces per nesting level. Values <= 0 select
// the default of 2.
func Indent(n int) Option {
	return func(o *options) error {
		o.indent = n
		return nil
	}
}

// MultiLinePrimitiveArrays writes arrays of scalars with one value per
// line instead of on the header line.
func MultiLinePrimitiveArrays() Option {
	return func(o *options) error {
		o.multiLinePrimitiveArrays = true
		return nil
	}
}

// PrettyDelimiters puts a space after each delimiter.
func PrettyDelimiters() Option {
	return func(o *options) error {
		o.prettyDelimiters = true
		return nil
	}
}

// SemiUniformThreshold sets the share of elements, in (0, 1], that must
// carry the majority key set for an array of objects with differing keys
// to be written as a table. The default is 0.6.
func SemiUniformThreshold(f float64) Option {
	return func(o *options) error {
		if !(f > 0 && f <= 1) {
			return fmt.Errorf("tonl: semi-uniform threshold must be in (0, 1], got %v", f)
		}
		o.semiUniformThreshold = f
		return nil
	}
}

// Strict makes the decoder reject input it would otherwise repair:
// unparseable lines, surplus row values, array length mismatches and
// duplicate keys.
func Strict() Option {
	return func(o *options) error {
		o.strict = true
		return nil
	}
}

// UseInt64 makes the decoder return integer literals as int64 instead of
// float64 when decoding into an interface value.
func UseInt64() Option {
	return func(o *options) error {
		o.useInt64 = true
		return nil
	}
}

// MaxDepth sets the maximum nesting depth accepted by the decoder. This
// helps prevent stack exhaustion on hostile input.
//
// The depth n must be a positive integer.
func MaxDepth(n int) Option {
	return positive("max depth", n, func(o *options) { o.maxDepth = n })
}

// MaxLineLength sets the longest line, in bytes, the decoder accepts.
func MaxLineLength(n int) Option {
	return positive("max line length", n, func(o *options) { o.maxLineLength = n })
}

// MaxFieldsPerLine sets the largest number of delimited fields the decoder
// accepts on one line.
func MaxFieldsPerLine(n int) Option {
	return positive("max fields per line", n, func(o *options) { o.maxFields = n })
}

// MaxInputSize sets the largest document, in bytes, the decoder accepts.
func MaxInputSize(n int) Option {
	return positive("max input size", n, func(o *options) { o.maxInputSize = n })
}

func positive(name string, n int, set func(*options)) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("tonl: %s must be a positive integer", name)
		}
		set(o)
		return nil
	}
}

// Logger sets the logger that receives the anomalies the decoder repairs
// in non-strict mode, at debug level. The default is slog.Default().
func Logger(l *slog.Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}
