package formatter

import (
	"github.com/KimNorgaard/go-tonl/internal/token"
)

const (
	defaultIndent               = 2
	defaultSemiUniformThreshold = 0.6
)

// Context is the configuration of one encode call.
type Context struct {
	Delimiter byte
	TypeHints bool
	Version   string
	// Indent is the number of spaces per nesting level. Values <= 0 fall
	// back to the default of 2.
	Indent int
	// MultiLinePrimitiveArrays writes primitive arrays as a header followed
	// by one indented line per value instead of a single line.
	MultiLinePrimitiveArrays bool
	// PrettyDelimiters puts a space after each delimiter.
	PrettyDelimiters bool
	// SemiUniformThreshold is the share of elements that must carry the
	// majority key set for a non-uniform array of objects to be tabular.
	SemiUniformThreshold float64
}

// NewContext returns a Context with the default settings.
func NewContext() *Context {
	return &Context{
		Delimiter:            token.DefaultDelimiter,
		Version:              token.DefaultVersion,
		Indent:               defaultIndent,
		SemiUniformThreshold: defaultSemiUniformThreshold,
	}
}

func (c *Context) normalized() *Context {
	n := *c
	if n.Delimiter == 0 {
		n.Delimiter = token.DefaultDelimiter
	}
	if n.Version == "" {
		n.Version = token.DefaultVersion
	}
	if n.Indent <= 0 {
		n.Indent = defaultIndent
	}
	if n.SemiUniformThreshold <= 0 || n.SemiUniformThreshold > 1 {
		n.SemiUniformThreshold = defaultSemiUniformThreshold
	}
	return &n
}

func (c *Context) joiner() string {
	if c.PrettyDelimiters && c.Delimiter != token.Tab {
		return string(c.Delimiter) + " "
	}
	return string(c.Delimiter)
}
