package parser

import (
	"log/slog"

	tonlerrors "github.com/KimNorgaard/go-tonl/errors"
)

// Default resource limits.
const (
	DefaultMaxInputSize  = 10 << 20
	DefaultMaxLineLength = 100_000
	DefaultMaxFields     = 10_000
	DefaultMaxDepth      = 100
)

// Context carries the configuration of one decode call and its recursion
// counter. A Context must not be shared between concurrent calls.
type Context struct {
	// Delimiter overrides the #delimiter header when non-zero.
	Delimiter byte
	// Strict turns recoverable anomalies into errors.
	Strict bool
	// UseInt64 keeps integer literals as int64 instead of float64.
	UseInt64 bool

	MaxDepth      int
	MaxLineLength int
	MaxFields     int
	MaxInputSize  int

	// Logger receives debug records for anomalies skipped in non-strict
	// mode. If nil, slog.Default() is used.
	Logger *slog.Logger

	depth int
}

// NewContext returns a Context with the default limits.
func NewContext() *Context {
	return &Context{
		MaxDepth:      DefaultMaxDepth,
		MaxLineLength: DefaultMaxLineLength,
		MaxFields:     DefaultMaxFields,
		MaxInputSize:  DefaultMaxInputSize,
	}
}

func (c *Context) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// enter records one level of structural nesting. It fails without
// changing the counter once MaxDepth would be exceeded.
func (c *Context) enter(line int) error {
	if c.MaxDepth > 0 && c.depth+1 > c.MaxDepth {
		return &tonlerrors.SecurityError{Limit: "nesting depth", Max: c.MaxDepth, Actual: c.depth + 1, Line: line}
	}
	c.depth++
	return nil
}

func (c *Context) leave() {
	c.depth--
}
