// Package parser implements the TONL decoder: a line-oriented recursive
// parser that rebuilds the value tree from indentation and entry headers.
package parser

import (
	"errors"
	"strings"

	tonlerrors "github.com/KimNorgaard/go-tonl/errors"
	"github.com/KimNorgaard/go-tonl/internal/token"
)

var errUnparseable = errors.New("unparseable line")

// Parser holds the state of one decode.
type Parser struct {
	ctx   *Context
	lines []string
	delim byte
}

// Parse decodes data into the generic value tree: nil, bool, float64 (or
// int64), string, []any and map[string]any. A nil ctx uses NewContext().
func Parse(data []byte, ctx *Context) (any, error) {
	if ctx == nil {
		ctx = NewContext()
	}
	if ctx.MaxInputSize > 0 && len(data) > ctx.MaxInputSize {
		return nil, &tonlerrors.SecurityError{Limit: "input size", Max: ctx.MaxInputSize, Actual: len(data)}
	}
	p, err := New(string(data), ctx)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

// New splits text into lines and checks the per-line limits.
func New(text string, ctx *Context) (*Parser, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if ctx.MaxLineLength > 0 && len(line) > ctx.MaxLineLength {
			return nil, &tonlerrors.SecurityError{Limit: "line length", Max: ctx.MaxLineLength, Actual: len(line), Line: i + 1}
		}
		lines[i] = line
	}
	delim := ctx.Delimiter
	if delim == 0 {
		delim = token.DefaultDelimiter
	}
	return &Parser{ctx: ctx, lines: lines, delim: delim}, nil
}

// Parse parses the whole document. Header lines and directives may appear
// before or between top-level entries; a #delimiter line applies from the
// point it is read unless the Context fixes the delimiter.
func (p *Parser) Parse() (any, error) {
	root := map[string]any{}
	wrapped := false
	for i := 0; i < len(p.lines); {
		t := strings.TrimSpace(p.lines[i])
		switch {
		case t == "":
			i++
			continue
		case t[0] == '#':
			if err := p.meta(i, t); err != nil {
				return nil, err
			}
			i++
			continue
		case t[0] == '@':
			if d, ok := directiveOf(t); ok {
				if d == token.Root {
					wrapped = true
				}
				i++
				continue
			}
		}
		next, err := p.parseMember(root, i, len(p.lines), nil)
		if err != nil {
			return nil, err
		}
		i = next
	}
	if wrapped {
		return root[token.RootKey], nil
	}
	return root, nil
}

func (p *Parser) meta(i int, t string) error {
	fields := strings.Fields(t)
	if len(fields) != 2 {
		return nil
	}
	switch fields[0] {
	case token.VersionPrefix:
		if fields[1] != token.DefaultVersion {
			p.ctx.logger().Debug("tonl: unknown format version", "line", i+1, "version", fields[1])
		}
	case token.DelimiterPrefix:
		if p.ctx.Delimiter != 0 {
			return nil
		}
		d, err := token.ParseDelimiter(fields[1])
		if err != nil {
			if p.ctx.Strict {
				return p.syntaxError(i, "invalid delimiter header", err)
			}
			p.ctx.logger().Debug("tonl: ignoring delimiter header", "line", i+1, "error", err)
			return nil
		}
		p.delim = d
	}
	return nil
}

// directiveOf reports whether t is a directive line: '@', a keyword, then
// end of line or whitespace.
func directiveOf(t string) (token.Directive, bool) {
	j := 1
	for j < len(t) && isWordChar(t[j]) {
		j++
	}
	if j == 1 || (j < len(t) && t[j] != ' ' && t[j] != '\t') {
		return "", false
	}
	return token.LookupDirective(t[1:j])
}

func isWordChar(c byte) bool {
	return c == '_' || c == '-' || isDigit(c) || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func (p *Parser) syntaxError(i int, msg string, err error) error {
	from, to := max(i-2, 0), min(i+3, len(p.lines))
	return &tonlerrors.ParseError{
		Message: msg,
		Line:    i + 1,
		Text:    p.lines[i],
		Context: p.lines[from:to],
		Err:     err,
	}
}

func (p *Parser) valueError(i int, err error) error {
	return &tonlerrors.ParseError{Message: "invalid value", Line: i + 1, Text: p.lines[i], Err: err}
}

// tolerate reports an anomaly that strict mode rejects and non-strict mode
// logs and skips.
func (p *Parser) tolerate(i int, msg string) error {
	if p.ctx.Strict {
		return p.syntaxError(i, msg, nil)
	}
	p.ctx.logger().Debug("tonl: skipping malformed input", "line", i+1, "reason", msg, "text", p.lines[i])
	return nil
}
