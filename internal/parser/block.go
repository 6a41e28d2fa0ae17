package parser

import (
	"errors"
	"fmt"
	"strings"

	tonlerrors "github.com/KimNorgaard/go-tonl/errors"
	"github.com/KimNorgaard/go-tonl/internal/strutil"
	"github.com/KimNorgaard/go-tonl/internal/token"
	"github.com/KimNorgaard/go-tonl/internal/types"
)

// parseMember parses the entry at line i and stores it in obj. It returns
// the index of the first line after the entry.
func (p *Parser) parseMember(obj map[string]any, i, limit int, hints map[string]Column) (int, error) {
	h, v, next, err := p.parseEntry(i, limit, hints)
	if errors.Is(err, errUnparseable) {
		return i + 1, p.tolerate(i, "invalid entry")
	}
	if err != nil {
		return 0, err
	}
	if h.Indexed {
		return next, p.tolerate(i, "element index outside an array")
	}
	return next, p.assign(obj, h.Key, v, i)
}

func (p *Parser) assign(obj map[string]any, key string, v any, i int) error {
	if _, dup := obj[key]; dup {
		if p.ctx.Strict {
			return p.syntaxError(i, fmt.Sprintf("duplicate key %q", key), nil)
		}
		p.ctx.logger().Debug("tonl: duplicate key, keeping last", "line", i+1, "key", key)
	}
	obj[key] = v
	return nil
}

// parseEntry parses the entry starting at line i together with any block
// below it. Lines at or beyond limit are never consumed. The returned
// index is the first line after the entry.
func (p *Parser) parseEntry(i, limit int, hints map[string]Column) (*Header, any, int, error) {
	line := p.lines[i]
	ind := strutil.IndentOf(line)
	h, rest, err := ParseObjectHeader(line[ind:])
	if err != nil {
		return nil, nil, 0, p.syntaxError(i, "malformed header", err)
	}
	if h == nil {
		return nil, nil, 0, errUnparseable
	}
	value := strings.TrimRight(rest, " \t")

	switch {
	case h.IsArray && h.HasColumns && value != "":
		if err := p.tolerate(i, "values after a tabular header"); err != nil {
			return nil, nil, 0, err
		}
		fallthrough
	case h.IsArray && value == "":
		end := p.blockEnd(i+1, ind, true, limit)
		v, err := p.parseArray(h, i, i+1, end)
		return h, v, end, err
	case h.IsArray:
		v, err := p.inlineValues(value, i)
		if err == nil {
			err = p.checkLength(h, len(v), i)
		}
		return h, v, i + 1, err
	case h.HasColumns && value != "":
		fields, err := p.fields(value, i)
		if err != nil {
			return nil, nil, 0, err
		}
		v, err := p.row(h.Columns, fields, i)
		return h, v, i + 1, err
	case value == "":
		end := p.blockEnd(i+1, ind, false, limit)
		v, err := p.parseObject(h, i, i+1, end)
		return h, v, end, err
	case strings.HasPrefix(value, token.TripleQuote) && strutil.CountTriples(value)%2 == 1:
		v, next, err := p.multiline(rest, i, ind)
		return h, v, next, err
	}
	v, err := p.leaf(value, hints[h.Key], i)
	return h, v, i + 1, err
}

// blockEnd returns the end of the block whose lines start at start and
// are indented deeper than ind. Array blocks also take lines at ind that
// are not entry headers, so rows written flush with their header still
// belong to it. Lines inside an open """ string always belong to the block.
func (p *Parser) blockEnd(start, ind int, array bool, limit int) int {
	var tt tripleTracker
	j := start
	for ; j < limit; j++ {
		line := p.lines[j]
		if !tt.inside && !strutil.IsBlank(line) {
			li := strutil.IndentOf(line)
			if li < ind || (li == ind && (!array || p.isHeader(line[li:]))) {
				break
			}
		}
		tt.feed(line)
	}
	if !tt.inside {
		for j > start && strutil.IsBlank(p.lines[j-1]) {
			j--
		}
	}
	return j
}

func (p *Parser) isHeader(text string) bool {
	h, _, err := ParseObjectHeader(text)
	return err != nil || h != nil
}

func (p *Parser) parseObject(h *Header, hi, start, end int) (map[string]any, error) {
	if err := p.ctx.enter(hi + 1); err != nil {
		return nil, err
	}
	defer p.ctx.leave()

	var hints map[string]Column
	if h.HasColumns {
		hints = make(map[string]Column, len(h.Columns))
		for _, c := range h.Columns {
			hints[c.Name] = c
		}
	}
	obj := map[string]any{}
	for i := start; i < end; {
		if skipLine(p.lines[i]) {
			i++
			continue
		}
		next, err := p.parseMember(obj, i, end, hints)
		if err != nil {
			return nil, err
		}
		i = next
	}
	return obj, nil
}

// parseArray parses the block of an array header at line hi. The shape of
// the block is decided by its first line: rows for a tabular header,
// element entries ([i]: ...) or plain delimited values otherwise.
func (p *Parser) parseArray(h *Header, hi, start, end int) ([]any, error) {
	if err := p.ctx.enter(hi + 1); err != nil {
		return nil, err
	}
	defer p.ctx.leave()

	if h.HasColumns {
		return p.tabular(h, hi, start, end)
	}
	for i := start; i < end; i++ {
		if skipLine(p.lines[i]) {
			continue
		}
		if p.isHeader(strings.TrimSpace(p.lines[i])) {
			return p.elements(h, hi, start, end)
		}
		break
	}
	return p.flat(h, hi, start, end)
}

func (p *Parser) tabular(h *Header, hi, start, end int) ([]any, error) {
	rows := make([]any, 0, min(h.Length, end-start))
	for i := start; i < end; i++ {
		if skipLine(p.lines[i]) {
			continue
		}
		fields, err := p.fields(strings.TrimSpace(p.lines[i]), i)
		if err != nil {
			return nil, err
		}
		row, err := p.row(h.Columns, fields, i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, p.checkLength(h, len(rows), hi)
}

// row builds an object from positional fields. The Missing-Field sentinel
// and fields past the end of a short row leave the key absent.
func (p *Parser) row(cols []Column, fields []string, i int) (map[string]any, error) {
	if len(fields) > len(cols) {
		msg := fmt.Sprintf("row has %d values, expected %d", len(fields), len(cols))
		if err := p.tolerate(i, msg); err != nil {
			return nil, err
		}
		fields = fields[:len(cols)]
	}
	obj := make(map[string]any, len(cols))
	for c, f := range fields {
		if f == token.Missing {
			continue
		}
		v, err := p.leaf(f, cols[c], i)
		if err != nil {
			return nil, err
		}
		obj[cols[c].Name] = v
	}
	return obj, nil
}

// elements parses a block of element entries. Indexed entries land at
// their index; anything else is appended in order.
func (p *Parser) elements(h *Header, hi, start, end int) ([]any, error) {
	items := []any{}
	for i := start; i < end; {
		if skipLine(p.lines[i]) {
			i++
			continue
		}
		eh, v, next, err := p.parseEntry(i, end, nil)
		if errors.Is(err, errUnparseable) {
			if err := p.tolerate(i, "invalid array element"); err != nil {
				return nil, err
			}
			i++
			continue
		}
		if err != nil {
			return nil, err
		}
		idx := len(items)
		if eh.Indexed {
			idx = eh.Index
		}
		// A dense array cannot hold more elements than its block has lines.
		if idx >= end-start {
			return nil, p.syntaxError(i, fmt.Sprintf("element index %d out of range", idx), nil)
		}
		for len(items) <= idx {
			items = append(items, nil)
		}
		items[idx] = v
		i = next
	}
	return items, p.checkLength(h, len(items), hi)
}

func (p *Parser) flat(h *Header, hi, start, end int) ([]any, error) {
	items := []any{}
	for i := start; i < end; i++ {
		if skipLine(p.lines[i]) {
			continue
		}
		vals, err := p.inlineValues(strings.TrimSpace(p.lines[i]), i)
		if err != nil {
			return nil, err
		}
		items = append(items, vals...)
	}
	return items, p.checkLength(h, len(items), hi)
}

func (p *Parser) checkLength(h *Header, n, hi int) error {
	if n == h.Length {
		return nil
	}
	return p.tolerate(hi, fmt.Sprintf("array length mismatch: declared %d, found %d", h.Length, n))
}

func (p *Parser) inlineValues(text string, i int) ([]any, error) {
	fields, err := p.fields(text, i)
	if err != nil {
		return nil, err
	}
	vals := make([]any, 0, len(fields))
	for _, f := range fields {
		v, err := p.leaf(f, Column{}, i)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func (p *Parser) fields(text string, i int) ([]string, error) {
	fields := ParseLine(text, p.delim)
	if p.ctx.MaxFields > 0 && len(fields) > p.ctx.MaxFields {
		return nil, &tonlerrors.SecurityError{Limit: "fields per line", Max: p.ctx.MaxFields, Actual: len(fields), Line: i + 1}
	}
	return fields, nil
}

// leaf decodes a single literal: an inline [a, b] array, a value coerced
// by the column's hint, or an untyped primitive.
func (p *Parser) leaf(text string, col Column, i int) (any, error) {
	if len(text) >= 2 && text[0] == '[' && text[len(text)-1] == ']' {
		if err := p.ctx.enter(i + 1); err != nil {
			return nil, err
		}
		defer p.ctx.leave()
		return p.inlineValues(text[1:len(text)-1], i)
	}
	var v any
	var err error
	if col.Hint != "" {
		v, err = types.Coerce(text, col.Hint)
	} else {
		v, err = types.ParsePrimitive(text)
	}
	if err != nil {
		return nil, p.valueError(i, err)
	}
	if n, ok := v.(int64); ok && !p.ctx.UseInt64 {
		return float64(n), nil
	}
	return v, nil
}

// multiline collects a """ string opened on line i. Continuation lines
// lose up to ind columns of indentation, the indentation of the entry.
func (p *Parser) multiline(rest string, i, ind int) (string, int, error) {
	parts := []string{rest[len(token.TripleQuote):]}
	for j := i + 1; j < len(p.lines); j++ {
		l := strutil.StripIndent(p.lines[j], ind)
		if strutil.ClosesTriple(l) {
			parts = append(parts, strutil.TrimClosingTriple(l))
			return strutil.UnescapeTriple(strings.Join(parts, "\n")), j + 1, nil
		}
		parts = append(parts, l)
	}
	return "", 0, p.syntaxError(i, "unterminated multiline string", nil)
}

func skipLine(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || t[0] == '#'
}
