package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KimNorgaard/go-tonl/internal/strutil"
	"github.com/KimNorgaard/go-tonl/internal/types"
)

// Column describes one column of a header's column list.
type Column struct {
	Name string
	Hint types.Hint // empty when the column carries no hint
	// Array marks a column declared with a "[]" suffix: its fields hold
	// inline primitive arrays.
	Array bool
}

// Header is a parsed entry header. Every entry line starts with one:
//
//	key:            bare key, value or block follows
//	key{a,b}:       object with a column list
//	key[N]:         array of N elements
//	key[N]{a,b}:    tabular array
//
// The key may be quoted, or be an element index written as [i].
type Header struct {
	Key     string
	Indexed bool // the key was an element index, [i]
	Index   int

	IsArray bool
	Length  int

	HasColumns bool
	Columns    []Column
}

// ParseObjectHeader parses the header at the start of line, which must not
// carry leading indentation. It returns the header and the text after the
// colon with leading whitespace removed. A line that is not a header at all
// yields a nil header and no error; a header with a malformed length or
// column list is an error.
func ParseObjectHeader(line string) (*Header, string, error) {
	s := line
	if s == "" {
		return nil, "", nil
	}
	h := &Header{}
	i := 0
	switch {
	case s[0] == '"':
		end := scanQuoted(s, 0)
		if end < 0 {
			return nil, "", nil
		}
		key, err := strutil.Unquote(s[:end])
		if err != nil {
			return nil, "", nil
		}
		h.Key, i = key, end
	case s[0] == '[' && len(s) > 1 && isDigit(s[1]):
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, "", fmt.Errorf("unterminated element index")
		}
		n, ok := atoi(s[1:end])
		if !ok {
			return nil, "", fmt.Errorf("invalid element index %q", s[1:end])
		}
		h.Key, h.Indexed, h.Index, i = s[1:end], true, n, end+1
	default:
		j := strings.IndexAny(s, "[{:")
		if j <= 0 {
			return nil, "", nil
		}
		key := strings.TrimRight(s[:j], " \t")
		if key == "" {
			return nil, "", nil
		}
		h.Key, i = key, j
	}

	if i < len(s) && s[i] == '[' {
		end := strings.IndexByte(s[i:], ']')
		if end < 0 {
			return nil, "", fmt.Errorf("unterminated array length")
		}
		n, ok := atoi(s[i+1 : i+end])
		if !ok {
			return nil, "", fmt.Errorf("invalid array length %q", s[i+1:i+end])
		}
		h.IsArray, h.Length = true, n
		i += end + 1
	}

	if i < len(s) && s[i] == '{' {
		end := scanColumnsEnd(s, i)
		if end < 0 {
			return nil, "", fmt.Errorf("unterminated column list")
		}
		cols, err := parseColumns(s[i+1 : end])
		if err != nil {
			return nil, "", err
		}
		h.HasColumns, h.Columns = true, cols
		i = end + 1
	}

	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i >= len(s) || s[i] != ':' {
		return nil, "", nil
	}
	return h, strings.TrimLeft(s[i+1:], " \t"), nil
}

// scanQuoted returns the index just past the double-quoted string starting
// at s[start], or -1 if it is not terminated.
func scanQuoted(s string, start int) int {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return -1
}

func scanColumnsEnd(s string, start int) int {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '"':
			end := scanQuoted(s, i)
			if end < 0 {
				return -1
			}
			i = end - 1
		case '}':
			return i
		}
	}
	return -1
}

// parseColumns parses "a,b:u32,tags[]:str,\"odd,name\"".
func parseColumns(list string) ([]Column, error) {
	cols := []Column{}
	if strings.TrimSpace(list) == "" {
		return cols, nil
	}
	start := 0
	for i := 0; i <= len(list); i++ {
		if i < len(list) {
			switch list[i] {
			case '"':
				end := scanQuoted(list, i)
				if end < 0 {
					return nil, fmt.Errorf("unterminated column name")
				}
				i = end - 1
				continue
			case ',':
			default:
				continue
			}
		}
		col, err := parseColumn(strings.TrimSpace(list[start:i]))
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		start = i + 1
	}
	return cols, nil
}

func parseColumn(s string) (Column, error) {
	var col Column
	rest := s
	if strings.HasPrefix(s, `"`) {
		end := scanQuoted(s, 0)
		name, err := strutil.Unquote(s[:end])
		if err != nil {
			return col, fmt.Errorf("invalid column name %s: %w", s, err)
		}
		col.Name, rest = name, s[end:]
	} else {
		j := strings.IndexAny(s, "[:")
		if j < 0 {
			j = len(s)
		}
		col.Name, rest = strings.TrimSpace(s[:j]), s[j:]
		if col.Name == "" {
			return col, fmt.Errorf("empty column name")
		}
	}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "[]") {
		col.Array = true
		rest = strings.TrimSpace(rest[2:])
	}
	if strings.HasPrefix(rest, ":") {
		// Unknown hints are dropped: hints describe, they do not constrain.
		if h, ok := types.ParseHint(strings.TrimSpace(rest[1:])); ok {
			col.Hint = h
		}
		rest = ""
	}
	if rest != "" {
		return col, fmt.Errorf("invalid column %q", s)
	}
	return col, nil
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func atoi(s string) (int, bool) {
	if s == "" || len(s) > 18 {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
