// Package strutil holds the quoting, escaping and indentation primitives
// shared by the TONL encoder and parser.
package strutil

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/KimNorgaard/go-tonl/internal/token"
)

// NeedsQuote reports whether the string value s cannot be written bare
// without changing how it reads back.
func NeedsQuote(s string, delim byte) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return true
	}
	if s == token.Missing || token.LookupIdent(s) != token.IDENT {
		return true
	}
	if _, ok := token.LookupNumber(s); ok {
		return true
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ':', '{', '}', '[', ']', '#', '"':
			return true
		default:
			if c == delim || isControl(c) {
				return true
			}
		}
	}
	return false
}

// NeedsTriple reports whether s must use the triple-quoted form.
func NeedsTriple(s string, delim byte) bool {
	return strings.ContainsRune(s, '\n') || strings.IndexByte(s, delim) >= 0 || strings.IndexByte(s, ':') >= 0
}

// FormatString renders a string value as a bare word, a double-quoted
// string or a triple-quoted string. Only the triple form can span lines.
func FormatString(s string, delim byte) string {
	if NeedsTriple(s, delim) {
		return token.TripleQuote + EscapeTriple(s) + token.TripleQuote
	}
	if NeedsQuote(s, delim) {
		return Quote(s)
	}
	return s
}

// NeedsKeyQuote reports whether an object key must be quoted wherever it
// appears: on an entry line, in a header or in a column list.
func NeedsKeyQuote(key string, delim byte) bool {
	if key == "" || strings.TrimSpace(key) != key {
		return true
	}
	switch key[0] {
	case '#':
		return true
	case '@':
		// "@word rest" would read as a directive line.
		if strings.ContainsAny(key, " \t") {
			return true
		}
	}
	for i := 0; i < len(key); i++ {
		switch c := key[i]; c {
		case ':', ',', '{', '}', '[', ']', '"':
			return true
		default:
			if c == delim || isControl(c) {
				return true
			}
		}
	}
	return false
}

// FormatKey quotes key if needed.
func FormatKey(key string, delim byte) string {
	if NeedsKeyQuote(key, delim) {
		return Quote(key)
	}
	return key
}

func isControl(c byte) bool {
	return c < 0x20 || c == 0x7f
}

const hexDigits = "0123456789abcdef"

// Quote returns s wrapped in double quotes with JSON-style escapes.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if isControl(c) {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0xf])
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Unquote interprets s as a double-quoted string literal, including its
// surrounding quotes, and returns the string it represents.
func Unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("unterminated string")
	}
	body := s[1 : len(s)-1]
	if strings.IndexByte(body, '\\') < 0 {
		if strings.IndexByte(body, '"') >= 0 {
			return "", fmt.Errorf("unescaped quote in string")
		}
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '"' {
			return "", fmt.Errorf("unescaped quote in string")
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("unterminated escape sequence")
		}
		switch body[i] {
		case '"', '\\', '/':
			b.WriteByte(body[i])
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			r, n, err := readUnicodeEscape(body[i+1:])
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += n
		default:
			return "", fmt.Errorf("invalid escape sequence \\%c", body[i])
		}
	}
	return b.String(), nil
}

// readUnicodeEscape decodes the XXXX of a \uXXXX escape, combining a
// following low surrogate when present. It returns the rune and the number
// of bytes consumed from s.
func readUnicodeEscape(s string) (rune, int, error) {
	r, ok := readHex(s)
	if !ok {
		return 0, 0, fmt.Errorf("invalid unicode escape")
	}
	if !utf16.IsSurrogate(r) {
		return r, 4, nil
	}
	if len(s) >= 10 && s[4] == '\\' && s[5] == 'u' {
		if lo, ok := readHex(s[6:]); ok {
			if dec := utf16.DecodeRune(r, lo); dec != utf8.RuneError {
				return dec, 10, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("invalid unicode scalar value (unpaired surrogate)")
}

func readHex(s string) (rune, bool) {
	if len(s) < 4 {
		return 0, false
	}
	var val rune
	for i := 0; i < 4; i++ {
		var d rune
		switch ch := s[i]; {
		case '0' <= ch && ch <= '9':
			d = rune(ch - '0')
		case 'a' <= ch && ch <= 'f':
			d = rune(ch-'a') + 10
		case 'A' <= ch && ch <= 'F':
			d = rune(ch-'A') + 10
		default:
			return 0, false
		}
		val = val*16 + d
	}
	return val, true
}
