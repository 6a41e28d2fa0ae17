package types

import (
	"math"
	"strconv"
	"strings"

	tonlerrors "github.com/KimNorgaard/go-tonl/errors"
	"github.com/KimNorgaard/go-tonl/internal/strutil"
	"github.com/KimNorgaard/go-tonl/internal/token"
)

// Coerce converts a literal read from the wire into a value according to
// hint h. Integers come back as int64, also under f64 when they fit, and
// floats as float64. The literal null is accepted for every hint. Coerce
// never clamps: any literal that does not fit the hint is an error.
func Coerce(text string, h Hint) (any, error) {
	text = strings.TrimSpace(text)
	if text == "null" {
		return nil, nil
	}
	switch h {
	case U32, I32:
		return coerceInt(text, h)
	case F64:
		// Integers beyond 32 bits are hinted f64; keep them exact.
		if typ, ok := token.LookupNumber(text); ok && typ == token.INT {
			if n, err := strconv.ParseInt(text, 10, 64); err == nil {
				return n, nil
			}
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			if isRangeErr(err) {
				return nil, coerceErr(text, h, "value out of range")
			}
			return nil, coerceErr(text, h, "not a number")
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, coerceErr(text, h, "value is not finite")
		}
		return f, nil
	case Bool:
		switch text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, coerceErr(text, h, "not a boolean")
	case Null:
		return nil, coerceErr(text, h, "expected null")
	case Str:
		if isQuoted(text) {
			return ParsePrimitive(text)
		}
		return text, nil
	}
	return ParsePrimitive(text)
}

func coerceInt(text string, h Hint) (any, error) {
	if !isDecimal(text) {
		return nil, coerceErr(text, h, "not a decimal integer")
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, coerceErr(text, h, "value out of range")
	}
	if strconv.FormatInt(n, 10) != text {
		return nil, coerceErr(text, h, "value does not round-trip")
	}
	lo, hi := int64(0), int64(math.MaxUint32)
	if h == I32 {
		lo, hi = math.MinInt32, math.MaxInt32
	}
	if n < lo || n > hi {
		return nil, coerceErr(text, h, "value out of range")
	}
	return n, nil
}

// isDecimal matches ^-?[0-9]+$.
func isDecimal(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

func coerceErr(text string, h Hint, reason string) error {
	return &tonlerrors.CoercionError{Text: text, Hint: string(h), Reason: reason}
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// ParsePrimitive infers a value from the surface form of an untyped
// literal: quoted text is a string, true/false/null are literals, number
// literals are numbers and everything else is a bare string. An empty
// literal is null.
func ParsePrimitive(text string) (any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if len(text) >= 6 && strings.HasPrefix(text, token.TripleQuote) && strutil.ClosesTriple(text) {
		return strutil.UnescapeTriple(text[3 : len(text)-3]), nil
	}
	if text[0] == '"' {
		return strutil.Unquote(text)
	}
	switch token.LookupIdent(text) {
	case token.NULL:
		return nil, nil
	case token.TRUE:
		return true, nil
	case token.FALSE:
		return false, nil
	}
	switch typ, _ := token.LookupNumber(text); typ {
	case token.INT:
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f, nil
		}
	case token.FLOAT:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f, nil
		}
	}
	return text, nil
}
