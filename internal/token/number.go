package token

// Number literal types returned by LookupNumber.
const (
	INT   Type = "INT"   // 12345
	FLOAT Type = "FLOAT" // 123.45, 1e9
)

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func consumeDigits(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func parseIntegerPart(s string, i int) (newIndex int, ok bool) {
	integerStart := i
	i = consumeDigits(s, i)
	if i == integerStart {
		return i, false // No digits found.
	}
	if i-integerStart > 1 && s[integerStart] == '0' {
		return i, false // Leading zeros are not allowed.
	}
	return i, true
}

func parseFractionalPart(s string, i int) (newIndex int, ok bool, isFloat bool) {
	if i >= len(s) || s[i] != '.' {
		return i, true, false
	}
	i++ // Consume '.'.
	fractionStart := i
	i = consumeDigits(s, i)
	if i == fractionStart {
		return i, false, true // No digits after '.'.
	}
	return i, true, true
}

func parseExponentPart(s string, i int) (newIndex int, ok bool, isFloat bool) {
	if i >= len(s) || (s[i] != 'e' && s[i] != 'E') {
		return i, true, false
	}
	i++ // Consume 'e' or 'E'.
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	exponentStart := i
	i = consumeDigits(s, i)
	if i == exponentStart {
		return i, false, true // No digits in exponent.
	}
	return i, true, true
}

// LookupNumber reports whether s is a complete number literal and, if so,
// whether it is an integer (INT) or carries a fraction or exponent (FLOAT).
// The grammar is JSON's: optional '-', no leading zeros, no leading '+'.
func LookupNumber(s string) (Type, bool) {
	if len(s) == 0 {
		return IDENT, false
	}
	i, isFloat := 0, false

	if s[i] == '-' {
		if len(s) == 1 {
			return IDENT, false
		}
		i++
	}

	var ok bool
	i, ok = parseIntegerPart(s, i)
	if !ok {
		return IDENT, false
	}

	var fracIsFloat bool
	i, ok, fracIsFloat = parseFractionalPart(s, i)
	if !ok {
		return IDENT, false
	}
	isFloat = isFloat || fracIsFloat

	var expIsFloat bool
	i, ok, expIsFloat = parseExponentPart(s, i)
	if !ok {
		return IDENT, false
	}
	isFloat = isFloat || expIsFloat

	// Must consume the whole string.
	if i != len(s) {
		return IDENT, false
	}

	if isFloat {
		return FLOAT, true
	}
	return INT, true
}
