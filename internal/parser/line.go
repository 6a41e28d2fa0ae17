package parser

import "strings"

type scanState int

const (
	stateUnquoted scanState = iota
	stateQuoted
	stateTriple
)

// ParseLine splits one row of delimited fields. Delimiters inside "..."
// or """...""" strings and inside [...] inline arrays do not split. Fields
// are returned trimmed and still in their wire form (quotes included).
// A blank line has no fields.
func ParseLine(line string, delim byte) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	var fields []string
	state := stateUnquoted
	depth := 0
	start := 0
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch state {
		case stateQuoted:
			switch c {
			case '\\':
				i++
			case '"':
				state = stateUnquoted
			}
		case stateTriple:
			switch c {
			case '\\':
				i++
			case '"':
				j := quoteRunEnd(line, i)
				if j-i >= 3 {
					state = stateUnquoted
				}
				i = j - 1
			}
		default:
			switch {
			case c == '"':
				switch j := quoteRunEnd(line, i); {
				case j-i >= 3:
					state = stateTriple
					i += 2
				case j-i == 2: // empty string
					i++
				default:
					state = stateQuoted
				}
			case c == '[':
				depth++
			case c == ']':
				if depth > 0 {
					depth--
				}
			case c == delim && depth == 0:
				fields = append(fields, strings.TrimSpace(line[start:i]))
				start = i + 1
			}
		}
	}
	return append(fields, strings.TrimSpace(line[start:]))
}

func quoteRunEnd(s string, i int) int {
	for i < len(s) && s[i] == '"' {
		i++
	}
	return i
}
