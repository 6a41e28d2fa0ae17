package strutil

import "strings"

// EscapeTriple escapes s for use between triple quotes. Backslashes are
// doubled, every quote of a run of three or more is escaped so the content
// can never close the literal early, and carriage returns become \r because
// line splitting would otherwise drop them. Newlines stay literal.
func EscapeTriple(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			j := i
			for j < len(s) && s[j] == '"' {
				j++
			}
			if j-i >= 3 {
				for ; i < j; i++ {
					b.WriteString(`\"`)
				}
			} else {
				b.WriteString(s[i:j])
				i = j
			}
			i--
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// UnescapeTriple reverses EscapeTriple. It also accepts \n and \t so that
// hand-written content may spell them out.
func UnescapeTriple(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(c)
			continue
		}
		i++
	}
	return b.String()
}

// CountTriples counts the unescaped runs of three or more quotes in line.
// A line with an odd count opens a multiline string.
func CountTriples(line string) int {
	n := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			j := i
			for j < len(line) && line[j] == '"' {
				j++
			}
			if j-i >= 3 {
				n++
			}
			i = j - 1
		}
	}
	return n
}

// ClosesTriple reports whether line ends with an unescaped triple quote,
// ignoring trailing whitespace.
func ClosesTriple(line string) bool {
	line = strings.TrimRight(line, " \t\r")
	run := 0
	for run < len(line) && line[len(line)-1-run] == '"' {
		run++
	}
	if run < 3 {
		return false
	}
	// An odd number of backslashes before the run escapes its first quote.
	bs := 0
	for k := len(line) - run - 1; k >= 0 && line[k] == '\\'; k-- {
		bs++
	}
	if bs%2 == 1 {
		run--
	}
	return run >= 3
}

// TrimClosingTriple strips trailing whitespace and the closing triple
// quote from the last line of a multiline string.
func TrimClosingTriple(line string) string {
	line = strings.TrimRight(line, " \t\r")
	return line[:len(line)-3]
}
