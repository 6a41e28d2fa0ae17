package strutil

import "strings"

// Indent returns the leading whitespace for the given nesting depth.
func Indent(depth, width int) string {
	if depth <= 0 || width <= 0 {
		return ""
	}
	return strings.Repeat(" ", depth*width)
}

// IndentOf returns the width of the leading whitespace of line. Tabs count
// as one column.
func IndentOf(line string) int {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}

// StripIndent removes at most n columns of leading whitespace.
func StripIndent(line string, n int) string {
	i := 0
	for i < n && i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[i:]
}

// IsBlank reports whether line holds only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
