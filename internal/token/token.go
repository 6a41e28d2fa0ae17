package token

import "fmt"

// Type classifies a bare word found in TONL text.
type Type string

const (
	IDENT Type = "IDENT" // any bare word that is not a keyword

	// Keywords
	TRUE  Type = "TRUE"
	FALSE Type = "FALSE"
	NULL  Type = "NULL"
)

var keywords = map[string]Type{
	"true":  TRUE,
	"false": FALSE,
	"null":  NULL,
}

// LookupIdent checks the keywords table for a bare word.
// If the word is a keyword, it returns the keyword's type.
// Otherwise, it returns IDENT.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Directive is a recognised keyword following '@' at the start of a line.
type Directive string

const (
	Root    Directive = "root"
	Schema  Directive = "schema"
	Include Directive = "include"
)

var directives = map[string]Directive{
	"root":    Root,
	"schema":  Schema,
	"include": Include,
}

// LookupDirective reports whether word names a recognised directive.
func LookupDirective(word string) (Directive, bool) {
	d, ok := directives[word]
	return d, ok
}

// Delimiters accepted between fields of a row.
const (
	Comma     byte = ','
	Pipe      byte = '|'
	Tab       byte = '\t'
	Semicolon byte = ';'

	DefaultDelimiter = Comma
)

// Delimiters lists the supported delimiters in tie-breaking order.
var Delimiters = []byte{Comma, Pipe, Tab, Semicolon}

const (
	// Missing marks a tabular field that has no value on its row. It is
	// distinct from null and from the empty string.
	Missing = "-"

	TripleQuote = `"""`

	DefaultVersion = "1.0"

	VersionPrefix   = "#version"
	DelimiterPrefix = "#delimiter"

	// RootKey names the single entry that wraps a non-object root.
	RootKey = "root"
)

// IsDelimiter reports whether b is one of the supported delimiters.
func IsDelimiter(b byte) bool {
	for _, d := range Delimiters {
		if d == b {
			return true
		}
	}
	return false
}

// DelimiterString renders a delimiter the way the #delimiter header spells it.
func DelimiterString(b byte) string {
	if b == Tab {
		return `\t`
	}
	return string(b)
}

// ParseDelimiter is the inverse of DelimiterString. It also accepts the
// words "tab", "comma", "pipe" and "semicolon".
func ParseDelimiter(s string) (byte, error) {
	switch s {
	case ",", "comma":
		return Comma, nil
	case "|", "pipe":
		return Pipe, nil
	case `\t`, "\t", "tab":
		return Tab, nil
	case ";", "semicolon":
		return Semicolon, nil
	}
	return 0, fmt.Errorf("unsupported delimiter %q", s)
}
