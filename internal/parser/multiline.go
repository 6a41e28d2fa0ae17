package parser

import "github.com/KimNorgaard/go-tonl/internal/strutil"

// tripleTracker follows whether a sequence of lines is inside an open
// """ string. A line outside opens a string when it holds an odd number of
// unescaped triple-quote runs; a line inside closes it when it ends with
// an unescaped run of three or more quotes.
type tripleTracker struct {
	inside bool
}

// feed advances the tracker past line.
func (t *tripleTracker) feed(line string) {
	if t.inside {
		t.inside = !strutil.ClosesTriple(line)
		return
	}
	t.inside = strutil.CountTriples(line)%2 == 1
}
