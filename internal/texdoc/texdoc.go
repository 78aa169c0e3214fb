package texdoc

import "fmt"

// Location points at a line in a physical source file.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"` // 1-based; 0 when unknown
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	if l.Line <= 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Fragment is a contiguous span of comment-stripped text from one physical
// file. Line is the 1-based line in File where the span begins.
type Fragment struct {
	File string
	Line int
	Text string
}

// Document is the fully expanded project in depth-first reading order.
type Document struct {
	Root      string // absolute path of the root file
	Fragments []Fragment
}

// Text joins all fragments. Intended for tests and diagnostics; the scanner
// walks fragments individually to keep source locations.
func (d *Document) Text() string {
	n := 0
	for _, f := range d.Fragments {
		n += len(f.Text)
	}
	buf := make([]byte, 0, n)
	for _, f := range d.Fragments {
		buf = append(buf, f.Text...)
	}
	return string(buf)
}
