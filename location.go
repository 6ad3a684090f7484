package jfilter

import "fmt"

// A Pos describes the location of a byte in the input stream.
type Pos struct {
	Offset int // byte offset from the start of the input, 0-based
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// advance updates p to account for consuming c.
func (p *Pos) advance(c byte) {
	p.Offset++
	if c == '\n' {
		p.Line++
		p.Column = 0
	} else {
		p.Column++
	}
}
