package asm

import (
	"fmt"
)

// Position is a zero-based location in source text.
type Position struct {
	Offset int // Rune offset.
	Line   int
	Column int
}

// String renders the position as a 1-based "line:column".
func (pos Position) String() string {
	return fmt.Sprintf("%d:%d", pos.Line+1, pos.Column+1)
}

// advance moves the position past a rune.
func (pos Position) advance(ch rune) Position {
	pos.Offset++
	if ch == '\n' {
		pos.Line++
		pos.Column = 0
	} else {
		pos.Column++
	}
	return pos
}
