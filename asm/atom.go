package asm

import (
	"fmt"
)

// AtomKind is the kind of a parsed atom.
type AtomKind int

const (
	ATOM_NOP         = AtomKind(0) // nop
	ATOM_INSTRUCTION = AtomKind(1) // instruction
	ATOM_LABEL       = AtomKind(2) // label
	ATOM_ENTER_SCOPE = AtomKind(3) // enter
	ATOM_LEAVE_SCOPE = AtomKind(4) // leave
)

var atomKindName = [...]string{"nop", "instruction", "label", "enter", "leave"}

func (kind AtomKind) String() string {
	if int(kind) < len(atomKindName) {
		return atomKindName[kind]
	}
	return fmt.Sprintf("AtomKind(%d)", int(kind))
}

// Instruction is anything that compiles into primitive instructions.
type Instruction interface {
	fmt.Stringer
	emit(ctx *Context) error
}

// Atom is one unit of parsed source.
type Atom struct {
	Kind        AtomKind
	Pos         Position
	Instruction Instruction // ATOM_INSTRUCTION
	Label       string      // ATOM_LABEL
	Scope       int         // ATOM_ENTER_SCOPE
	Optimize    bool        // ATOM_ENTER_SCOPE: stack optimization requested.
}

func (atom Atom) String() string {
	switch atom.Kind {
	case ATOM_INSTRUCTION:
		return atom.Instruction.String()
	case ATOM_LABEL:
		return atom.Label + ":"
	case ATOM_ENTER_SCOPE:
		if atom.Optimize {
			return fmt.Sprintf("@STACKOPT { # %d", atom.Scope)
		}
		return fmt.Sprintf("{ # %d", atom.Scope)
	case ATOM_LEAVE_SCOPE:
		return "}"
	}
	return ""
}
