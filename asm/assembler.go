// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"errors"
	"io"
	"log"
	"maps"
	"slices"
	"strings"
)

// Assembler is the EasyCPU assembler.
type Assembler struct {
	Verbose  bool // If set, verbosely logs the assembler actions.
	Optimize bool // If set, every stack op is compiled as if inside @STACKOPT.

	predefine   map[string]string // Predefined equate expressions.
	maxAttempts int               // Resolver pass bound; zero is MAX_ATTEMPTS.
}

// Predefine defines an equate before parsing, as if by '@EQU name expr'.
// The name is upper-cased, as statement text is.
func (asm *Assembler) Predefine(name string, expr string) {
	name = strings.ToUpper(name)
	if asm.predefine == nil {
		asm.predefine = map[string]string{name: expr}
	} else {
		asm.predefine[name] = expr
	}
}

// Parse parses source text into atoms. Every failing statement is
// reported, each error carrying its source position.
func (asm *Assembler) Parse(text string) (atoms []Atom, err error) {
	p := &parser{
		verbose: asm.Verbose,
		src:     []rune(text),
		equate:  make(map[string]int),
	}

	for _, name := range slices.Sorted(maps.Keys(asm.predefine)) {
		value, err := evalEquate(name, asm.predefine[name], p.equate)
		if err != nil {
			p.errs = append(p.errs, err)
			continue
		}
		p.equate[name] = value
	}

	atoms = p.parseRange(Position{}, len(p.src))
	if len(p.errs) != 0 {
		atoms = nil
		err = errors.Join(p.errs...)
		return
	}

	if asm.Verbose {
		for _, atom := range atoms {
			log.Printf("%v: %v %v", atom.Pos, atom.Kind, atom)
		}
	}

	return
}

// Assemble parses and compiles source text.
func (asm *Assembler) Assemble(text string) (prog *Program, err error) {
	atoms, err := asm.Parse(text)
	if err != nil {
		return
	}

	return asm.Compile(atoms)
}

// AssembleFrom assembles all of the text from a reader.
func (asm *Assembler) AssembleFrom(input io.Reader) (prog *Program, err error) {
	text, err := io.ReadAll(input)
	if err != nil {
		return
	}

	return asm.Assemble(string(text))
}
