package asm

import (
	"errors"
	"log"
	"slices"
)

// MAX_ATTEMPTS bounds the number of resolver passes.
const MAX_ATTEMPTS = 1024

// pass compiles every atom once from address zero.
func (ctx *Context) pass(atoms []Atom, optimize bool) (err error) {
	ctx.reset(optimize)

	var errs []error
	for _, atom := range atoms {
		err = ctx.compileAtom(atom)
		if err != nil {
			errs = append(errs, err)
		}
	}

	err = ctx.flush()
	if err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Compile resolves labels by compiling the atoms repeatedly until no
// label address changes.
func (asm *Assembler) Compile(atoms []Atom) (prog *Program, err error) {
	ctx := newContext()
	ctx.Verbose = asm.Verbose

	errs := ctx.declare(atoms)
	if len(errs) != 0 {
		err = errors.Join(errs...)
		return
	}

	attempts := asm.maxAttempts
	if attempts == 0 {
		attempts = MAX_ATTEMPTS
	}

	for attempt := range attempts {
		err = ctx.pass(atoms, asm.Optimize)
		if err != nil {
			return
		}

		if asm.Verbose {
			log.Printf("pass %d: %d words, recompile %v", attempt+1, ctx.pc, ctx.recompile)
		}

		if !ctx.recompile {
			prog = &Program{
				Instructions: slices.Clone(ctx.output),
				Source:       slices.Clone(ctx.source),
			}
			return
		}
	}

	err = ErrTooManyAttempts
	return
}
