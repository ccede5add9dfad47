package asm

import (
	"errors"
	"log"

	"github.com/ezrec/easycpu/cpu"
)

// CALL_SCOPE is the scope that holds synthesized CALL return labels.
const CALL_SCOPE = -1

type labelKey struct {
	scope int
	name  string
}

type scopeFrame struct {
	id       int
	optimize bool
}

// Context is the mutable state of one compilation. It is reset at the
// start of every pass; only the label address table carries over.
type Context struct {
	Verbose bool

	pc     int
	pos    Position
	output []cpu.Instruction
	source []Position

	labels    map[labelKey]int
	declared  map[labelKey]Position
	scopes    []scopeFrame
	recompile bool

	// Buffered stack ops of an optimizing scope.
	pending    []StackOp
	pendingPos Position
}

func newContext() *Context {
	return &Context{
		labels:   make(map[labelKey]int),
		declared: make(map[labelKey]Position),
	}
}

// PC is the address of the next emitted instruction.
func (ctx *Context) PC() int {
	return ctx.pc
}

// Recompile is set when a label address changed during the pass.
func (ctx *Context) Recompile() bool {
	return ctx.recompile
}

func (ctx *Context) reset(optimize bool) {
	ctx.pc = 0
	ctx.output = ctx.output[:0]
	ctx.source = ctx.source[:0]
	ctx.scopes = append(ctx.scopes[:0], scopeFrame{id: 0, optimize: optimize})
	ctx.recompile = false
	ctx.pending = ctx.pending[:0]
}

// declare registers every label of the atom sequence, so that lookups
// can tell forward references from unknown labels.
func (ctx *Context) declare(atoms []Atom) (errs []error) {
	scopes := []int{0}
	for _, atom := range atoms {
		switch atom.Kind {
		case ATOM_ENTER_SCOPE:
			scopes = append(scopes, atom.Scope)
		case ATOM_LEAVE_SCOPE:
			if len(scopes) > 1 {
				scopes = scopes[:len(scopes)-1]
			}
		case ATOM_LABEL:
			key := labelKey{scope: scopes[len(scopes)-1], name: atom.Label}
			if _, ok := ctx.declared[key]; ok {
				errs = append(errs, &ErrPos{Pos: atom.Pos, Err: ErrLabelRedefined(atom.Label)})
				continue
			}
			ctx.declared[key] = atom.Pos
		}
	}

	return
}

// Emit appends primitive instructions at the current address.
func (ctx *Context) Emit(list ...cpu.Instruction) (err error) {
	for _, ins := range list {
		err = ins.Validate()
		if err != nil {
			return
		}
		ctx.output = append(ctx.output, ins)
		ctx.source = append(ctx.source, ctx.pos)
		ctx.pc++
	}

	return
}

func (ctx *Context) scope() int {
	return ctx.scopes[len(ctx.scopes)-1].id
}

func (ctx *Context) optimizing() bool {
	return ctx.scopes[len(ctx.scopes)-1].optimize
}

func (ctx *Context) enter(id int, optimize bool) {
	ctx.scopes = append(ctx.scopes, scopeFrame{
		id:       id,
		optimize: optimize || ctx.optimizing(),
	})
}

func (ctx *Context) leave() {
	if len(ctx.scopes) > 1 {
		ctx.scopes = ctx.scopes[:len(ctx.scopes)-1]
	}
}

// address returns the address of a label key. A label not yet
// placed resolves to the current address and forces another pass.
func (ctx *Context) address(key labelKey) int {
	addr, ok := ctx.labels[key]
	if !ok {
		ctx.recompile = true
		return ctx.pc
	}
	return addr
}

// Lookup resolves a label name, searching from the innermost scope out.
func (ctx *Context) Lookup(name string) (addr int, err error) {
	for n := len(ctx.scopes) - 1; n >= 0; n-- {
		key := labelKey{scope: ctx.scopes[n].id, name: name}
		if _, ok := ctx.declared[key]; ok {
			return ctx.address(key), nil
		}
	}

	err = ErrUnknownLabel(name)
	return
}

// place puts a label at the current address.
func (ctx *Context) place(key labelKey) {
	addr, ok := ctx.labels[key]
	if ok && addr == ctx.pc {
		return
	}
	if ctx.Verbose {
		if ok {
			log.Printf("label %v moved %#04x => %#04x", key.name, addr, ctx.pc)
		} else {
			log.Printf("label %v at %#04x", key.name, ctx.pc)
		}
	}
	ctx.labels[key] = ctx.pc
	ctx.recompile = true
}

// flush compiles any buffered stack ops.
func (ctx *Context) flush() (err error) {
	if len(ctx.pending) == 0 {
		return
	}

	ops := Optimize(ctx.pending)
	ctx.pending = ctx.pending[:0]

	pos := ctx.pos
	ctx.pos = ctx.pendingPos
	defer func() { ctx.pos = pos }()

	err = compileWindow(ctx, ops)
	if err != nil {
		err = atPos(ctx.pendingPos, err)
	}

	return
}

// compileAtom compiles a single atom at the current address.
func (ctx *Context) compileAtom(atom Atom) (err error) {
	if atom.Kind == ATOM_INSTRUCTION {
		if op, ok := atom.Instruction.(StackOp); ok && ctx.optimizing() {
			if len(ctx.pending) == 0 {
				ctx.pendingPos = atom.Pos
			}
			ctx.pending = append(ctx.pending, op)
			return
		}
	}

	flushErr := ctx.flush()

	ctx.pos = atom.Pos

	switch atom.Kind {
	case ATOM_INSTRUCTION:
		err = atom.Instruction.emit(ctx)
	case ATOM_LABEL:
		ctx.place(labelKey{scope: ctx.scope(), name: atom.Label})
	case ATOM_ENTER_SCOPE:
		ctx.enter(atom.Scope, atom.Optimize)
	case ATOM_LEAVE_SCOPE:
		ctx.leave()
	}

	return errors.Join(flushErr, atPos(atom.Pos, err))
}
