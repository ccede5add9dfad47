package asm

import (
	"errors"
	"slices"

	"github.com/ezrec/easycpu/cpu"
)

var errWindowExhausted = errors.New(f("stack window exhausted"))

// window keeps the top of the stack in general registers, oldest first.
// Entries are written back to memory only at sync points or when a
// register is needed.
type window struct {
	ctx  *Context
	regs []cpu.Register
}

// spillOne writes the oldest window entry to the memory stack.
func (w *window) spillOne() error {
	reg := w.regs[0]
	w.regs = w.regs[1:]
	return w.ctx.Emit(store(reg, cpu.REG_SP, 0), inc(cpu.REG_SP, cpu.REG_SP))
}

// spill writes the whole window to the memory stack.
func (w *window) spill() (err error) {
	for len(w.regs) > 0 {
		err = w.spillOne()
		if err != nil {
			return
		}
	}
	return
}

// free allocates a register outside of used and the window,
// spilling the window as needed.
func (w *window) free(used []cpu.Register) (reg cpu.Register, err error) {
	for {
		for _, reg = range cpu.GENERAL_REGISTERS {
			if !slices.Contains(used, reg) && !slices.Contains(w.regs, reg) {
				return
			}
		}

		if len(w.regs) == 0 {
			err = errWindowExhausted
			return
		}

		err = w.spillOne()
		if err != nil {
			return
		}
	}
}

// input pops the top of the stack into a register.
func (w *window) input(used []cpu.Register, reads bool) (reg cpu.Register, err error) {
	if n := len(w.regs); n > 0 {
		reg = w.regs[n-1]
		w.regs = w.regs[:n-1]
		return
	}

	if !reads {
		reg = cpu.REG_ZX
		err = w.ctx.Emit(dec(cpu.REG_SP, cpu.REG_SP))
		return
	}

	reg, err = w.free(used)
	if err != nil {
		return
	}

	err = w.ctx.Emit(dec(cpu.REG_SP, cpu.REG_SP), load(reg, cpu.REG_SP, 0))
	return
}

func (w *window) compile(op StackOp) (err error) {
	sig := op.Signature()
	regs := &stackRegs{}

	var used []cpu.Register
	if sig.Takes > 0 {
		regs.inps = make([]cpu.Register, sig.Takes)
	}
	for n := sig.Takes - 1; n >= 0; n-- {
		var reg cpu.Register
		reg, err = w.input(used, op.readsInputs())
		if err != nil {
			return
		}
		if reg != cpu.REG_ZX {
			used = append(used, reg)
		}
		regs.inps[n] = reg
	}

	if sig.Sync() {
		err = w.spill()
		if err != nil {
			return
		}
	}

	for range sig.Temps {
		var reg cpu.Register
		reg, err = w.free(used)
		if err != nil {
			return
		}
		regs.temps = append(regs.temps, reg)
		used = append(used, reg)
	}

	// Outputs may reuse the input registers, except a merge load's
	// address, which is read after the output is written.
	used = slices.Clone(regs.temps)
	if op.Code == STACK_LOAD && len(regs.inps) == 2 {
		used = append(used, regs.inps[1])
	}
	for range sig.Pushes {
		var reg cpu.Register
		reg, err = w.free(used)
		if err != nil {
			return
		}
		regs.outs = append(regs.outs, reg)
		used = append(used, reg)
	}

	err = op.execute(w.ctx, regs)
	if err != nil {
		return
	}

	w.regs = append(w.regs, regs.outs...)
	return
}

// compileWindow compiles a stack op sequence with the register window,
// leaving the memory stack fully written back.
func compileWindow(ctx *Context, ops []StackOp) (err error) {
	w := &window{ctx: ctx}

	for _, op := range ops {
		err = w.compile(op)
		if err != nil {
			return
		}
	}

	return w.spill()
}
