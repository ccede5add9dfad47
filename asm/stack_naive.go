package asm

import (
	"slices"

	"github.com/ezrec/easycpu/cpu"
)

// emit compiles a single stack op directly against the memory stack.
func (op StackOp) emit(ctx *Context) (err error) {
	sig := op.Signature()
	general := cpu.GENERAL_REGISTERS

	regs := &stackRegs{
		outs: slices.Clone(general[:sig.Pushes]),
	}

	shift := -sig.Takes
	if !op.readsInputs() {
		regs.temps = slices.Clone(general[:sig.Temps])
	} else {
		regs.temps = slices.Clone(general[sig.Takes : sig.Takes+sig.Temps])
		regs.inps = slices.Clone(general[:sig.Takes])
		for n := range sig.Takes {
			err = ctx.Emit(load(regs.inps[n], cpu.REG_SP, shift+n))
			if err != nil {
				return
			}
		}
	}

	if sig.Flags&STACK_FLAG_IMPURE != 0 {
		err = adjustStack(ctx, &shift)
		if err != nil {
			return
		}
	}

	err = op.execute(ctx, regs)
	if err != nil {
		return
	}

	for _, reg := range regs.outs {
		err = ctx.Emit(store(reg, cpu.REG_SP, shift))
		if err != nil {
			return
		}
		shift++
	}

	return adjustStack(ctx, &shift)
}

// adjustStack moves SP by the pending shift.
func adjustStack(ctx *Context, shift *int) (err error) {
	for ; *shift < 0; *shift++ {
		err = ctx.Emit(dec(cpu.REG_SP, cpu.REG_SP))
		if err != nil {
			return
		}
	}

	for ; *shift > 0; *shift-- {
		err = ctx.Emit(inc(cpu.REG_SP, cpu.REG_SP))
		if err != nil {
			return
		}
	}

	return
}
