package asm

import (
	"strconv"

	"github.com/ezrec/easycpu/cpu"
)

// stackRegs are the registers assigned to one stack op.
// Ops may relabel outs instead of emitting moves.
type stackRegs struct {
	inps  []cpu.Register
	outs  []cpu.Register
	temps []cpu.Register
}

// movIf moves src to dst unless they are the same register.
func movIf(dst, src cpu.Register) []cpu.Instruction {
	if dst == src {
		return nil
	}
	return []cpu.Instruction{mov(dst, src)}
}

// localAddr computes the address of a frame slot. Locals sit above
// LP, arguments sit below the saved LP, return SP, and return address.
func localAddr(dst cpu.Register, arg bool, index uint16) []cpu.Instruction {
	offset := index
	if arg {
		offset = ^uint16(3) - index
	}
	return append([]cpu.Instruction{mov(dst, cpu.REG_LP)}, constSequence(true, dst, offset)...)
}

func locInit(locals uint16) []cpu.Instruction {
	return append([]cpu.Instruction{
		store(cpu.REG_LP, cpu.REG_SP, 0),
		inc(cpu.REG_LP, cpu.REG_SP),
	}, constSequence(true, cpu.REG_SP, locals+1)...)
}

func locEnd() []cpu.Instruction {
	return []cpu.Instruction{
		dec(cpu.REG_SP, cpu.REG_LP),
		load(cpu.REG_LP, cpu.REG_SP, 0),
	}
}

// execute emits the register code of the op.
func (op StackOp) execute(ctx *Context, regs *stackRegs) (err error) {
	var list []cpu.Instruction

	switch op.Code {
	case STACK_INIT:
		list = append(constSequence(false, cpu.REG_SP, cpu.STACK_BASE), mov(cpu.REG_LP, cpu.REG_SP))
	case STACK_PUZX:
		list = []cpu.Instruction{mov(regs.outs[0], cpu.REG_ZX)}
	case STACK_PCONST:
		list = constSequence(false, regs.outs[0], op.Value)
	case STACK_ACONST:
		list = append(movIf(regs.outs[0], regs.inps[0]), constSequence(true, regs.outs[0], op.Value)...)
	case STACK_PLABEL:
		var addr int
		addr, err = ctx.Lookup(op.Label)
		if err != nil {
			return
		}
		list = labelSequence(regs.outs[0], addr-ctx.pc)
	case STACK_DUP:
		regs.outs[0], regs.outs[1] = regs.inps[0], regs.inps[0]
	case STACK_SWP:
		regs.outs[0], regs.outs[1] = regs.inps[1], regs.inps[0]
	case STACK_DROP:
	case STACK_PUSH:
		list = []cpu.Instruction{mov(regs.outs[0], op.Reg)}
	case STACK_POP:
		list = []cpu.Instruction{mov(op.Reg, regs.inps[0])}
	case STACK_ALU:
		list = []cpu.Instruction{cpu.MakeAlu(op.Alu, op.Flags, regs.outs[0], regs.inps[0], regs.inps[1])}
	case STACK_INC:
		list = []cpu.Instruction{inc(regs.outs[0], regs.inps[0])}
	case STACK_DEC:
		list = []cpu.Instruction{dec(regs.outs[0], regs.inps[0])}
	case STACK_NOT:
		list = []cpu.Instruction{cpu.MakeAlu(cpu.OP_ADD, cpu.FLAG_O, regs.outs[0], regs.inps[0], cpu.REG_ZX)}
	case STACK_NEG:
		list = []cpu.Instruction{cpu.MakeAlu(cpu.OP_ADD, cpu.FLAG_Y|cpu.FLAG_O, regs.outs[0], regs.inps[0], cpu.REG_ZX)}
	case STACK_SHL:
		list = []cpu.Instruction{cpu.MakeAlu(cpu.OP_ADD, 0, regs.outs[0], regs.inps[0], regs.inps[0])}
	case STACK_LOAD:
		if len(regs.inps) == 2 {
			// The merge target is a copy; inps[0] may still be held below.
			list = append(movIf(regs.outs[0], regs.inps[0]),
				cpu.MakeMem(cpu.OP_LOAD, op.Flags, regs.outs[0], regs.inps[1], 0))
		} else {
			list = []cpu.Instruction{cpu.MakeMem(cpu.OP_LOAD, op.Flags, regs.outs[0], regs.inps[0], 0)}
		}
	case STACK_STORE:
		list = []cpu.Instruction{cpu.MakeMem(cpu.OP_STORE, op.Flags, regs.inps[0], regs.inps[1], 0)}
	case STACK_JUMP:
		cond := cpu.REG_ZX
		if len(regs.inps) > 0 {
			cond = regs.inps[0]
		}
		var addr int
		addr, err = ctx.Lookup(op.Label)
		if err != nil {
			return
		}
		list = jumpSequence(op.Jump, cond, addr-ctx.pc)
	case STACK_CALL:
		return op.call(ctx, regs.temps[0])
	case STACK_FUNC:
		list = append(constSequence(false, regs.temps[0], op.Result-op.Args-1),
			cpu.MakeAlu(cpu.OP_ADD, 0, regs.temps[0], regs.temps[0], cpu.REG_SP),
			store(regs.temps[0], cpu.REG_SP, 0),
			inc(cpu.REG_SP, cpu.REG_SP),
		)
		list = append(list, locInit(op.Value)...)
	case STACK_RET:
		list = append(locEnd(),
			load(regs.temps[0], cpu.REG_SP, -2),
			load(cpu.REG_SP, cpu.REG_SP, -1),
			mov(cpu.REG_PC, regs.temps[0]),
		)
	case STACK_LOCINIT:
		list = locInit(op.Value)
	case STACK_LOCEND:
		list = locEnd()
	case STACK_LVAR, STACK_LARG:
		list = append(localAddr(regs.outs[0], op.Code == STACK_LARG, op.Value), load(regs.outs[0], regs.outs[0], 0))
	case STACK_SVAR, STACK_SARG:
		list = append(localAddr(regs.temps[0], op.Code == STACK_SARG, op.Value), store(regs.inps[0], regs.temps[0], 0))
	case STACK_AVAR, STACK_AARG:
		list = localAddr(regs.outs[0], op.Code == STACK_AARG, op.Value)
	}

	return ctx.Emit(list...)
}

// call pushes the return address, jumps to the target, and places
// the return label after the jump.
func (op StackOp) call(ctx *Context, temp cpu.Register) (err error) {
	ret := labelKey{scope: CALL_SCOPE, name: strconv.Itoa(op.Call)}

	err = ctx.Emit(labelSequence(temp, ctx.address(ret)-ctx.pc)...)
	if err != nil {
		return
	}

	err = ctx.Emit(store(temp, cpu.REG_SP, 0), inc(cpu.REG_SP, cpu.REG_SP))
	if err != nil {
		return
	}

	target, err := ctx.Lookup(op.Label)
	if err != nil {
		return
	}

	err = ctx.Emit(jumpSequence(JUMP_JMP, cpu.REG_ZX, target-ctx.pc)...)
	if err != nil {
		return
	}

	ctx.place(ret)
	return
}
