package asm

import (
	"fmt"
	"strings"

	"github.com/ezrec/easycpu/cpu"
)

// primitive is a single native instruction.
type primitive struct {
	cpu.Instruction
}

func (ins primitive) emit(ctx *Context) error {
	return ctx.Emit(ins.Instruction)
}

// rawWords are data words from numbers and strings.
type rawWords []uint16

func (raw rawWords) String() string {
	text := make([]string, len(raw))
	for n, word := range raw {
		text[n] = fmt.Sprintf("%#04x", word)
	}
	return strings.Join(text, " ")
}

func (raw rawWords) emit(ctx *Context) (err error) {
	for _, word := range raw {
		err = ctx.Emit(cpu.MakeRaw(word))
		if err != nil {
			return
		}
	}
	return
}

func mov(dst, src cpu.Register) cpu.Instruction {
	return cpu.MakeAlu(cpu.OP_ADD, 0, dst, src, cpu.REG_ZX)
}

func inc(dst, src cpu.Register) cpu.Instruction {
	return cpu.MakeAlu(cpu.OP_ADD, cpu.FLAG_X|cpu.FLAG_Y|cpu.FLAG_O, dst, src, cpu.REG_ZX)
}

func dec(dst, src cpu.Register) cpu.Instruction {
	return cpu.MakeAlu(cpu.OP_ADD, cpu.FLAG_Y, dst, src, cpu.REG_ZX)
}

func load(dst, addr cpu.Register, shift int) cpu.Instruction {
	return cpu.MakeMem(cpu.OP_LOAD, 0, dst, addr, shift)
}

func store(src, addr cpu.Register, shift int) cpu.Instruction {
	return cpu.MakeMem(cpu.OP_STORE, 0, src, addr, shift)
}

var (
	flagsLadd = cpu.FLAG_H | cpu.FLAG_L
	flagsLsub = cpu.FLAG_H | cpu.FLAG_L | cpu.FLAG_S
	flagsAll  = cpu.FLAG_EQ | cpu.FLAG_GT | cpu.FLAG_LT
)

// loadConst is LCONST (absolute) or ACONST (add to destination).
type loadConst struct {
	add   bool
	dst   cpu.Register
	value uint16
}

func (lc loadConst) String() string {
	if lc.add {
		return fmt.Sprintf("ACONST %v %#x", lc.dst, lc.value)
	}
	return fmt.Sprintf("LCONST %v %#x", lc.dst, lc.value)
}

func (lc loadConst) emit(ctx *Context) error {
	return ctx.Emit(constSequence(lc.add, lc.dst, lc.value)...)
}

// constSequence picks the shortest encoding that loads (or adds) a
// constant. PC-relative forms keep the constant in the following word.
func constSequence(add bool, dst cpu.Register, value uint16) []cpu.Instruction {
	negated := -value

	src := cpu.REG_ZX
	memFlags := cpu.Flags(0)
	if add {
		src = dst
		memFlags = flagsLadd
	}

	switch {
	case value == 0:
		return []cpu.Instruction{mov(dst, src)}
	case value == 1:
		return []cpu.Instruction{inc(dst, src)}
	case value == 2 && (add || dst != cpu.REG_PC):
		return []cpu.Instruction{inc(dst, src), inc(dst, dst)}
	case value == 0xffff:
		return []cpu.Instruction{dec(dst, src)}
	case value <= cpu.RAW_WORD_MAX:
		return []cpu.Instruction{
			cpu.MakeMem(cpu.OP_LOAD, memFlags, dst, cpu.REG_PC, 1),
			cpu.MakeRaw(value),
		}
	case negated <= cpu.RAW_WORD_MAX && !add && dst != cpu.REG_PC:
		return []cpu.Instruction{
			mov(dst, cpu.REG_ZX),
			cpu.MakeMem(cpu.OP_LOAD, flagsLsub, dst, cpu.REG_PC, 1),
			cpu.MakeRaw(negated),
		}
	case negated <= cpu.RAW_WORD_MAX && add:
		return []cpu.Instruction{
			cpu.MakeMem(cpu.OP_LOAD, flagsLsub, dst, cpu.REG_PC, 1),
			cpu.MakeRaw(negated),
		}
	}

	return []cpu.Instruction{
		cpu.MakeMem(cpu.OP_LOAD, memFlags, dst, cpu.REG_PC, 2),
		cpu.MakeBranch(flagsAll, cpu.REG_ZX, 2),
		cpu.MakeRaw(value),
	}
}

// loadLabel is LLABEL: load the absolute address of a label.
type loadLabel struct {
	dst   cpu.Register
	label string
}

func (ll loadLabel) String() string {
	return fmt.Sprintf("LLABEL %v %v", ll.dst, ll.label)
}

func (ll loadLabel) emit(ctx *Context) (err error) {
	addr, err := ctx.Lookup(ll.label)
	if err != nil {
		return
	}
	return ctx.Emit(labelSequence(ll.dst, addr-ctx.pc)...)
}

// labelSequence loads PC+offset, where PC is the address of the
// first instruction of the sequence.
func labelSequence(dst cpu.Register, offset int) (list []cpu.Instruction) {
	if dst != cpu.REG_PC {
		list = append(list, mov(dst, cpu.REG_PC))
	}
	return append(list, constSequence(true, dst, uint16(offset))...)
}

// JumpOp is a jump condition.
type JumpOp int

const (
	JUMP_JMP = JumpOp(0) // JMP
	JUMP_JEQ = JumpOp(1) // JEQ
	JUMP_JGT = JumpOp(2) // JGT
	JUMP_JLT = JumpOp(3) // JLT
	JUMP_JGE = JumpOp(4) // JGE
	JUMP_JLE = JumpOp(5) // JLE
	JUMP_JNE = JumpOp(6) // JNE
)

var jumpName = [...]string{"JMP", "JEQ", "JGT", "JLT", "JGE", "JLE", "JNE"}

var jumpFlags = [...]cpu.Flags{
	flagsAll,
	cpu.FLAG_EQ,
	cpu.FLAG_GT,
	cpu.FLAG_LT,
	cpu.FLAG_EQ | cpu.FLAG_GT,
	cpu.FLAG_EQ | cpu.FLAG_LT,
	cpu.FLAG_GT | cpu.FLAG_LT,
}

func (op JumpOp) String() string {
	if int(op) < len(jumpName) {
		return jumpName[op]
	}
	return fmt.Sprintf("JumpOp(%d)", int(op))
}

// Flags are the BRANCH flags taken by the jump.
func (op JumpOp) Flags() cpu.Flags {
	return jumpFlags[op]
}

func parseJumpOp(name string) (op JumpOp, ok bool) {
	for n, text := range jumpName {
		if text == name {
			return JumpOp(n), true
		}
	}
	return
}

// jump is a conditional jump to a label.
type jump struct {
	op    JumpOp
	cond  cpu.Register
	label string
}

func (j jump) String() string {
	if j.op == JUMP_JMP {
		return fmt.Sprintf("JMP %v", j.label)
	}
	return fmt.Sprintf("%v %v %v", j.op, j.cond, j.label)
}

func (j jump) emit(ctx *Context) (err error) {
	addr, err := ctx.Lookup(j.label)
	if err != nil {
		return
	}
	return ctx.Emit(jumpSequence(j.op, j.cond, addr-ctx.pc)...)
}

// jumpSequence jumps by offset words from its own first instruction.
// Offsets beyond a BRANCH's reach branch on the complement condition
// around a PC-relative add.
func jumpSequence(op JumpOp, cond cpu.Register, offset int) []cpu.Instruction {
	if offset >= -cpu.BRANCH_SHIFT_MAX && offset <= cpu.BRANCH_SHIFT_MAX {
		return []cpu.Instruction{cpu.MakeBranch(op.Flags(), cond, offset)}
	}

	if op == JUMP_JMP {
		return constSequence(true, cpu.REG_PC, uint16(offset))
	}

	far := constSequence(true, cpu.REG_PC, uint16(offset-1))
	skip := cpu.MakeBranch(flagsAll&^op.Flags(), cond, len(far)+1)

	return append([]cpu.Instruction{skip}, far...)
}
