package asm

import (
	"strings"

	"github.com/ezrec/easycpu/cpu"
)

type aluAlias struct {
	op    cpu.Op
	flags cpu.Flags
	unary bool // dst src, with ZX as the second source.
}

var aluAliases = map[string]aluAlias{
	"ADD": {cpu.OP_ADD, 0, false},
	"AND": {cpu.OP_AND, 0, false},
	"SUB": {cpu.OP_ADD, cpu.FLAG_X | cpu.FLAG_O, false},
	"OR":  {cpu.OP_AND, cpu.FLAG_X | cpu.FLAG_Y | cpu.FLAG_O, false},
	"MOV": {cpu.OP_ADD, 0, true},
	"INC": {cpu.OP_ADD, cpu.FLAG_X | cpu.FLAG_Y | cpu.FLAG_O, true},
	"DEC": {cpu.OP_ADD, cpu.FLAG_Y, true},
	"NOT": {cpu.OP_ADD, cpu.FLAG_O, true},
	"NEG": {cpu.OP_ADD, cpu.FLAG_Y | cpu.FLAG_O, true},
}

type memAlias struct {
	op    cpu.Op
	flags cpu.Flags
}

var memAliases = map[string]memAlias{
	"LOAD":  {cpu.OP_LOAD, 0},
	"STORE": {cpu.OP_STORE, 0},
	"LADD":  {cpu.OP_LOAD, flagsLadd},
	"LSUB":  {cpu.OP_LOAD, flagsLsub},
}

// statement parses one upper-cased statement into an instruction.
func (p *parser) statement(text string) (ins Instruction, err error) {
	stack := strings.HasPrefix(text, "$")
	if stack {
		text = text[1:]
	}

	parts, err := splitParts(text, p.equate)
	if err != nil {
		return
	}

	if stack {
		return p.stackStatement(parts)
	}

	if alias, ok := aluAliases[parts.command]; ok {
		return parseAlu(parts, alias)
	}

	if alias, ok := memAliases[parts.command]; ok {
		return parseMem(parts, alias)
	}

	if op, ok := parseJumpOp(parts.command); ok {
		return parseJump(parts, op)
	}

	switch parts.command {
	case "NOP":
		if err = parts.noFlags(); err != nil {
			return
		}
		return primitive{cpu.Nop}, nil
	case "HALT":
		if err = parts.noFlags(); err != nil {
			return
		}
		return primitive{store(cpu.REG_ZX, cpu.REG_ZX, -1)}, nil
	case "BRANCH":
		return parseBranch(parts)
	case "LCONST", "ACONST":
		return parseLoadConst(parts, parts.command == "ACONST")
	case "LLABEL":
		return parseLoadLabel(parts)
	}

	err = ErrUnknownCommand(parts.command)
	return
}

func parseAlu(parts *parts, alias aluAlias) (ins Instruction, err error) {
	flags := alias.flags
	if alias.flags == 0 && !alias.unary {
		flags, err = parts.opFlags(alias.op)
	} else {
		err = parts.noFlags()
	}
	if err != nil {
		return
	}

	dst, err := parts.register()
	if err != nil {
		return
	}

	a, err := parts.register()
	if err != nil {
		return
	}

	b := cpu.REG_ZX
	if !alias.unary {
		b, err = parts.register()
		if err != nil {
			return
		}
	}

	ins = primitive{cpu.MakeAlu(alias.op, flags, dst, a, b)}
	return
}

func parseMem(parts *parts, alias memAlias) (ins Instruction, err error) {
	flags := alias.flags
	if alias.flags == 0 {
		flags, err = parts.opFlags(alias.op)
	} else {
		err = parts.noFlags()
	}
	if err != nil {
		return
	}

	dst, err := parts.register()
	if err != nil {
		return
	}

	addr, err := parts.register()
	if err != nil {
		return
	}

	shift, err := parts.shift(cpu.MEM_SHIFT_MAX)
	if err != nil {
		return
	}

	ins = primitive{cpu.MakeMem(alias.op, flags, dst, addr, shift)}
	return
}

func parseBranch(parts *parts) (ins Instruction, err error) {
	flags, err := parts.opFlags(cpu.OP_BRANCH)
	if err != nil {
		return
	}
	if flags == 0 {
		flags = flagsAll
	}

	cond, err := parts.register()
	if err != nil {
		return
	}

	if !parts.more() {
		err = ErrNotEnoughArguments
		return
	}

	shift, err := parts.shift(cpu.BRANCH_SHIFT_MAX)
	if err != nil {
		return
	}

	ins = primitive{cpu.MakeBranch(flags, cond, shift)}
	return
}

func parseLoadConst(parts *parts, add bool) (ins Instruction, err error) {
	if err = parts.noFlags(); err != nil {
		return
	}

	dst, err := parts.register()
	if err != nil {
		return
	}

	value, err := parts.word()
	if err != nil {
		return
	}

	ins = loadConst{add: add, dst: dst, value: value}
	return
}

func parseLoadLabel(parts *parts) (ins Instruction, err error) {
	if err = parts.noFlags(); err != nil {
		return
	}

	dst, err := parts.register()
	if err != nil {
		return
	}

	label, err := parts.label()
	if err != nil {
		return
	}

	ins = loadLabel{dst: dst, label: label}
	return
}

func parseJump(parts *parts, op JumpOp) (ins Instruction, err error) {
	if err = parts.noFlags(); err != nil {
		return
	}

	cond := cpu.REG_ZX
	if op != JUMP_JMP {
		cond, err = parts.register()
		if err != nil {
			return
		}
	}

	label, err := parts.label()
	if err != nil {
		return
	}

	ins = jump{op: op, cond: cond, label: label}
	return
}
