package asm

import (
	"fmt"
	"strconv"

	"github.com/ezrec/easycpu/cpu"
)

// StackCode is a stack virtual instruction.
type StackCode int

const (
	STACK_INIT    = StackCode(iota) // INIT
	STACK_PUZX                      // PUZX
	STACK_PCONST                    // PCONST
	STACK_ACONST                    // ACONST
	STACK_PLABEL                    // PLABEL
	STACK_DUP                       // DUP
	STACK_SWP                       // SWP
	STACK_DROP                      // DROP
	STACK_PUSH                      // PUSH
	STACK_POP                       // POP
	STACK_ALU                       // ADD, AND, SUB, OR
	STACK_INC                       // INC
	STACK_DEC                       // DEC
	STACK_NOT                       // NOT
	STACK_NEG                       // NEG
	STACK_SHL                       // SHL
	STACK_LOAD                      // LOAD
	STACK_STORE                     // STORE
	STACK_JUMP                      // JMP, JEQ, ...
	STACK_CALL                      // CALL
	STACK_FUNC                      // FUNC
	STACK_RET                       // RET
	STACK_LOCINIT                   // LOCINIT
	STACK_LOCEND                    // LOCEND
	STACK_LVAR                      // LVAR
	STACK_SVAR                      // SVAR
	STACK_AVAR                      // AVAR
	STACK_LARG                      // LARG
	STACK_SARG                      // SARG
	STACK_AARG                      // AARG
)

var stackName = map[string]StackCode{
	"INIT":    STACK_INIT,
	"PUZX":    STACK_PUZX,
	"PCONST":  STACK_PCONST,
	"ACONST":  STACK_ACONST,
	"PLABEL":  STACK_PLABEL,
	"DUP":     STACK_DUP,
	"SWP":     STACK_SWP,
	"DROP":    STACK_DROP,
	"PUSH":    STACK_PUSH,
	"POP":     STACK_POP,
	"INC":     STACK_INC,
	"DEC":     STACK_DEC,
	"NOT":     STACK_NOT,
	"NEG":     STACK_NEG,
	"SHL":     STACK_SHL,
	"LOAD":    STACK_LOAD,
	"STORE":   STACK_STORE,
	"CALL":    STACK_CALL,
	"FUNC":    STACK_FUNC,
	"RET":     STACK_RET,
	"LOCINIT": STACK_LOCINIT,
	"LOCEND":  STACK_LOCEND,
	"LVAR":    STACK_LVAR,
	"SVAR":    STACK_SVAR,
	"AVAR":    STACK_AVAR,
	"LARG":    STACK_LARG,
	"SARG":    STACK_SARG,
	"AARG":    STACK_AARG,
}

// Stack op signature flags.
type StackFlags uint8

const (
	STACK_FLAG_IMPURE      = StackFlags(1 << 0) // Has side effects beyond its pushes.
	STACK_FLAG_SAVE_STACK  = StackFlags(1 << 1) // Memory stack must be current.
	STACK_FLAG_RESET_STACK = StackFlags(1 << 2) // Redefines SP.
)

// Signature describes the stack effect of an op.
type Signature struct {
	Takes  int
	Pushes int
	Temps  int
	Flags  StackFlags
}

// Sync is true if the op needs the register window written back.
func (sig Signature) Sync() bool {
	return sig.Flags&(STACK_FLAG_SAVE_STACK|STACK_FLAG_RESET_STACK) != 0
}

// StackOp is one stack virtual instruction.
type StackOp struct {
	Code   StackCode
	Value  uint16       // Constant, drop count, local index, or FUNC locals.
	Args   uint16       // FUNC
	Result uint16       // FUNC
	Label  string       // PLABEL, jumps, CALL
	Reg    cpu.Register // PUSH, POP, and jump condition.
	Alu    cpu.Op       // STACK_ALU
	Flags  cpu.Flags    // ALU and MEM flags.
	Jump   JumpOp       // STACK_JUMP
	Call   int          // CALL return label.
}

// Signature returns the stack effect of the op.
func (op StackOp) Signature() (sig Signature) {
	switch op.Code {
	case STACK_INIT, STACK_LOCINIT, STACK_LOCEND:
		sig.Flags = STACK_FLAG_IMPURE | STACK_FLAG_SAVE_STACK | STACK_FLAG_RESET_STACK
	case STACK_FUNC, STACK_RET:
		sig.Temps = 1
		sig.Flags = STACK_FLAG_IMPURE | STACK_FLAG_SAVE_STACK | STACK_FLAG_RESET_STACK
	case STACK_PUZX, STACK_PCONST, STACK_PLABEL,
		STACK_LVAR, STACK_AVAR, STACK_LARG, STACK_AARG:
		sig.Pushes = 1
	case STACK_PUSH:
		sig.Pushes = 1
		if op.Reg == cpu.REG_SP || op.Reg == cpu.REG_LP {
			sig.Flags = STACK_FLAG_SAVE_STACK
		}
	case STACK_ACONST, STACK_INC, STACK_DEC, STACK_NOT, STACK_NEG, STACK_SHL:
		sig.Takes = 1
		sig.Pushes = 1
	case STACK_DUP:
		sig.Takes = 1
		sig.Pushes = 2
	case STACK_SWP:
		sig.Takes = 2
		sig.Pushes = 2
	case STACK_DROP:
		sig.Takes = int(op.Value)
	case STACK_POP:
		sig.Takes = 1
		sig.Flags = STACK_FLAG_IMPURE | STACK_FLAG_SAVE_STACK
	case STACK_ALU:
		sig.Takes = 2
		sig.Pushes = 1
	case STACK_LOAD:
		sig.Takes = 1
		if op.Flags&(cpu.FLAG_H|cpu.FLAG_L) != 0 {
			// Partial and accumulating loads merge into the value below.
			sig.Takes = 2
		}
		sig.Pushes = 1
	case STACK_STORE:
		sig.Takes = 2
		sig.Flags = STACK_FLAG_IMPURE
	case STACK_JUMP:
		if op.Jump != JUMP_JMP {
			sig.Takes = 1
		}
		sig.Flags = STACK_FLAG_IMPURE | STACK_FLAG_SAVE_STACK
	case STACK_CALL:
		sig.Temps = 1
		sig.Flags = STACK_FLAG_IMPURE | STACK_FLAG_SAVE_STACK
	case STACK_SVAR, STACK_SARG:
		sig.Takes = 1
		sig.Temps = 1
		sig.Flags = STACK_FLAG_IMPURE
	}

	return
}

// readsInputs is false for ops that only discard their inputs.
func (op StackOp) readsInputs() bool {
	return op.Code != STACK_DROP
}

func (op StackOp) mnemonic() string {
	switch op.Code {
	case STACK_ALU:
		switch {
		case op.Alu == cpu.OP_ADD && op.Flags == cpu.FLAG_X|cpu.FLAG_O:
			return "SUB"
		case op.Alu == cpu.OP_AND && op.Flags == cpu.FLAG_X|cpu.FLAG_Y|cpu.FLAG_O:
			return "OR"
		}
		return op.Alu.String() + op.Flags.Suffix(op.Alu)
	case STACK_LOAD:
		return "LOAD" + op.Flags.Suffix(cpu.OP_LOAD)
	case STACK_STORE:
		return "STORE" + op.Flags.Suffix(cpu.OP_STORE)
	case STACK_JUMP:
		return op.Jump.String()
	}

	for name, code := range stackName {
		if code == op.Code {
			return name
		}
	}

	return fmt.Sprintf("StackCode(%d)", int(op.Code))
}

func (op StackOp) String() string {
	text := "$" + op.mnemonic()

	switch op.Code {
	case STACK_PCONST, STACK_ACONST:
		text += fmt.Sprintf(" %#x", op.Value)
	case STACK_DROP, STACK_LOCINIT, STACK_LVAR, STACK_SVAR, STACK_AVAR, STACK_LARG, STACK_SARG, STACK_AARG:
		text += " " + strconv.Itoa(int(op.Value))
	case STACK_FUNC:
		text += fmt.Sprintf(" %d %d %d", op.Value, op.Args, op.Result)
	case STACK_PUSH, STACK_POP:
		text += " " + op.Reg.String()
	case STACK_PLABEL, STACK_JUMP, STACK_CALL:
		text += " " + op.Label
	}

	return text
}

// stackStatement parses a '$' statement.
func (p *parser) stackStatement(parts *parts) (ins Instruction, err error) {
	op := StackOp{}

	if alias, ok := aluAliases[parts.command]; ok && !alias.unary {
		op.Code = STACK_ALU
		op.Alu = alias.op
		op.Flags = alias.flags
		if alias.flags == 0 {
			op.Flags, err = parts.opFlags(alias.op)
		} else {
			err = parts.noFlags()
		}
		return op, err
	}

	if jump, ok := parseJumpOp(parts.command); ok {
		if err = parts.noFlags(); err != nil {
			return
		}
		op.Code = STACK_JUMP
		op.Jump = jump
		op.Label, err = parts.label()
		return op, err
	}

	code, ok := stackName[parts.command]
	if !ok {
		err = ErrUnknownCommand("$" + parts.command)
		return
	}
	op.Code = code

	switch code {
	case STACK_LOAD, STACK_STORE:
		op.Flags, err = parts.opFlags(cpu.OP_LOAD)
		return op, err
	}

	if err = parts.noFlags(); err != nil {
		return
	}

	switch code {
	case STACK_PCONST, STACK_ACONST:
		op.Value, err = parts.word()
	case STACK_DROP:
		var count int
		count, err = parts.count(1)
		op.Value = uint16(count)
	case STACK_LOCINIT, STACK_LVAR, STACK_SVAR, STACK_AVAR, STACK_LARG, STACK_SARG, STACK_AARG:
		var index int
		index, err = parts.count(0)
		op.Value = uint16(index)
	case STACK_FUNC:
		var locals, args, result int
		if locals, err = parts.count(0); err != nil {
			return
		}
		if args, err = parts.count(0); err != nil {
			return
		}
		if result, err = parts.count(0); err != nil {
			return
		}
		op.Value, op.Args, op.Result = uint16(locals), uint16(args), uint16(result)
	case STACK_PUSH, STACK_POP:
		op.Reg, err = parts.register()
	case STACK_PLABEL:
		op.Label, err = parts.label()
	case STACK_CALL:
		op.Label, err = parts.label()
		p.calls++
		op.Call = p.calls
	}

	return op, err
}
