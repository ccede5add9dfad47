package asm

import (
	"github.com/ezrec/easycpu/cpu"
)

// peephole rewrites the top of the compiled list. Replacements are
// pushed back on the queue so that rewrites cascade.
type peephole struct {
	compiled []StackOp
	queue    []StackOp // Reversed; the next op is last.
}

func (pp *peephole) top(n int) (op StackOp, ok bool) {
	if n > len(pp.compiled) {
		return
	}
	return pp.compiled[len(pp.compiled)-n], true
}

func (pp *peephole) replace(count int, ops ...StackOp) {
	pp.compiled = pp.compiled[:len(pp.compiled)-count]
	for n := len(ops) - 1; n >= 0; n-- {
		pp.queue = append(pp.queue, ops[n])
	}
}

// storeLoad: SVAR i; LVAR i => DUP; SVAR i
func (pp *peephole) storeLoad() bool {
	loadOp, ok := pp.top(1)
	if !ok {
		return false
	}
	storeOp, ok := pp.top(2)
	if !ok || storeOp.Value != loadOp.Value {
		return false
	}

	match := (storeOp.Code == STACK_SVAR && loadOp.Code == STACK_LVAR) ||
		(storeOp.Code == STACK_SARG && loadOp.Code == STACK_LARG)
	if !match {
		return false
	}

	pp.replace(2, StackOp{Code: STACK_DUP}, storeOp)
	return true
}

// constAdd: PCONST c; ADD => ACONST c, and PCONST c; SUB => ACONST -c
func (pp *peephole) constAdd() bool {
	aluOp, ok := pp.top(1)
	if !ok || aluOp.Code != STACK_ALU || aluOp.Alu != cpu.OP_ADD {
		return false
	}

	var negate bool
	switch aluOp.Flags {
	case 0:
	case cpu.FLAG_X | cpu.FLAG_O:
		negate = true
	default:
		return false
	}

	constOp, ok := pp.top(2)
	if !ok || constOp.Code != STACK_PCONST {
		return false
	}

	value := constOp.Value
	if negate {
		value = -value
	}

	pp.replace(2, StackOp{Code: STACK_ACONST, Value: value})
	return true
}

// dropPure: OP; DROP n => DROP (n - pushes + takes), for side effect
// free ops that push no more than n.
func (pp *peephole) dropPure() bool {
	dropOp, ok := pp.top(1)
	if !ok || dropOp.Code != STACK_DROP {
		return false
	}

	if dropOp.Value == 0 {
		pp.replace(1)
		return true
	}

	dropped, ok := pp.top(2)
	if !ok {
		return false
	}

	sig := dropped.Signature()
	count := int(dropOp.Value)
	if sig.Flags != 0 || sig.Pushes > count {
		return false
	}

	pp.replace(2, StackOp{Code: STACK_DROP, Value: uint16(count - sig.Pushes + sig.Takes)})
	return true
}

// Optimize applies the peephole rules to a stack op sequence until
// none of them fires.
func Optimize(ops []StackOp) []StackOp {
	pp := &peephole{
		compiled: make([]StackOp, 0, len(ops)),
		queue:    make([]StackOp, 0, len(ops)),
	}
	for n := len(ops) - 1; n >= 0; n-- {
		pp.queue = append(pp.queue, ops[n])
	}

	for {
		if pp.storeLoad() || pp.constAdd() || pp.dropPure() {
			continue
		}

		n := len(pp.queue)
		if n == 0 {
			break
		}
		pp.compiled = append(pp.compiled, pp.queue[n-1])
		pp.queue = pp.queue[:n-1]
	}

	return pp.compiled
}
