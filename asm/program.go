package asm

import (
	"iter"

	"github.com/ezrec/easycpu/cpu"
)

// Program is a compiled instruction stream, with the source position
// of the atom that produced each word.
type Program struct {
	Instructions []cpu.Instruction
	Source       []Position
}

// Words encodes the program. Instructions were validated when they
// were emitted.
func (prog *Program) Words() (words []uint16) {
	words = make([]uint16, len(prog.Instructions))
	for n, ins := range prog.Instructions {
		words[n], _ = ins.Encode()
	}
	return
}

// Binary is the big-endian byte image of the program.
func (prog *Program) Binary() (data []byte) {
	return cpu.Pack(prog.Words())
}

// Codes iterates over each address and its instruction.
func (prog *Program) Codes() iter.Seq2[uint16, cpu.Instruction] {
	return func(yield func(addr uint16, ins cpu.Instruction) bool) {
		for n, ins := range prog.Instructions {
			if !yield(uint16(n), ins) {
				return
			}
		}
	}
}

// Debug returns the source position that produced the word at addr.
func (prog *Program) Debug(addr uint16) (pos Position, ok bool) {
	if int(addr) >= len(prog.Source) {
		return
	}
	return prog.Source[addr], true
}
