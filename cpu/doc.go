// Package cpu describes the EasyCPU 16-bit instruction set.
//
// The machine has eight registers (ZX, PC, R2-R5, LP, SP) and five native
// instruction shapes packed into a single 16-bit word: NOP, BRANCH, LOAD,
// STORE and the two ALU operations AND and ADD. Any other word is raw data.
//
// This package provides the bit-exact codec between Instruction values and
// machine words, plus the textual disassembly of each shape. It has no
// notion of execution; see the emulator package for that.
package cpu
