// Package asm is the EasyCPU assembler.
//
// Source text is parsed into a flat sequence of atoms (instruction
// requests, labels, and scope markers), which are then compiled
// repeatedly until every label address reaches a fixed point.
//
// Besides the native instructions, the assembler provides
// macro-instructions (LCONST, ACONST, LLABEL, and the J* jumps) and
// a stack virtual instruction set (the '$' mnemonics), which is
// compiled to register code either naively or, inside a @STACKOPT
// block, through a peephole optimizer and register-window allocator.
package asm
