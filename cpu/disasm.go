package cpu

import (
	"fmt"
	"strings"
)

var flagLetters = map[Op]string{
	OP_AND:    "XYO",
	OP_ADD:    "XYO",
	OP_LOAD:   "HLS",
	OP_STORE:  "HLS",
	OP_BRANCH: "EGL",
}

// FlagLetters returns the flag letters of an op, most significant first.
func FlagLetters(op Op) string {
	return flagLetters[op]
}

// ParseFlags parses a flag suffix (without the '.') for the op.
func ParseFlags(op Op, text string) (flags Flags, ok bool) {
	letters := flagLetters[op]
	if len(letters) == 0 {
		return 0, len(text) == 0
	}

	for _, ch := range text {
		n := strings.IndexRune(letters, ch)
		if n < 0 {
			return 0, false
		}
		flags |= Flags(1 << (2 - n))
	}

	return flags, true
}

// Suffix renders the flags as a mnemonic suffix, or "" if none are set.
func (flags Flags) Suffix(op Op) string {
	letters := flagLetters[op]
	if flags&FLAG_MASK == 0 || len(letters) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteByte('.')
	for n := range 3 {
		if flags&Flags(1<<(2-n)) != 0 {
			sb.WriteByte(letters[n])
		}
	}
	return sb.String()
}

// String renders the instruction as assembly text.
func (ins Instruction) String() string {
	mnemonic := ins.Op.String() + ins.Flags.Suffix(ins.Op)

	switch ins.Op {
	case OP_NOP:
		return mnemonic
	case OP_AND, OP_ADD:
		return fmt.Sprintf("%s %v %v %v", mnemonic, ins.Dst, ins.A, ins.B)
	case OP_LOAD, OP_STORE:
		if ins.Shift == 0 {
			return fmt.Sprintf("%s %v %v", mnemonic, ins.Dst, ins.A)
		}
		return fmt.Sprintf("%s %v %v %d", mnemonic, ins.Dst, ins.A, ins.Shift)
	case OP_BRANCH:
		return fmt.Sprintf("%s %v %d", mnemonic, ins.Dst, ins.Shift)
	}

	return fmt.Sprintf("0x%04X", ins.Word)
}

// Disassemble renders each word as one line of assembly.
func Disassemble(words []uint16) (lines []string) {
	lines = make([]string, len(words))
	for n, word := range words {
		lines[n] = Decode(word).String()
	}
	return
}
