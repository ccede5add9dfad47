package cpu

import "math"

// Op is the primitive instruction shape.
type Op uint8

const (
	OP_NOP    = Op(0)  // NOP
	OP_BRANCH = Op(1)  // BRANCH
	OP_LOAD   = Op(2)  // LOAD
	OP_STORE  = Op(3)  // STORE
	OP_AND    = Op(4)  // AND
	OP_ADD    = Op(5)  // ADD
	OP_RAW    = Op(16) // RAW
)

var opName = map[Op]string{
	OP_NOP:    "NOP",
	OP_BRANCH: "BRANCH",
	OP_LOAD:   "LOAD",
	OP_STORE:  "STORE",
	OP_AND:    "AND",
	OP_ADD:    "ADD",
	OP_RAW:    "RAW",
}

func (op Op) String() string {
	name, ok := opName[op]
	if !ok {
		return f("Op(%d)", int(op))
	}
	return name
}

// IsAlu is true for the ALU shapes.
func (op Op) IsAlu() bool {
	return op == OP_AND || op == OP_ADD
}

// IsMem is true for the memory shapes.
func (op Op) IsMem() bool {
	return op == OP_LOAD || op == OP_STORE
}

// Flags are the three modifier bits (11..9) of an instruction.
// Their meaning depends on the shape.
type Flags uint8

const (
	// ALU
	FLAG_X = Flags(1 << 2) // negate x
	FLAG_Y = Flags(1 << 1) // negate y
	FLAG_O = Flags(1 << 0) // negate output

	// MEM
	FLAG_H = Flags(1 << 2) // high byte
	FLAG_L = Flags(1 << 1) // low byte
	FLAG_S = Flags(1 << 0) // swap bytes

	// BRANCH
	FLAG_EQ = Flags(1 << 2) // taken when cond == 0
	FLAG_GT = Flags(1 << 1) // taken when cond > 0
	FLAG_LT = Flags(1 << 0) // taken when cond < 0

	FLAG_MASK = Flags(7)
)

const (
	MEM_SHIFT_MAX    = 3
	BRANCH_SHIFT_MAX = 31
	RAW_WORD_MAX     = 0x0FFF // Largest RAW word that still decodes as RAW.
)

// Instruction is a decoded primitive instruction.
type Instruction struct {
	Op    Op
	Flags Flags
	Dst   Register // ALU and MEM destination, BRANCH condition.
	A     Register // ALU source a, MEM address.
	B     Register // ALU source b.
	Shift int8     // MEM and BRANCH displacement.
	Word  uint16   // RAW data word.
}

// Nop is the all-zero instruction.
var Nop = Instruction{Op: OP_NOP}

// MakeAlu creates an ALU instruction.
func MakeAlu(op Op, flags Flags, dst, a, b Register) Instruction {
	return Instruction{Op: op, Flags: flags & FLAG_MASK, Dst: dst, A: a, B: b}
}

// MakeMem creates a LOAD or STORE instruction.
func MakeMem(op Op, flags Flags, dst, addr Register, shift int) Instruction {
	return Instruction{Op: op, Flags: flags & FLAG_MASK, Dst: dst, A: addr, Shift: narrow(shift)}
}

// MakeBranch creates a BRANCH instruction.
func MakeBranch(flags Flags, cond Register, shift int) Instruction {
	return Instruction{Op: OP_BRANCH, Flags: flags & FLAG_MASK, Dst: cond, Shift: narrow(shift)}
}

// narrow saturates a shift to int8, so Validate still rejects it.
func narrow(shift int) int8 {
	return int8(max(math.MinInt8, min(math.MaxInt8, shift)))
}

// MakeRaw creates a RAW data word.
func MakeRaw(word uint16) Instruction {
	if word == 0 {
		return Nop
	}
	return Instruction{Op: OP_RAW, Word: word}
}

// Validate checks that the instruction fields are encodable.
func (ins Instruction) Validate() (err error) {
	limit := 0
	switch ins.Op {
	case OP_LOAD, OP_STORE:
		limit = MEM_SHIFT_MAX
	case OP_BRANCH:
		limit = BRANCH_SHIFT_MAX
	default:
		return nil
	}

	if int(ins.Shift) < -limit || int(ins.Shift) > limit {
		return &ErrInstruction{Instruction: ins, Err: ErrInvalidShift}
	}

	return nil
}

func magnitude(shift int8) (sign uint16, abs uint16) {
	if shift < 0 {
		return 1, uint16(-int(shift))
	}
	return 0, uint16(shift)
}

// Encode packs the instruction into a 16-bit word.
func (ins Instruction) Encode() (word uint16, err error) {
	err = ins.Validate()
	if err != nil {
		return
	}

	head := uint16(ins.Op)<<12 | uint16(ins.Flags&FLAG_MASK)<<9

	switch ins.Op {
	case OP_NOP:
		word = 0
	case OP_RAW:
		word = ins.Word
	case OP_AND, OP_ADD:
		word = head | uint16(ins.Dst&7)<<6 | uint16(ins.A&7)<<3 | uint16(ins.B&7)
	case OP_LOAD, OP_STORE:
		sign, abs := magnitude(ins.Shift)
		word = head | uint16(ins.Dst&7)<<6 | uint16(ins.A&7)<<3 | sign<<2 | abs
	case OP_BRANCH:
		sign, abs := magnitude(ins.Shift)
		word = head | uint16(ins.Dst&7)<<6 | sign<<5 | abs
	default:
		err = &ErrInstruction{Instruction: ins, Err: ErrInvalidShift}
	}

	return
}

// Decode unpacks any 16-bit word. Words with an unassigned
// top nibble decode as RAW.
func Decode(word uint16) (ins Instruction) {
	op := Op(word >> 12)
	flags := Flags(word>>9) & FLAG_MASK
	dst := Register(word>>6) & 7
	a := Register(word>>3) & 7

	switch op {
	case OP_NOP:
		return MakeRaw(word)
	case OP_AND, OP_ADD:
		return MakeAlu(op, flags, dst, a, Register(word)&7)
	case OP_LOAD, OP_STORE:
		shift := int(word & 3)
		if word&(1<<2) != 0 {
			shift = -shift
		}
		return MakeMem(op, flags, dst, a, shift)
	case OP_BRANCH:
		shift := int(word & 31)
		if word&(1<<5) != 0 {
			shift = -shift
		}
		return MakeBranch(flags, dst, shift)
	}

	return MakeRaw(word)
}

// Decode a sequence of words.
func DecodeAll(words []uint16) (list []Instruction) {
	list = make([]Instruction, len(words))
	for n, word := range words {
		list[n] = Decode(word)
	}
	return
}
