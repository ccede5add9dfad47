package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		ins  Instruction
		word uint16
	}){
		{"nop", Nop, 0x0000},
		{"raw", MakeRaw(0x0123), 0x0123},
		{"add_zx", MakeAlu(OP_ADD, 0, REG_ZX, REG_ZX, REG_ZX), 0x5000},
		{"and_xyo", MakeAlu(OP_AND, FLAG_X|FLAG_Y|FLAG_O, REG_R2, REG_R3, REG_R4), 0x4e9c},
		{"sub", MakeAlu(OP_ADD, FLAG_X|FLAG_O, REG_SP, REG_LP, REG_PC), 0x5bf1},
		{"load_pc", MakeMem(OP_LOAD, 0, REG_R2, REG_PC, 1), 0x2089},
		{"store_neg", MakeMem(OP_STORE, FLAG_S, REG_ZX, REG_SP, -3), 0x323f},
		{"ladd", MakeMem(OP_LOAD, FLAG_H|FLAG_L, REG_R5, REG_PC, 2), 0x2d4a},
		{"branch_fwd", MakeBranch(FLAG_EQ, REG_R2, 31), 0x189f},
		{"branch_back", MakeBranch(FLAG_GT|FLAG_LT, REG_R3, -5), 0x16e5},
	}

	for _, entry := range table {
		word, err := entry.ins.Encode()
		if !assert.NoError(err, entry.name) {
			continue
		}
		assert.Equal(entry.word, word, "%s: %#04x", entry.name, word)
		assert.Equal(entry.ins, Decode(word), entry.name)
	}
}

func TestEncodeInvalidShift(t *testing.T) {
	assert := assert.New(t)

	bad := []Instruction{
		MakeMem(OP_LOAD, 0, REG_R2, REG_SP, 4),
		MakeMem(OP_STORE, 0, REG_R2, REG_SP, -4),
		MakeBranch(FLAG_EQ, REG_R2, 32),
		MakeBranch(FLAG_EQ, REG_R2, -32),
		MakeMem(OP_LOAD, 0, REG_R2, REG_SP, 256),
		MakeMem(OP_LOAD, 0, REG_R2, REG_SP, -129),
		MakeBranch(FLAG_EQ, REG_R2, -300),
		MakeBranch(FLAG_EQ, REG_R2, 1<<16),
	}

	for _, ins := range bad {
		_, err := ins.Encode()
		assert.True(errors.Is(err, ErrInvalidShift), ins.String())
		var errIns *ErrInstruction
		assert.True(errors.As(err, &errIns))
	}
}

func TestDecodeTotal(t *testing.T) {
	assert := assert.New(t)

	for n := range 0x10000 {
		word := uint16(n)
		ins := Decode(word)
		assert.NoError(ins.Validate())

		// Negative zero shifts are the only non-canonical encodings.
		negZero := (ins.Op.IsMem() && word&7 == 4) ||
			(ins.Op == OP_BRANCH && word&63 == 32)
		if negZero {
			continue
		}

		again, err := ins.Encode()
		assert.NoError(err)
		if again != word {
			assert.Equal(word, again, "%v", ins)
			return
		}
	}
}

func TestRegister(t *testing.T) {
	assert := assert.New(t)

	for n := range REGISTER_COUNT {
		reg := Register(n)
		parsed, ok := ParseRegister(reg.String())
		assert.True(ok)
		assert.Equal(reg, parsed)
	}

	_, ok := ParseRegister("R9")
	assert.False(ok)
	assert.Equal("Register(9)", Register(9).String())
}
