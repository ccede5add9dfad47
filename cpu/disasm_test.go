package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		word uint16
		text string
	}){
		{0x0000, "NOP"},
		{0x0041, "0x0041"},
		{0xbeef, "0xBEEF"},
		{0x5000, "ADD ZX ZX ZX"},
		{0x4e9c, "AND.XYO R2 R3 R4"},
		{0x5bf1, "ADD.XO SP LP PC"},
		{0x2089, "LOAD R2 PC 1"},
		{0x2088, "LOAD R2 PC"},
		{0x2080, "LOAD R2 ZX"},
		{0x323f, "STORE.S ZX SP -3"},
		{0x189f, "BRANCH.E R2 31"},
		{0x16e5, "BRANCH.GL R3 -5"},
		{0x1000, "BRANCH ZX 0"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, Decode(entry.word).String(), "%#04x", entry.word)
	}
}

func TestParseFlags(t *testing.T) {
	assert := assert.New(t)

	flags, ok := ParseFlags(OP_ADD, "XO")
	assert.True(ok)
	assert.Equal(FLAG_X|FLAG_O, flags)

	flags, ok = ParseFlags(OP_BRANCH, "LE")
	assert.True(ok)
	assert.Equal(FLAG_EQ|FLAG_LT, flags)

	_, ok = ParseFlags(OP_LOAD, "X")
	assert.False(ok)

	_, ok = ParseFlags(OP_NOP, "X")
	assert.False(ok)

	assert.Equal([]string{"NOP", "ADD.XYO R2 R2 ZX"}, Disassemble([]uint16{0x0000, 0x5e90}))
}
