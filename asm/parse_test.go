package asm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/easycpu/cpu"
)

func atomStrings(atoms []Atom) (list []string) {
	for _, atom := range atoms {
		list = append(list, atom.String())
	}
	return
}

func TestParseAtoms(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	atoms, err := asm.Parse("START: NOP ; add r2 r3 r4 # comment\n  { INNER: $PUZX }\n\"AB\"\n-1\n")
	if !assert.NoError(err) {
		return
	}

	kinds := make([]AtomKind, len(atoms))
	for n, atom := range atoms {
		kinds[n] = atom.Kind
	}
	assert.Equal([]AtomKind{
		ATOM_LABEL,
		ATOM_INSTRUCTION,
		ATOM_INSTRUCTION,
		ATOM_ENTER_SCOPE,
		ATOM_LABEL,
		ATOM_INSTRUCTION,
		ATOM_LEAVE_SCOPE,
		ATOM_INSTRUCTION,
		ATOM_INSTRUCTION,
	}, kinds)

	if len(atoms) != 9 {
		return
	}

	assert.Equal("START", atoms[0].Label)
	assert.Equal("1:1", atoms[0].Pos.String())
	assert.Equal("NOP", atoms[1].String())
	assert.Equal("1:8", atoms[1].Pos.String())
	assert.Equal("ADD R2 R3 R4", atoms[2].String())
	assert.Equal(1, atoms[3].Scope)
	assert.False(atoms[3].Optimize)
	assert.Equal("INNER", atoms[4].Label)
	assert.Equal("2:5", atoms[4].Pos.String())
	assert.Equal("$PUZX", atoms[5].String())
	assert.Equal(rawWords{'A', 'B'}, atoms[7].Instruction)
	assert.Equal(rawWords{0xffff}, atoms[8].Instruction)
	assert.Equal("4:1", atoms[8].Pos.String())
}

func TestParseReorder(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		text  string
		atoms []string
	}){
		{"NOP ( ADD ZX ZX ZX )", []string{"ADD ZX ZX ZX", "NOP"}},
		{"( NOP ) INC R2 R2", []string{"NOP", "ADD.XYO R2 R2 ZX"}},
		{"MOV R2 R3 ( INC R3 R3; INC R4 R4 )", []string{"ADD.XYO R3 R3 ZX", "ADD.XYO R4 R4 ZX", "ADD R2 R3 ZX"}},
		{"NOP\nDEC R2 R2 ( MOV R5 R4 ( NOT R4 R4 ) )", []string{"NOP", "ADD.O R4 R4 ZX", "ADD R5 R4 ZX", "ADD.Y R2 R2 ZX"}},
	}

	asm := &Assembler{}
	for _, entry := range table {
		atoms, err := asm.Parse(entry.text)
		if !assert.NoError(err, entry.text) {
			continue
		}
		assert.Equal(entry.atoms, atomStrings(atoms), entry.text)
	}
}

func TestParseScopes(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	atoms, err := asm.Parse("{ { } } @STACKOPT { }")
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{"{ # 1", "{ # 2", "}", "}", "@STACKOPT { # 3", "}"}, atomStrings(atoms))
}

func TestParseErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		text string
		pos  string
		err  error
	}){
		{"NOP\n  FOO", "2:3", ErrUnknownCommand("FOO")},
		{"{ NOP", "1:1", ErrUnexpectedEndOfFile},
		{"NOP }", "1:5", ErrUnmatchedClosingBracket},
		{"NOP\n%", "2:1", ErrUnknownToken('%')},
		{"\"abc", "1:1", ErrUnexpectedEndOfFile},
		{"0x", "1:1", ErrInvalidNumber("0X")},
		{"70000", "1:1", ErrInvalidNumber("70000")},
		{"ADD R2 R9 R3", "1:1", ErrUnknownRegister("R9")},
		{"LOAD R2 PC 4", "1:1", ErrShiftIsTooBig(4)},
		{"BRANCH R2 -32", "1:1", ErrShiftIsTooBig(-32)},
		{"ADD R2", "1:1", ErrNotEnoughArguments},
		{"ADD.Q R2 R2 R2", "1:1", ErrUnknownCommand("ADD.Q")},
		{"NOP.X", "1:1", ErrUnknownCommand("NOP.X")},
		{"  @EQU X", "1:3", ErrEquateSyntax},
		{"@FOO", "1:1", ErrUnknownCommand("@FOO")},
	}

	asm := &Assembler{}
	for _, entry := range table {
		_, err := asm.Parse(entry.text)
		errs := Errors(err)
		if !assert.Len(errs, 1, entry.text) {
			continue
		}

		var errPos *ErrPos
		if !assert.ErrorAs(errs[0], &errPos, entry.text) {
			continue
		}
		assert.Equal(entry.pos, errPos.Pos.String(), entry.text)
		assert.Equal(entry.err, errPos.Err, entry.text)
	}
}

func TestParseManyErrors(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	atoms, err := asm.Parse("FOO\nNOP\nBAR R2")
	assert.Nil(atoms)

	errs := Errors(err)
	if !assert.Len(errs, 2) {
		return
	}
	assert.Equal("Line 1:1: unknown command 'FOO'", errs[0].Error())
	assert.Equal("Line 3:1: unknown command 'BAR'", errs[1].Error())

	var unknown ErrUnknownCommand
	assert.True(errors.As(err, &unknown))
}

func TestParseEquate(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "0x100")
	atoms, err := asm.Parse("@EQU SIZE 4*4\n@EQU NEXT SIZE+BASE\nLCONST R2 SIZE\nLCONST R3 NEXT\nLCONST R4 BASE")
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{
		"",
		"",
		"LCONST R2 0x10",
		"LCONST R3 0x110",
		"LCONST R4 0x100",
	}, atomStrings(atoms))
	assert.Equal(ATOM_NOP, atoms[0].Kind)

	_, err = asm.Parse("@EQU BAD 1/0")
	var equErr *ErrEquate
	if assert.ErrorAs(err, &equErr) {
		assert.Equal("BAD", equErr.Name)
	}

	_, err = asm.Parse("@EQU TEXT \"abc\"")
	if assert.ErrorAs(err, &equErr) {
		assert.ErrorIs(equErr, errEquateNotInteger)
	}

	_, err = asm.Parse("@EQU HUGE 1<<20")
	var invalid ErrInvalidNumber
	assert.ErrorAs(err, &invalid)

	lower := &Assembler{}
	lower.Predefine("base", "0x20")
	atoms, err = lower.Parse("lconst r2 base")
	if assert.NoError(err) {
		assert.Equal([]string{"LCONST R2 0x20"}, atomStrings(atoms))
	}

	bad := &Assembler{}
	bad.Predefine("OOPS", "undefined_name")
	_, err = bad.Parse("NOP")
	assert.ErrorAs(err, &equErr)
}

func TestParseNumber(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		text  string
		value int
		ok    bool
	}){
		{"0", 0, true},
		{"42", 42, true},
		{"-1", -1, true},
		{"+7", 7, true},
		{"0x1F", 31, true},
		{"-0x8000", -32768, true},
		{"0xFFFF", 65535, true},
		{"0b101", 5, true},
		{"0x10000", 0, false},
		{"-32769", 0, false},
		{"0b", 0, false},
		{"--1", 0, false},
		{"12AB", 0, false},
	}

	for _, entry := range table {
		value, err := parseNumber(entry.text)
		if entry.ok {
			assert.NoError(err, entry.text)
			assert.Equal(entry.value, value, entry.text)
		} else {
			assert.Equal(ErrInvalidNumber(entry.text), err, entry.text)
		}
	}
}

func TestParseString(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble(`"hi\n\t\0\"x"`)
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]uint16{'h', 'i', '\n', '\t', 0, '"', 'x'}, prog.Words())
	assert.Equal(cpu.OP_RAW, prog.Instructions[0].Op)
	assert.Equal(cpu.Nop, prog.Instructions[4])
}
