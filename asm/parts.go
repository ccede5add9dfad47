package asm

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/ezrec/easycpu/cpu"
)

const (
	NUMBER_MIN = -32768
	NUMBER_MAX = 65535
)

// parseNumber parses a decimal, 0x hex, or 0b binary literal with
// an optional sign.
func parseNumber(text string) (value int, err error) {
	digits := text
	negative := false
	switch {
	case strings.HasPrefix(digits, "-"):
		negative = true
		digits = digits[1:]
	case strings.HasPrefix(digits, "+"):
		digits = digits[1:]
	}

	base := 10
	switch {
	case strings.HasPrefix(digits, "0x"), strings.HasPrefix(digits, "0X"):
		base = 16
		digits = digits[2:]
	case strings.HasPrefix(digits, "0b"), strings.HasPrefix(digits, "0B"):
		base = 2
		digits = digits[2:]
	}

	if len(digits) == 0 || strings.ContainsAny(digits, "+-_") {
		err = ErrInvalidNumber(text)
		return
	}

	v64, perr := strconv.ParseInt(digits, base, 32)
	if perr != nil {
		err = ErrInvalidNumber(text)
		return
	}

	if negative {
		v64 = -v64
	}

	if v64 < NUMBER_MIN || v64 > NUMBER_MAX {
		err = ErrInvalidNumber(text)
		return
	}

	value = int(v64)
	return
}

// parts is the operand reader for a single statement.
type parts struct {
	command  string
	flags    string
	hasFlags bool
	args     []string
	equate   map[string]int
}

func splitParts(text string, equate map[string]int) (p *parts, err error) {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	if len(words) == 0 {
		err = ErrNoCommandSupplied
		return
	}

	p = &parts{
		args:   words[1:],
		equate: equate,
	}
	p.command, p.flags, p.hasFlags = strings.Cut(words[0], ".")
	if len(p.command) == 0 {
		err = ErrNoCommandSupplied
	}

	return
}

// more is true if operands remain.
func (p *parts) more() bool {
	return len(p.args) > 0
}

func (p *parts) pop() (word string, err error) {
	if len(p.args) == 0 {
		err = ErrNotEnoughArguments
		return
	}
	word = p.args[0]
	p.args = p.args[1:]
	return
}

func (p *parts) register() (reg cpu.Register, err error) {
	word, err := p.pop()
	if err != nil {
		return
	}
	reg, ok := cpu.ParseRegister(word)
	if !ok {
		err = ErrUnknownRegister(word)
	}
	return
}

// value reads a number literal or an equate.
func (p *parts) value() (value int, err error) {
	word, err := p.pop()
	if err != nil {
		return
	}
	if v, ok := p.equate[word]; ok {
		return v, nil
	}
	return parseNumber(word)
}

// word reads a value as a 16-bit word.
func (p *parts) word() (word uint16, err error) {
	value, err := p.value()
	if err != nil {
		return
	}
	word = uint16(value)
	return
}

// count reads a non-negative value, or returns def if no operands remain.
func (p *parts) count(def int) (value int, err error) {
	if !p.more() {
		return def, nil
	}
	value, err = p.value()
	if err == nil && value < 0 {
		err = ErrInvalidNumber(strconv.Itoa(value))
	}
	return
}

// shift reads an optional shift operand bounded by limit.
func (p *parts) shift(limit int) (shift int, err error) {
	if !p.more() {
		return
	}
	shift, err = p.value()
	if err != nil {
		return
	}
	if shift < -limit || shift > limit {
		err = ErrShiftIsTooBig(shift)
	}
	return
}

func (p *parts) label() (label string, err error) {
	return p.pop()
}

// opFlags reads the flag suffix for the op.
func (p *parts) opFlags(op cpu.Op) (flags cpu.Flags, err error) {
	flags, ok := cpu.ParseFlags(op, p.flags)
	if !ok {
		err = ErrUnknownCommand(p.command + "." + p.flags)
	}
	return
}

// noFlags fails if the statement carried a flag suffix.
func (p *parts) noFlags() (err error) {
	if p.hasFlags {
		err = ErrUnknownCommand(p.command + "." + p.flags)
	}
	return
}
