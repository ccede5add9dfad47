// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/ezrec/easycpu/cpu"
)

const (
	MEMORY_SIZE = 0x10000
)

// Emulator is a reference EasyCPU machine: eight registers and a
// 64K word memory that holds both code and data.
type Emulator struct {
	Verbose  bool                       // If set, logs every executed instruction.
	Register [cpu.REGISTER_COUNT]uint16 // Register file. Register[cpu.REG_PC] is the program counter.
	Memory   [MEMORY_SIZE]uint16        // Word addressed memory.
	Ticks    int                        // Instructions executed since reset.
	Loads    int                        // Memory reads since reset.
	Stores   int                        // Memory writes since reset.

	image []uint16 // Initial memory image.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{}
	emu.Reset()
	return
}

// Load sets the initial memory image and resets the machine.
func (emu *Emulator) Load(words []uint16) {
	emu.image = append(emu.image[:0], words...)
	emu.Reset()
}

// Reset restores the initial memory image, clears the registers,
// and arms the halt word.
func (emu *Emulator) Reset() {
	clear(emu.Memory[:])
	copy(emu.Memory[:], emu.image)
	emu.Memory[cpu.HALT_ADDRESS] = 0xffff

	clear(emu.Register[:])
	emu.Ticks = 0
	emu.Loads = 0
	emu.Stores = 0

	if emu.Verbose {
		log.Printf("emulator: reset, %d words", len(emu.image))
	}
}

// Pc returns the program counter.
func (emu *Emulator) Pc() uint16 {
	return emu.Register[cpu.REG_PC]
}

// Halted is true once the halt word has been cleared.
func (emu *Emulator) Halted() bool {
	return emu.Memory[cpu.HALT_ADDRESS] == 0
}

func (emu *Emulator) read(reg cpu.Register) uint16 {
	if reg == cpu.REG_ZX {
		return 0
	}
	return emu.Register[reg]
}

// write sets a register, returning true if control flow was redirected.
func (emu *Emulator) write(reg cpu.Register, value uint16) (jumped bool) {
	switch reg {
	case cpu.REG_ZX:
	case cpu.REG_PC:
		emu.Register[reg] = value
		jumped = true
	default:
		emu.Register[reg] = value
	}
	return
}

func swapBytes(value uint16) uint16 {
	return value<<8 | value>>8
}

// merge applies a MEM transfer of value onto the prior destination.
// H and L together accumulate, with S selecting subtraction.
func merge(flags cpu.Flags, prior uint16, value uint16) uint16 {
	half := flags & (cpu.FLAG_H | cpu.FLAG_L)
	swap := flags&cpu.FLAG_S != 0

	if half == cpu.FLAG_H|cpu.FLAG_L {
		if swap {
			return prior - value
		}
		return prior + value
	}

	if swap {
		value = swapBytes(value)
	}

	switch half {
	case cpu.FLAG_H:
		return value&0xff00 | prior&0x00ff
	case cpu.FLAG_L:
		return prior&0xff00 | value&0x00ff
	}

	return value
}

func alu(ins cpu.Instruction, a uint16, b uint16) (out uint16) {
	x, y := a, b
	if ins.Flags&cpu.FLAG_X != 0 {
		x = ^x
	}
	if ins.Flags&cpu.FLAG_Y != 0 {
		y = ^y
	}

	if ins.Op == cpu.OP_AND {
		out = x & y
	} else {
		out = x + y
	}

	if ins.Flags&cpu.FLAG_O != 0 {
		out = ^out
	}
	return
}

func taken(flags cpu.Flags, value int16) bool {
	switch {
	case value == 0:
		return flags&cpu.FLAG_EQ != 0
	case value > 0:
		return flags&cpu.FLAG_GT != 0
	default:
		return flags&cpu.FLAG_LT != 0
	}
}

// Execute runs a single instruction at the current program counter.
func (emu *Emulator) Execute(ins cpu.Instruction) {
	pc := emu.Pc()
	jumped := false

	if emu.Verbose {
		log.Printf("%04x: %v", pc, ins)
	}

	switch ins.Op {
	case cpu.OP_AND, cpu.OP_ADD:
		jumped = emu.write(ins.Dst, alu(ins, emu.read(ins.A), emu.read(ins.B)))
	case cpu.OP_LOAD:
		addr := emu.read(ins.A) + uint16(int16(ins.Shift))
		emu.Loads++
		jumped = emu.write(ins.Dst, merge(ins.Flags, emu.read(ins.Dst), emu.Memory[addr]))
	case cpu.OP_STORE:
		addr := emu.read(ins.A) + uint16(int16(ins.Shift))
		emu.Stores++
		emu.Memory[addr] = merge(ins.Flags, emu.Memory[addr], emu.read(ins.Dst))
	case cpu.OP_BRANCH:
		if taken(ins.Flags, int16(emu.read(ins.Dst))) {
			emu.Register[cpu.REG_PC] = pc + uint16(int16(ins.Shift))
			jumped = true
		}
	}

	if !jumped {
		emu.Register[cpu.REG_PC] = pc + 1
	}

	emu.Ticks++
}

// Tick executes the next instruction.
func (emu *Emulator) Tick() (done bool) {
	if emu.Halted() {
		return true
	}

	emu.Execute(cpu.Decode(emu.Memory[emu.Pc()]))

	return emu.Halted()
}

// Run executes until halt, or fails with ErrTimeout after maxTicks.
func (emu *Emulator) Run(maxTicks int) (err error) {
	for range maxTicks {
		if emu.Tick() {
			return
		}
	}

	err = &ErrRuntime{Pc: emu.Pc(), Err: ErrTimeout}
	return
}

// SetStack writes values to the conventional stack and points SP
// past them.
func (emu *Emulator) SetStack(values ...uint16) {
	copy(emu.Memory[cpu.STACK_BASE:], values)
	emu.Register[cpu.REG_SP] = uint16(cpu.STACK_BASE + len(values))
	emu.Register[cpu.REG_LP] = cpu.STACK_BASE
}

// Stack returns the values between the stack base and SP.
func (emu *Emulator) Stack() []uint16 {
	sp := int(emu.Register[cpu.REG_SP])
	if sp < cpu.STACK_BASE {
		return nil
	}
	return slices.Clone(emu.Memory[cpu.STACK_BASE:sp])
}

// String dumps the register file.
func (emu *Emulator) String() string {
	var sb strings.Builder
	for n, value := range emu.Register {
		if n > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%v=%04x", cpu.Register(n), value)
	}
	return sb.String()
}
