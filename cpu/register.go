package cpu

// Register is one of the eight 3-bit register identities.
type Register uint8

const (
	REG_ZX = Register(0) // ZX: reads as zero, discards writes.
	REG_PC = Register(1) // PC: writes redirect control flow.
	REG_R2 = Register(2) // R2
	REG_R3 = Register(3) // R3
	REG_R4 = Register(4) // R4
	REG_R5 = Register(5) // R5
	REG_LP = Register(6) // LP: conventional frame pointer.
	REG_SP = Register(7) // SP: conventional stack pointer.
)

// REGISTER_COUNT is the size of the register file.
const REGISTER_COUNT = 8

var registerName = [REGISTER_COUNT]string{"ZX", "PC", "R2", "R3", "R4", "R5", "LP", "SP"}

func (reg Register) String() string {
	if int(reg) < len(registerName) {
		return registerName[reg]
	}
	return f("Register(%d)", int(reg))
}

// ParseRegister looks up an upper-case register name.
func ParseRegister(name string) (reg Register, ok bool) {
	for n, text := range registerName {
		if text == name {
			return Register(n), true
		}
	}

	return
}

// GENERAL_REGISTERS are the scratch registers free for code generation.
var GENERAL_REGISTERS = []Register{REG_R2, REG_R3, REG_R4, REG_R5}

const (
	STACK_BASE   = 0x4000 // Conventional stack base, set by $INIT.
	HALT_ADDRESS = 0xffff // Writing zero here halts the machine.
)
