package emulator_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ezrec/easycpu/cpu"
	"github.com/ezrec/easycpu/emulator"
)

func encode(list ...cpu.Instruction) (words []uint16) {
	for _, ins := range list {
		word, err := ins.Encode()
		Expect(err).NotTo(HaveOccurred())
		words = append(words, word)
	}
	return
}

var halt = cpu.MakeMem(cpu.OP_STORE, 0, cpu.REG_ZX, cpu.REG_ZX, -1)

var _ = Describe("Emulator", func() {
	var emu *emulator.Emulator

	BeforeEach(func() {
		emu = emulator.NewEmulator()
	})

	It("should start reset", func() {
		Expect(emu.Verbose).To(BeFalse())
		Expect(emu.Pc()).To(Equal(uint16(0)))
		Expect(emu.Halted()).To(BeFalse())
		Expect(emu.Memory[cpu.HALT_ADDRESS]).To(Equal(uint16(0xffff)))
	})

	Context("ALU", func() {
		It("should add and negate", func() {
			emu.Load(encode(
				cpu.MakeAlu(cpu.OP_ADD, cpu.FLAG_X|cpu.FLAG_Y|cpu.FLAG_O, cpu.REG_R2, cpu.REG_ZX, cpu.REG_ZX), // R2 = 1
				cpu.MakeAlu(cpu.OP_ADD, 0, cpu.REG_R3, cpu.REG_R2, cpu.REG_R2),                                  // R3 = 2
				cpu.MakeAlu(cpu.OP_ADD, cpu.FLAG_X|cpu.FLAG_O, cpu.REG_R4, cpu.REG_R2, cpu.REG_R3),              // R4 = 1-2
				cpu.MakeAlu(cpu.OP_AND, cpu.FLAG_X|cpu.FLAG_Y|cpu.FLAG_O, cpu.REG_R5, cpu.REG_R2, cpu.REG_R3),   // R5 = 1|2
				halt,
			))
			Expect(emu.Run(100)).To(Succeed())
			Expect(emu.Register[cpu.REG_R2]).To(Equal(uint16(1)))
			Expect(emu.Register[cpu.REG_R3]).To(Equal(uint16(2)))
			Expect(emu.Register[cpu.REG_R4]).To(Equal(uint16(0xffff)))
			Expect(emu.Register[cpu.REG_R5]).To(Equal(uint16(3)))
			Expect(emu.Ticks).To(Equal(5))
		})

		It("should discard writes to ZX", func() {
			emu.Load(encode(
				cpu.MakeAlu(cpu.OP_ADD, cpu.FLAG_O, cpu.REG_ZX, cpu.REG_ZX, cpu.REG_ZX),
				cpu.MakeAlu(cpu.OP_ADD, 0, cpu.REG_R2, cpu.REG_ZX, cpu.REG_ZX),
				halt,
			))
			Expect(emu.Run(100)).To(Succeed())
			Expect(emu.Register[cpu.REG_ZX]).To(Equal(uint16(0)))
			Expect(emu.Register[cpu.REG_R2]).To(Equal(uint16(0)))
		})

		It("should jump when writing PC", func() {
			emu.Load(encode(
				cpu.MakeAlu(cpu.OP_ADD, cpu.FLAG_X|cpu.FLAG_Y|cpu.FLAG_O, cpu.REG_PC, cpu.REG_PC, cpu.REG_ZX), // PC = 0 + 1
				halt,
			))
			Expect(emu.Tick()).To(BeFalse())
			Expect(emu.Pc()).To(Equal(uint16(1)))
			Expect(emu.Tick()).To(BeTrue())
		})
	})

	Context("Memory", func() {
		It("should load PC relative data", func() {
			emu.Load(encode(
				cpu.MakeMem(cpu.OP_LOAD, 0, cpu.REG_R2, cpu.REG_PC, 1),
				cpu.MakeRaw(0x0123),
				cpu.MakeMem(cpu.OP_LOAD, cpu.FLAG_H|cpu.FLAG_L, cpu.REG_R2, cpu.REG_PC, 1),
				cpu.MakeRaw(0x0010),
				cpu.MakeMem(cpu.OP_LOAD, cpu.FLAG_H|cpu.FLAG_L|cpu.FLAG_S, cpu.REG_R2, cpu.REG_PC, 1),
				cpu.MakeRaw(0x0003),
				halt,
			))
			Expect(emu.Run(100)).To(Succeed())
			Expect(emu.Register[cpu.REG_R2]).To(Equal(uint16(0x0130)))
			Expect(emu.Loads).To(Equal(3))
		})

		It("should merge bytes", func() {
			emu.Memory[0x100] = 0xabcd
			emu.Register[cpu.REG_R2] = 0x1234
			emu.Execute(cpu.MakeMem(cpu.OP_LOAD, cpu.FLAG_H, cpu.REG_R2, cpu.REG_ZX, 0))
			Expect(emu.Register[cpu.REG_R2]).To(Equal(uint16(0x0034)))

			emu.Register[cpu.REG_R3] = 0x0100
			emu.Execute(cpu.MakeMem(cpu.OP_LOAD, cpu.FLAG_H, cpu.REG_R2, cpu.REG_R3, 0))
			Expect(emu.Register[cpu.REG_R2]).To(Equal(uint16(0xab34)))

			emu.Execute(cpu.MakeMem(cpu.OP_LOAD, cpu.FLAG_L|cpu.FLAG_S, cpu.REG_R2, cpu.REG_R3, 0))
			Expect(emu.Register[cpu.REG_R2]).To(Equal(uint16(0xabab)))

			emu.Execute(cpu.MakeMem(cpu.OP_LOAD, cpu.FLAG_S, cpu.REG_R2, cpu.REG_R3, 0))
			Expect(emu.Register[cpu.REG_R2]).To(Equal(uint16(0xcdab)))
		})

		It("should store with a shift", func() {
			emu.SetStack(7)
			emu.Register[cpu.REG_R2] = 42
			emu.Execute(cpu.MakeMem(cpu.OP_STORE, 0, cpu.REG_R2, cpu.REG_SP, -1))
			Expect(emu.Stack()).To(Equal([]uint16{42}))
			Expect(emu.Stores).To(Equal(1))
		})

		It("should halt on clearing the halt word", func() {
			emu.Load(encode(halt))
			Expect(emu.Tick()).To(BeTrue())
			Expect(emu.Halted()).To(BeTrue())
			Expect(emu.Tick()).To(BeTrue())
			Expect(emu.Ticks).To(Equal(1))
		})
	})

	Context("Branch", func() {
		DescribeTable("conditions",
			func(flags cpu.Flags, value uint16, taken bool) {
				emu.Register[cpu.REG_R2] = value
				emu.Register[cpu.REG_PC] = 10
				emu.Execute(cpu.MakeBranch(flags, cpu.REG_R2, -5))
				if taken {
					Expect(emu.Pc()).To(Equal(uint16(5)))
				} else {
					Expect(emu.Pc()).To(Equal(uint16(11)))
				}
			},
			Entry("eq zero", cpu.FLAG_EQ, uint16(0), true),
			Entry("eq nonzero", cpu.FLAG_EQ, uint16(1), false),
			Entry("gt positive", cpu.FLAG_GT, uint16(0x7fff), true),
			Entry("gt negative", cpu.FLAG_GT, uint16(0x8000), false),
			Entry("lt negative", cpu.FLAG_LT, uint16(0xffff), true),
			Entry("lt zero", cpu.FLAG_LT, uint16(0), false),
			Entry("never", cpu.Flags(0), uint16(0), false),
			Entry("always", cpu.FLAG_EQ|cpu.FLAG_GT|cpu.FLAG_LT, uint16(3), true),
		)
	})

	Context("Run", func() {
		It("should time out on an endless loop", func() {
			emu.Load(encode(cpu.MakeBranch(cpu.FLAG_EQ, cpu.REG_ZX, 0)))
			err := emu.Run(50)
			Expect(errors.Is(err, emulator.ErrTimeout)).To(BeTrue())
			Expect(emu.Ticks).To(Equal(50))
		})

		It("should reset to the loaded image", func() {
			emu.Load(encode(
				cpu.MakeMem(cpu.OP_STORE, 0, cpu.REG_PC, cpu.REG_ZX, 0),
				halt,
			))
			Expect(emu.Run(10)).To(Succeed())
			Expect(emu.Memory[0]).To(Equal(uint16(0)))

			emu.Reset()
			Expect(emu.Memory[0]).NotTo(Equal(uint16(0)))
			Expect(emu.Ticks).To(Equal(0))
		})
	})
})
