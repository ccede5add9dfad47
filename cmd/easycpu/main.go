// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"

	"github.com/ezrec/easycpu/asm"
	"github.com/ezrec/easycpu/cpu"
	"github.com/ezrec/easycpu/emulator"
)

const usage = `usage: easycpu <command> [options] <file>

commands:
  asm <src> [-O ./ram.bin] [-D NAME=EXPR] [-s] [-v]
  disasm <bin> [-l]
  exec <initram> [-n maxticks] [-v]
`

// fail reports an error and exits through the atexit handlers.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "easycpu: "+format+"\n", args...)
	atexit.Exit(1)
}

// parseArgs parses flags that may appear before or after the single
// file argument.
func parseArgs(fs *flag.FlagSet, args []string) (file string) {
	if err := fs.Parse(args); err != nil {
		atexit.Exit(2)
	}
	if fs.NArg() == 0 {
		fail("%v: missing file argument", fs.Name())
	}
	file = fs.Arg(0)
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		atexit.Exit(2)
	}
	if fs.NArg() != 0 {
		fail("%v: unknown arguments: %v", fs.Name(), fs.Args())
	}
	return
}

func readImage(path string) []uint16 {
	data, err := os.ReadFile(path)
	if err != nil {
		fail("%v", err)
	}
	return cpu.Unpack(data)
}

// printErrors writes one 'Line L:C: err' line per assembly error.
func printErrors(w io.Writer, err error) {
	for _, err := range asm.Errors(err) {
		fmt.Fprintln(w, err)
	}
}

func cmdAsm(args []string) {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	output := fs.String("O", "./ram.bin", "Output RAM image")
	optimize := fs.Bool("s", false, "Optimize all stack code, as if inside @STACKOPT")
	verbose := fs.Bool("v", false, "Verbose mode")

	assembler := &asm.Assembler{}
	fs.Func("D", "Predefine an equate, as NAME=EXPR", func(text string) error {
		name, expr, ok := strings.Cut(text, "=")
		if !ok || len(name) == 0 {
			return fmt.Errorf("%q is not NAME=EXPR", text)
		}
		assembler.Predefine(name, expr)
		return nil
	})

	source := parseArgs(fs, args)
	assembler.Optimize = *optimize
	assembler.Verbose = *verbose

	inf, err := os.Open(source)
	if err != nil {
		fail("%v", err)
	}
	defer inf.Close()

	prog, err := assembler.AssembleFrom(inf)
	if err != nil {
		printErrors(os.Stderr, err)
		atexit.Exit(1)
	}

	written := false
	atexit.Register(func() {
		if !written {
			os.Remove(*output)
		}
	})

	err = os.WriteFile(*output, prog.Binary(), 0o644)
	if err != nil {
		fail("%v", err)
	}
	written = true

	if *verbose {
		log.Printf("%v: %d words", *output, len(prog.Instructions))
	}
}

func cmdDisasm(args []string) {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	listing := fs.Bool("l", false, "List addresses and words")

	words := readImage(parseArgs(fs, args))
	lines := cpu.Disassemble(words)

	if !*listing {
		for _, line := range lines {
			fmt.Println(line)
		}
		return
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Addr", "Word", "Instruction"})
	for n, line := range lines {
		tw.AppendRow(table.Row{fmt.Sprintf("%04x", n), fmt.Sprintf("%04x", words[n]), line})
	}
	fmt.Println(tw.Render())
}

func cmdExec(args []string) {
	fs := flag.NewFlagSet("exec", flag.ExitOnError)
	maxTicks := fs.Int("n", 1_000_000, "Maximum instructions to execute")
	verbose := fs.Bool("v", false, "Verbose mode")

	words := readImage(parseArgs(fs, args))

	emu := emulator.NewEmulator()
	emu.Verbose = *verbose
	emu.Load(words)

	err := emu.Run(*maxTicks)

	regs := table.NewWriter()
	regs.AppendHeader(table.Row{"Register", "Hex", "Signed"})
	for n, value := range emu.Register {
		regs.AppendRow(table.Row{cpu.Register(n), fmt.Sprintf("%04x", value), int16(value)})
	}
	regs.AppendFooter(table.Row{"Ticks", emu.Ticks, fmt.Sprintf("%d loads, %d stores", emu.Loads, emu.Stores)})
	fmt.Println(regs.Render())

	if err != nil {
		fail("%v", err)
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		atexit.Exit(2)
	}

	switch os.Args[1] {
	case "asm":
		cmdAsm(os.Args[2:])
	case "disasm":
		cmdDisasm(os.Args[2:])
	case "exec":
		cmdExec(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprint(os.Stderr, usage)
		atexit.Exit(2)
	}

	atexit.Exit(0)
}
