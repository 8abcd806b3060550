// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ezrec/moto6809/emulator"
)

// defines collects repeated -D NAME=VALUE flags.
type defines []string

func (d *defines) String() string {
	return strings.Join(*d, ",")
}

func (d *defines) Set(value string) error {
	*d = append(*d, value)
	return nil
}

func readLines(path string) (lines []string, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	scanner := bufio.NewScanner(inf)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	err = scanner.Err()
	return
}

func listing(out io.Writer, emu *emulator.Emulator) {
	prog := emu.Program
	for stmt := range prog.Listing() {
		code := fmt.Sprintf("% X", stmt.Code)
		if len(code) > 14 {
			code = code[:11] + "..."
		}
		fmt.Fprintf(out, "%04X  %-14s %5d  %v\n", stmt.Address, code, stmt.LineNo, prog.Source[stmt.LineNo-1])
	}

	fmt.Fprintf(out, "\n")
	for name, value := range prog.Symbols.All() {
		fmt.Fprintf(out, "%-16s $%04X\n", name, value)
	}
}

func report(out io.Writer, result emulator.Result, err error) {
	switch {
	case err != nil:
		fmt.Fprintf(out, "fault: %v\n", err)
	case result.Outcome == emulator.OUTCOME_TERMINATED:
		fmt.Fprintf(out, "terminated at $%04X after %d instructions (END at line %d)\n",
			result.PC, result.Count, result.EndLine)
	case result.Outcome == emulator.OUTCOME_CONTINUE:
		fmt.Fprintf(out, "paused at $%04X after %d instructions\n", result.PC, result.Count)
	}
}

// rawWriter translates newlines for a terminal in raw mode.
type rawWriter struct {
	io.Writer
}

func (w rawWriter) Write(data []byte) (n int, err error) {
	_, err = io.WriteString(w.Writer, strings.ReplaceAll(string(data), "\n", "\r\n"))
	if err == nil {
		n = len(data)
	}
	return
}

// interact single-steps the program from the keyboard.
//
//	space  step
//	r      run to a breakpoint or the end
//	b      toggle a breakpoint at PC
//	x      reset to the program start
//	q      quit
func interact(emu *emulator.Emulator) (err error) {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	defer func() { _ = term.Restore(fd, state) }()

	out := rawWriter{os.Stdout}
	keys := bufio.NewReader(os.Stdin)

	fmt.Fprint(out, emu.Status())
	for {
		var key byte
		key, err = keys.ReadByte()
		if err == io.EOF {
			err = nil
			return
		}
		if err != nil {
			return
		}

		switch key {
		case ' ', 's':
			result, serr := emu.Step()
			if serr != nil || result.Outcome != emulator.OUTCOME_CONTINUE {
				report(out, result, serr)
			}
		case 'r':
			serr := emu.Run()
			if serr != nil {
				report(out, emulator.Result{}, serr)
				continue
			}
			result, serr := emu.Wait()
			report(out, result, serr)
		case 'b':
			pc := emu.Snapshot().PC
			if emu.ToggleBreakpoint(pc) {
				fmt.Fprintf(out, "breakpoint set at $%04X\n", pc)
			} else {
				fmt.Fprintf(out, "breakpoint cleared at $%04X\n", pc)
			}
			continue
		case 'x':
			err = emu.Reset()
			if err != nil {
				return
			}
		case 'q', 0x03, 0x04:
			return
		default:
			continue
		}

		fmt.Fprint(out, emu.Status())
	}
}

func main() {
	var compile string
	var config string
	var list bool
	var assembleOnly bool
	var interactive bool
	var verbose bool
	var defs defines

	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.StringVar(&config, "f", "", ".toml run configuration")
	flag.BoolVar(&list, "l", false, "Print a listing")
	flag.BoolVar(&assembleOnly, "n", false, "Assemble only, do not execute")
	flag.BoolVar(&interactive, "i", false, "Single-step interactively")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Var(&defs, "D", "Predefine a constant, as NAME=VALUE (repeatable)")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) == 0 {
		log.Fatalf("%v: -c file.asm is required", os.Args[0])
	}

	cfg := emulator.NewConfig()
	if len(config) != 0 {
		var err error
		cfg, err = emulator.LoadConfig(config)
		if err != nil {
			log.Fatalf("%v: %v", config, err)
		}
	}

	for _, def := range defs {
		err := cfg.Define(def)
		if err != nil {
			log.Fatalf("-D %v: %v", def, err)
		}
	}

	cfg.Verbose = cfg.Verbose || verbose

	emu := emulator.NewEmulator()
	err := emu.Configure(cfg)
	if err != nil {
		log.Fatalf("%v: %v", config, err)
	}

	lines, err := readLines(compile)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	_, _, _, err = emu.Assemble(lines)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	if list {
		listing(os.Stdout, emu)
	}

	switch {
	case assembleOnly:
	case interactive:
		err = interact(emu)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	default:
		err = emu.Run()
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		result, err := emu.Wait()
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		for result.Outcome == emulator.OUTCOME_CONTINUE {
			// Breakpoints from the configuration pause the run.
			fmt.Print(emu.Status())
			err = emu.Resume()
			if err != nil {
				log.Fatalf("%v: %v", compile, err)
			}
			result, err = emu.Wait()
			if err != nil {
				log.Fatalf("%v: %v", compile, err)
			}
		}
		report(os.Stdout, result, nil)
		fmt.Print(emu.Status())
	}
}
