// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/ezrec/a64sim/asm"
	"github.com/ezrec/a64sim/cpu"
	"github.com/ezrec/a64sim/emulator"
	"github.com/ezrec/a64sim/isa"
	"github.com/ezrec/a64sim/translate"
)

const ENV_PREFIX = "A64SIM"

// config holds the root flags.
type config struct {
	verbose bool
	lang    string
}

// assemble parses an assembly source file.
func assemble(cfg *config, path string, memory int) (prog *asm.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	assembler := &asm.Assembler{Verbose: cfg.verbose}
	emu := emulator.NewEmulator()
	emu.MemorySize = memory
	for name, value := range emu.Defines() {
		assembler.Predefine(name, value)
	}

	prog, err = assembler.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}

	return
}

// load reads a program, either as assembly source or as a raw image.
func load(cfg *config, path string, raw bool, memory int) (prog *asm.Program, err error) {
	if !raw {
		return assemble(cfg, path, memory)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	prog = &asm.Program{Image: data}
	return
}

func asmCommand(cfg *config) *ffcli.Command {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	output := fs.String("o", "", "binary image output file")
	listing := fs.Bool("l", false, "print a listing")

	return &ffcli.Command{
		Name:       "asm",
		ShortUsage: "a64sim asm [-o file.bin] [-l] <file.s>",
		ShortHelp:  "assemble a source file into a memory image",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(ENV_PREFIX)},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return flag.ErrHelp
			}

			prog, err := assemble(cfg, args[0], emulator.MEMORY_SIZE)
			if err != nil {
				return err
			}

			if *listing {
				for _, st := range prog.Statements {
					for n, code := range st.Codes {
						text := st.Text
						if n > 0 {
							text = ""
						}
						fmt.Printf("%08x: %08x  %4d  %v\n", st.Address+uint64(n*isa.WORD_BYTES), code, st.LineNo, text)
					}
				}
			}

			if len(*output) != 0 {
				return os.WriteFile(*output, prog.Binary(), 0o644)
			}

			return nil
		},
	}
}

// tracer prints the accesses of each step.
type tracer struct {
	out   io.Writer
	read  func(a ...any) string
	write func(a ...any) string
}

func newTracer(out io.Writer) *tracer {
	return &tracer{
		out:   out,
		read:  color.New(color.FgCyan).SprintFunc(),
		write: color.New(color.FgYellow, color.Bold).SprintFunc(),
	}
}

func (tr *tracer) OnAccess(kind cpu.AccessKind, loc cpu.Location, old, new uint64) {
	switch kind {
	case cpu.ACCESS_WRITE:
		fmt.Fprintf(tr.out, "    %v %v: %#x -> %#x\n", tr.write(kind), loc, old, new)
	default:
		fmt.Fprintf(tr.out, "    %v %v: %#x\n", tr.read(kind), loc, new)
	}
}

func runCommand(cfg *config) *ffcli.Command {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	raw := fs.Bool("raw", false, "load a binary image rather than assembly source")
	limit := fs.Int("limit", 1_000_000, "maximum steps; 0 for no limit")
	memory := fs.Int("mem", emulator.MEMORY_SIZE, "memory size in bytes")
	trace := fs.Bool("trace", false, "trace instructions and accesses")

	return &ffcli.Command{
		Name:       "run",
		ShortUsage: "a64sim run [flags] <file.s|file.bin>",
		ShortHelp:  "run a program until it halts",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(ENV_PREFIX)},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return flag.ErrHelp
			}

			prog, err := load(cfg, args[0], *raw, *memory)
			if err != nil {
				return err
			}

			emu := emulator.NewEmulator()
			emu.Verbose = cfg.verbose
			emu.MemorySize = *memory
			emu.Program = prog

			err = emu.Reset()
			if err != nil {
				return err
			}

			var stop emulator.Stop
			var steps int
			if *trace {
				emu.Notify = true
				emu.Cpu.Observer = newTracer(os.Stdout)
				pc := color.New(color.FgGreen).SprintFunc()
				for stop == emulator.STOP_NONE {
					if ctx.Err() != nil {
						stop, err = emulator.STOP_CANCEL, ctx.Err()
						break
					}
					if *limit > 0 && steps >= *limit {
						stop = emulator.STOP_LIMIT
						break
					}
					if in, e := emu.Cpu.Fetch(emu.Cpu.Pc); e == nil {
						fmt.Printf("%v: %v\n", pc(fmt.Sprintf("%08x", in.Address)), in)
					}
					stop, err = emu.Tick()
					steps++
				}
			} else {
				stop, steps, err = emu.Run(ctx, *limit)
			}

			fmt.Printf("%v after %d steps\n", stop, steps)
			fmt.Print(emu.Cpu.String())

			return err
		},
	}
}

func disasmCommand(cfg *config) *ffcli.Command {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	raw := fs.Bool("raw", true, "load a binary image rather than assembly source")
	dump := fs.Bool("dump", false, "dump the decoded instructions")

	return &ffcli.Command{
		Name:       "disasm",
		ShortUsage: "a64sim disasm [-raw=false] [-dump] <file.bin|file.s>",
		ShortHelp:  "disassemble a memory image",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(ENV_PREFIX)},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return flag.ErrHelp
			}

			prog, err := load(cfg, args[0], *raw, emulator.MEMORY_SIZE)
			if err != nil {
				return err
			}

			table := isa.A64()
			image := asm.Image{Data: prog.Binary()}
			for address := uint64(0); ; address += isa.WORD_BYTES {
				word, ok := image.Word(address)
				if !ok {
					break
				}
				in, err := cpu.Decode(table, address, word)
				if err != nil {
					fmt.Printf("%08x: %08x  .word %#x\n", address, word, word)
					continue
				}
				fmt.Printf("%08x: %08x  %v\n", address, word, in)
				if *dump {
					spew.Dump(in.Fields)
				}
			}

			return nil
		},
	}
}

func main() {
	appName := filepath.Base(os.Args[0])
	log.SetFlags(0)

	cfg := &config{}

	rootFlagSet := flag.NewFlagSet(appName, flag.ExitOnError)
	rootFlagSet.BoolVar(&cfg.verbose, "v", false, "Verbose mode")
	rootFlagSet.StringVar(&cfg.lang, "lang", "", "message language, such as en-US")

	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	defer func() {
		signal.Stop(quit)
		cancel()
	}()

	go func() {
		<-quit
		cancel()
	}()

	root := &ffcli.Command{
		ShortUsage: appName + " [flags] <subcommand>",
		FlagSet:    rootFlagSet,
		Options:    []ff.Option{ff.WithEnvVarPrefix(ENV_PREFIX)},
		Subcommands: []*ffcli.Command{
			asmCommand(cfg),
			runCommand(cfg),
			disasmCommand(cfg),
		},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
	}

	err := root.Parse(os.Args[1:])
	if err == nil {
		if len(cfg.lang) != 0 {
			translate.Use(strings.Split(cfg.lang, ",")...)
		}
		err = root.Run(ctx)
	}
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		log.Fatalf("%v: %v", appName, err)
	}
}
