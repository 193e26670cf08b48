// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/a64sim/asm"
	"github.com/ezrec/a64sim/cpu"
	"github.com/ezrec/a64sim/isa"
)

const (
	MEMORY_SIZE = 64 * 1024 // Default memory size; the stack grows down from its top.
)

// Stop is the reason a run stopped.
type Stop int

const (
	STOP_NONE        = Stop(0) // Still running.
	STOP_HALT        = Stop(1) // Executed hlt or brk.
	STOP_SELF_BRANCH = Stop(2) // Branched to itself.
	STOP_END         = Stop(3) // Ran past the end of the program.
	STOP_LIMIT       = Stop(4) // Step limit reached.
	STOP_CANCEL      = Stop(5) // Context cancelled.
	STOP_FAULT       = Stop(6) // Runtime error.
)

var stopNames = [...]string{"running", "halt", "self branch", "end", "limit", "cancel", "fault"}

func (stop Stop) String() string {
	if stop < 0 || int(stop) >= len(stopNames) {
		return "unknown"
	}
	return stopNames[stop]
}

// Emulator state. CPU + memory + program listing.
type Emulator struct {
	Verbose    bool         // If set, enables verbose logging.
	*cpu.Cpu                // Reference to the CPU simulation.
	Program    *asm.Program // Reference to the currently running program listing.
	MemorySize int          // Memory size; at least the program image size.
	Notify     bool         // If set, steps notify the CPU observer.

	loaded *asm.Program
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:        cpu.NewCpu(isa.A64(), nil),
		Program:    &asm.Program{},
		MemorySize: MEMORY_SIZE,
	}

	return
}

// Defines returns an iterator over the symbols a program can rely on.
// MEMORY_SIZE follows the configured memory size.
func (emu *Emulator) Defines() iter.Seq2[string, int64] {
	return maps.All(map[string]int64{
		"MEMORY_SIZE": int64(emu.MemorySize),
	})
}

// Reset loads the program if it changed, and resets the CPU. The stack
// pointer starts at the top of memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	if emu.Program != emu.loaded {
		size := max(emu.MemorySize, len(emu.Program.Binary()))
		image := make([]byte, size)
		copy(image, emu.Program.Binary())
		emu.Cpu.Load(image)
		emu.loaded = emu.Program
		if emu.Verbose {
			log.Printf("emulator: load %v bytes of %v", len(emu.Program.Binary()), size)
		}
	}

	emu.Cpu.Reset()

	err = emu.Cpu.WriteRegister("sp", uint64(emu.Cpu.Memory.Size()))

	return
}

// Ticks returns the steps since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// LineNo returns the source line of the instruction at the program
// counter, or 0 if it has none.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Statement == nil {
		return 0
	}
	return dbg.LineNo
}

// Tick performs a single step of the emulator, and applies the stop
// policies to it.
func (emu *Emulator) Tick() (stop Stop, err error) {
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()

	oldPc, newPc, err := emu.Cpu.Step(emu.Notify)
	if err != nil {
		err = &ErrRuntime{Address: pc, LineNo: lineno, Err: err}
		stop = STOP_FAULT
		return
	}

	in := emu.Cpu.Cached(oldPc)
	switch {
	case in != nil && (in.Entry.Op == isa.OP_HLT || in.Entry.Op == isa.OP_BRK):
		stop = STOP_HALT
	case oldPc == newPc:
		stop = STOP_SELF_BRANCH
	case newPc >= uint64(len(emu.Program.Binary())):
		stop = STOP_END
	}

	if stop != STOP_NONE && emu.Verbose {
		log.Printf("emulator: %v at %#x", stop, oldPc)
	}

	return
}

// Run ticks until a stop, or until limit steps have run when limit is
// positive. Cancellation of ctx is checked between steps, so the state
// after a cancel is that of the last completed step.
func (emu *Emulator) Run(ctx context.Context, limit int) (stop Stop, steps int, err error) {
	for limit <= 0 || steps < limit {
		select {
		case <-ctx.Done():
			stop = STOP_CANCEL
			err = ctx.Err()
			return
		default:
		}

		stop, err = emu.Tick()
		if stop == STOP_FAULT {
			return
		}
		steps++
		if stop != STOP_NONE {
			return
		}
	}

	stop = STOP_LIMIT
	return
}
