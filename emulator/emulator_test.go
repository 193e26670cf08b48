package emulator

import (
	"context"
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/a64sim/asm"
	"github.com/ezrec/a64sim/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Equal(MEMORY_SIZE, emu.MemorySize)
	assert.Equal(map[string]int64{"MEMORY_SIZE": MEMORY_SIZE}, maps.Collect(emu.Defines()))
	emu.MemorySize = 256
	assert.Equal(map[string]int64{"MEMORY_SIZE": 256}, maps.Collect(emu.Defines()))

	assert.Equal("halt", STOP_HALT.String())
	assert.Equal("self branch", STOP_SELF_BRANCH.String())
	assert.Equal("unknown", Stop(99).String())
}

// load assembles a program, with the emulator defines, and resets the
// emulator to run it.
func load(t *testing.T, emu *Emulator, program ...string) {
	assembler := &asm.Assembler{}
	for name, value := range emu.Defines() {
		assembler.Predefine(name, value)
	}

	prog, err := assembler.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	emu.Program = prog

	err = emu.Reset()
	if err != nil {
		t.Fatal(err)
	}
}

func register(emu *Emulator, name string) uint64 {
	value, _ := emu.ReadRegister(name)
	return value
}

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	load(t, emu,
		"	mov x0, #0",
		"	mov x1, #10",
		"loop:",
		"	add x0, x0, x1",
		"	sub x1, x1, #1",
		"	cbnz x1, loop",
	)

	assert.Equal(1, emu.LineNo())
	assert.Equal(uint64(MEMORY_SIZE), register(emu, "sp"))

	stop, steps, err := emu.Run(context.Background(), 0)
	assert.NoError(err)
	assert.Equal(STOP_END, stop)
	assert.Equal(32, steps)
	assert.Equal(32, emu.Ticks())
	assert.Equal(uint64(55), register(emu, "x0"))
	assert.Equal(uint64(20), emu.ReadPc())
	assert.Equal(0, emu.LineNo())
}

func TestEmulatorTick(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"	mov x0, #1",
		"	mov x1, #2",
		"	add x2, x0, x1",
	}

	emu := NewEmulator()
	load(t, emu, program...)

	for n := range 2 {
		assert.Equal(n+1, emu.LineNo())
		stop, err := emu.Tick()
		assert.NoError(err)
		assert.Equal(STOP_NONE, stop)
	}

	stop, err := emu.Tick()
	assert.NoError(err)
	assert.Equal(STOP_END, stop)
	assert.Equal(uint64(3), register(emu, "x2"))
}

func TestEmulatorStops(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		limit   int
		stop    Stop
		steps   int
		reg     string
		value   uint64
	}){
		{"halt", []string{"mov x0, #1", "hlt #0", "mov x0, #2"}, 0, STOP_HALT, 2, "x0", 1},
		{"brk", []string{"brk #1", "mov x0, #2"}, 0, STOP_HALT, 1, "x0", 0},
		{"self_branch", []string{"mov x0, #3", "done: b done"}, 0, STOP_SELF_BRANCH, 2, "x0", 3},
		{"limit", []string{"loop: add x0, x0, #1", "b loop"}, 5, STOP_LIMIT, 5, "x0", 3},
		{"limit_reached", []string{"mov x0, #4", "b.al 0"}, 1, STOP_LIMIT, 1, "x0", 4},
		{"defines", []string{"mov x0, #MEMORY_SIZE >> 4"}, 0, STOP_END, 1, "x0", MEMORY_SIZE >> 4},
		{"call", []string{
			"	mov x0, #5",
			"	bl double",
			"	b finish",
			"double:",
			"	stp fp, lr, [sp, #-16]!",
			"	add x0, x0, x0",
			"	ldp fp, lr, [sp], #16",
			"	ret",
			"finish:",
		}, 0, STOP_END, 7, "x0", 10},
	}

	for _, entry := range table {
		emu := NewEmulator()
		load(t, emu, entry.program...)

		stop, steps, err := emu.Run(context.Background(), entry.limit)
		assert.NoError(err, entry.name)
		assert.Equal(entry.stop, stop, entry.name)
		assert.Equal(entry.steps, steps, entry.name)
		assert.Equal(entry.value, register(emu, entry.reg), entry.name)
		assert.Equal(uint64(MEMORY_SIZE), register(emu, "sp"), entry.name)
	}
}

func TestEmulatorCancel(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	load(t, emu, "loop: b loop")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stop, steps, err := emu.Run(ctx, 0)
	assert.Equal(STOP_CANCEL, stop)
	assert.Equal(0, steps)
	assert.True(errors.Is(err, context.Canceled))
	assert.Equal(0, emu.Ticks())
	assert.Equal(uint64(0), emu.ReadPc())
}

func TestEmulatorFault(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	load(t, emu,
		"	mov x1, #0xffff",
		"	ldr x0, [x1]",
		"	nop",
	)

	stop, steps, err := emu.Run(context.Background(), 0)
	assert.Equal(STOP_FAULT, stop)
	assert.Equal(1, steps)

	var rerr *ErrRuntime
	if assert.True(errors.As(err, &rerr)) {
		assert.Equal(2, rerr.LineNo)
		assert.Equal(uint64(4), rerr.Address)
	}
	var merr *cpu.MemoryError
	if assert.True(errors.As(err, &merr)) {
		assert.Equal(uint64(0xffff), merr.Address)
	}
	assert.Equal(uint64(4), emu.ReadPc())

	// A reset recovers the emulator.
	assert.NoError(emu.Reset())
	stop, _ = emu.Tick()
	assert.Equal(STOP_NONE, stop)
}

func TestEmulatorUndecodable(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	load(t, emu, "nop", ".word 0")

	stop, _, err := emu.Run(context.Background(), 0)
	assert.Equal(STOP_FAULT, stop)
	var uerr *cpu.UndecodableError
	if assert.True(errors.As(err, &uerr)) {
		assert.Equal(uint64(4), uerr.Address)
	}
}

func TestEmulatorReset(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.MemorySize = 256
	load(t, emu, "mov x0, #7", "add x0, x0, #1", "mov x1, #MEMORY_SIZE")

	_, _, err := emu.Run(context.Background(), 0)
	assert.NoError(err)
	assert.Equal(uint64(8), register(emu, "x0"))
	assert.Equal(uint64(256), register(emu, "x1"))
	in := emu.Cached(0)
	assert.NotNil(in)

	// Decoded instructions survive a reset of the same program.
	assert.NoError(emu.Reset())
	assert.Equal(uint64(0), register(emu, "x0"))
	assert.Equal(uint64(256), register(emu, "sp"))
	assert.Same(in, emu.Cached(0))

	_, _, err = emu.Run(context.Background(), 0)
	assert.NoError(err)
	assert.Equal(uint64(8), register(emu, "x0"))

	// A new program is loaded afresh.
	load(t, emu, "mov x0, #9")
	assert.Nil(emu.Cached(0))
	_, _, err = emu.Run(context.Background(), 0)
	assert.NoError(err)
	assert.Equal(uint64(9), register(emu, "x0"))
}

func TestEmulatorNotify(t *testing.T) {
	assert := assert.New(t)

	var writes []cpu.Location
	emu := NewEmulator()
	emu.Observer = cpu.ObserverFunc(func(kind cpu.AccessKind, loc cpu.Location, old, new uint64) {
		if kind == cpu.ACCESS_WRITE {
			writes = append(writes, loc)
		}
	})
	load(t, emu, "mov x3, #1", "str x3, [sp, #-8]!")

	_, _, err := emu.Run(context.Background(), 0)
	assert.NoError(err)
	assert.Empty(writes)

	emu.Notify = true
	assert.NoError(emu.Reset())
	_, _, err = emu.Run(context.Background(), 0)
	assert.NoError(err)
	assert.Equal([]cpu.Location{
		{Slot: 3},
		{Memory: true, Address: MEMORY_SIZE - 8, Width: 8},
		{Slot: cpu.SLOT_SP},
	}, writes)
}
