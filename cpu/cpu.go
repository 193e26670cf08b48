package cpu

import (
	"fmt"
	"log"
	"strings"

	"github.com/ezrec/a64sim/isa"
)

// Second operand forms of data processing instructions.
const (
	OPERAND_SHIFTED  = 0 // Rm, shift #amount
	OPERAND_EXTENDED = 1 // Rm, extend #amount
	OPERAND_IMM      = 2 // #imm, lsl #(12 * kind)
)

// Instruction is a decoded instruction, bound to its handler.
type Instruction struct {
	Address uint64
	Word    uint32
	Entry   *isa.Entry
	Fields  isa.Fields // Raw field values, with presets.

	// Register slots, by role.
	Rd, Rn, Rm, Ra, Rt, Rt2 uint8

	Imm     uint64 // Immediate value; branch targets are absolute.
	Amount  uint64 // Shift or extend amount.
	Kind    uint8  // Shift kind, or half-word select.
	Extend  uint8  // Extend option.
	Cond    uint8  // Condition code.
	Bit     uint8  // Bit position.
	Operand int    // Second operand form.

	handler handler
}

func (in *Instruction) String() string {
	return in.Entry.Format(in.Fields, in.Address)
}

// Cpu is the processor state.
type Cpu struct {
	Verbose  bool       // Set to enable verbose logging.
	Observer Observer   // Told of the accesses of notifying steps.
	Table    *isa.Table // Opcode table used for decoding.

	Pc     uint64 // Program counter.
	Flags  Flags  // Condition flags.
	Ticks  int    // Steps completed since reset.
	Memory Memory // Memory image.

	reg   Registers
	cache []*Instruction // Decoded instructions, by word address.

	notify   bool
	accesses []access
}

// NewCpu creates a processor for a table and an origin memory image, and
// resets it.
func NewCpu(table *isa.Table, origin []byte) (cpu *Cpu) {
	cpu = &Cpu{
		Table: table,
	}

	cpu.Load(origin)
	cpu.Reset()

	return
}

// Load replaces the origin memory image, and forgets all decoded
// instructions. The working image is reloaded by Reset.
func (cpu *Cpu) Load(origin []byte) {
	cpu.Memory.Load(origin)
	clear(cpu.cache)
}

// Reset zeroes the program counter, registers and flags, and recopies the
// memory image from its origin. Decoded instructions are kept unless the
// memory size changed.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Pc = 0
	cpu.Flags = 0
	cpu.Ticks = 0
	cpu.reg.Reset()

	if cpu.Memory.Reset() || cpu.cache == nil {
		cpu.cache = make([]*Instruction, cpu.Memory.Size()/isa.WORD_BYTES)
	}
}

// Cached returns the decoded instruction at an address, if any.
func (cpu *Cpu) Cached(address uint64) *Instruction {
	index := address / isa.WORD_BYTES
	if address%isa.WORD_BYTES != 0 || index >= uint64(len(cpu.cache)) {
		return nil
	}
	return cpu.cache[index]
}

// Fetch returns the decoded instruction at an address, decoding and
// caching it on first use.
func (cpu *Cpu) Fetch(address uint64) (in *Instruction, err error) {
	if address%isa.WORD_BYTES != 0 {
		err = ErrPcAlign
		return
	}

	index := address / isa.WORD_BYTES
	if index >= uint64(len(cpu.cache)) {
		err = &MemoryError{Address: address, Width: isa.WORD_BYTES}
		return
	}

	in = cpu.cache[index]
	if in != nil {
		return
	}

	word, err := cpu.Memory.Read(address, isa.WORD_BYTES)
	if err != nil {
		return
	}

	in, err = Decode(cpu.table(), address, uint32(word))
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: decode %#x: %08x %v", address, in.Word, in)
	}

	cpu.cache[index] = in

	return
}

func (cpu *Cpu) table() *isa.Table {
	if cpu.Table == nil {
		cpu.Table = isa.A64()
	}
	return cpu.Table
}

// Decode decodes an instruction word at an address, and binds its handler.
func Decode(table *isa.Table, address uint64, word uint32) (in *Instruction, err error) {
	e, fields, ok := table.Decode(word)
	if !ok {
		err = &UndecodableError{Address: address, Word: word}
		return
	}

	slot := func(field isa.Field) uint8 {
		return Slot(uint8(fields.Get(field)), e.AcceptsSP(field))
	}
	value := func(field isa.Field) uint64 {
		return e.Value(field, fields.Get(field), address)
	}

	in = &Instruction{
		Address: address,
		Word:    word,
		Entry:   e,
		Fields:  fields,
		Rd:      slot(isa.FIELD_RD),
		Rn:      slot(isa.FIELD_RN),
		Rm:      slot(isa.FIELD_RM),
		Ra:      slot(isa.FIELD_RA),
		Rt:      slot(isa.FIELD_RT),
		Rt2:     slot(isa.FIELD_RT2),
		Imm:     value(isa.FIELD_IMM),
		Amount:  value(isa.FIELD_AMOUNT),
		Kind:    uint8(value(isa.FIELD_KIND)),
		Extend:  uint8(value(isa.FIELD_EXTEND)),
		Cond:    uint8(value(isa.FIELD_COND)),
		Bit:     uint8(value(isa.FIELD_BIT)),
		handler: handlers[e.Op],
	}

	switch {
	case fields.Has(isa.FIELD_IMM):
		in.Operand = OPERAND_IMM
	case fields.Has(isa.FIELD_EXTEND):
		in.Operand = OPERAND_EXTENDED
	default:
		in.Operand = OPERAND_SHIFTED
	}

	return
}

// Step executes one instruction. It returns the program counter before and
// after the step. A failed step leaves the program counter unchanged. If
// notify is set, the Observer is told of every access the step made.
func (cpu *Cpu) Step(notify bool) (oldPc, newPc uint64, err error) {
	oldPc = cpu.Pc
	newPc = oldPc

	in, err := cpu.Fetch(oldPc)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: %#x: %08x %v", in.Address, in.Word, in)
	}

	cpu.notify = notify && cpu.Observer != nil
	cpu.accesses = cpu.accesses[:0]
	defer func() {
		cpu.notify = false
	}()

	jumped, err := in.handler(cpu, in)
	if err != nil {
		return
	}
	if !jumped {
		cpu.Pc += isa.WORD_BYTES
	}
	cpu.Ticks++
	newPc = cpu.Pc

	if cpu.notify {
		for _, acc := range cpu.accesses {
			cpu.Observer.OnAccess(acc.kind, acc.loc, acc.old, acc.new)
		}
	}

	return
}

// get reads a register slot.
func (cpu *Cpu) get(slot uint8) (value uint64) {
	value = cpu.reg.Get(slot)
	if cpu.notify {
		cpu.accesses = append(cpu.accesses, access{kind: ACCESS_READ, loc: Location{Slot: slot}, old: value, new: value})
	}
	return
}

// set writes a register slot.
func (cpu *Cpu) set(slot uint8, value uint64) {
	if cpu.notify {
		old := cpu.reg.Get(slot)
		cpu.reg.Set(slot, value)
		cpu.accesses = append(cpu.accesses, access{kind: ACCESS_WRITE, loc: Location{Slot: slot}, old: old, new: cpu.reg.Get(slot)})
		return
	}
	cpu.reg.Set(slot, value)
}

// load reads memory.
func (cpu *Cpu) load(address uint64, width int) (value uint64, err error) {
	value, err = cpu.Memory.Read(address, width)
	if err == nil && cpu.notify {
		loc := Location{Memory: true, Address: address, Width: width}
		cpu.accesses = append(cpu.accesses, access{kind: ACCESS_READ, loc: loc, old: value, new: value})
	}
	return
}

// store writes memory.
func (cpu *Cpu) store(address uint64, width int, value uint64) (err error) {
	var old uint64
	if cpu.notify {
		old, err = cpu.Memory.Read(address, width)
		if err != nil {
			return
		}
	}
	err = cpu.Memory.Write(address, width, value)
	if err == nil && cpu.notify {
		loc := Location{Memory: true, Address: address, Width: width}
		cpu.accesses = append(cpu.accesses, access{kind: ACCESS_WRITE, loc: loc, old: old, new: value & widthMask(width)})
	}
	return
}

func widthMask(width int) uint64 {
	if width >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << (8 * width)) - 1
}

// ReadPc returns the program counter.
func (cpu *Cpu) ReadPc() uint64 {
	return cpu.Pc
}

// ReadRegister reads a register by name.
func (cpu *Cpu) ReadRegister(name string) (value uint64, err error) {
	if strings.EqualFold(name, "pc") {
		return cpu.Pc, nil
	}
	slot, ok := SlotOf(name)
	if !ok {
		err = fmt.Errorf("%w: %v", ErrRegisterUnknown, name)
		return
	}
	return cpu.reg.Get(slot), nil
}

// WriteRegister writes a register by name, as a loader would.
func (cpu *Cpu) WriteRegister(name string, value uint64) (err error) {
	if strings.EqualFold(name, "pc") {
		cpu.Pc = value
		return
	}
	slot, ok := SlotOf(name)
	if !ok {
		err = fmt.Errorf("%w: %v", ErrRegisterUnknown, name)
		return
	}
	cpu.reg.Set(slot, value)
	return
}

// ReadMemory returns a copy of the working memory image.
func (cpu *Cpu) ReadMemory(address uint64, width int) (data []byte, err error) {
	view, err := cpu.Memory.Bytes(address, width)
	if err != nil {
		return
	}
	data = append([]byte(nil), view...)
	return
}

// String returns the processor state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("%5s: %016x\n", "pc", cpu.Pc)
	text += fmt.Sprintf("%5s: %v\n", "nzcv", cpu.Flags)
	for slot := range uint8(SLOT_ZR) {
		text += fmt.Sprintf("%5s: %016x\n", SlotName(slot), cpu.reg.Get(slot))
	}
	return
}
