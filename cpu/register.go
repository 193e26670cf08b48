package cpu

import (
	"strings"

	"github.com/ezrec/a64sim/isa"
)

// Register file slots.
const (
	SLOT_SP    = 31 // Stack pointer.
	SLOT_ZR    = 32 // Discard slot; xzr.
	SLOT_COUNT = 33
)

// Registers is the register file.
type Registers struct {
	slot [SLOT_COUNT]uint64
}

// Get reads a slot.
func (r *Registers) Get(slot uint8) uint64 {
	return r.slot[slot]
}

// Set writes a slot. Writes to the discard slot are lost.
func (r *Registers) Set(slot uint8, value uint64) {
	r.slot[slot] = value
	r.slot[SLOT_ZR] = 0
}

// Reset zeroes all slots.
func (r *Registers) Reset() {
	clear(r.slot[:])
}

// Slot returns the slot of an encoded register number. Register 31 is the
// stack pointer if sp is set, and the discard slot otherwise.
func Slot(num uint8, sp bool) uint8 {
	if num == isa.REG_31 && !sp {
		return SLOT_ZR
	}
	return num
}

// SlotOf returns the slot of a register name.
func SlotOf(name string) (slot uint8, ok bool) {
	num, class, ok := isa.Register(name)
	if !ok {
		return
	}
	return Slot(num, class == isa.CLASS_SP), true
}

// SlotName returns the name of a slot.
func SlotName(slot uint8) string {
	switch slot {
	case SLOT_SP:
		return "sp"
	case SLOT_ZR:
		return "xzr"
	}
	return isa.RegisterName(slot, false)
}

// Flags are the NZCV condition flags.
type Flags uint8

const (
	FLAG_V = Flags(1 << 0) // Overflow.
	FLAG_C = Flags(1 << 1) // Carry.
	FLAG_Z = Flags(1 << 2) // Zero.
	FLAG_N = Flags(1 << 3) // Negative.
)

func (fl Flags) has(flag Flags) bool {
	return fl&flag != 0
}

// Cond evaluates a condition code.
func (fl Flags) Cond(code uint8) (ok bool) {
	n, z, c, v := fl.has(FLAG_N), fl.has(FLAG_Z), fl.has(FLAG_C), fl.has(FLAG_V)

	switch code >> 1 {
	case 0:
		ok = z
	case 1:
		ok = c
	case 2:
		ok = n
	case 3:
		ok = v
	case 4:
		ok = c && !z
	case 5:
		ok = n == v
	case 6:
		ok = !z && n == v
	case 7:
		return true
	}

	if code&1 != 0 {
		ok = !ok
	}

	return
}

func (fl Flags) String() string {
	var text strings.Builder
	for n, name := range "nzcv" {
		if fl&(FLAG_N>>n) != 0 {
			text.WriteRune(name - 'a' + 'A')
		} else {
			text.WriteRune(name)
		}
	}
	return text.String()
}
