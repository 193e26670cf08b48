package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/a64sim/isa"
)

func TestRegisters(t *testing.T) {
	assert := assert.New(t)

	var reg Registers
	reg.Set(5, 55)
	reg.Set(SLOT_SP, 0x1000)
	reg.Set(SLOT_ZR, 1)
	assert.Equal(uint64(55), reg.Get(5))
	assert.Equal(uint64(0x1000), reg.Get(SLOT_SP))
	assert.Equal(uint64(0), reg.Get(SLOT_ZR))

	reg.Reset()
	assert.Equal(uint64(0), reg.Get(5))
	assert.Equal(uint64(0), reg.Get(SLOT_SP))
}

func TestRegisterSlots(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint8(SLOT_SP), Slot(isa.REG_31, true))
	assert.Equal(uint8(SLOT_ZR), Slot(isa.REG_31, false))
	assert.Equal(uint8(7), Slot(7, true))
	assert.Equal(uint8(7), Slot(7, false))

	table := [](struct {
		name string
		slot uint8
	}){
		{"x0", 0},
		{"x30", 30},
		{"lr", 30},
		{"fp", 29},
		{"sp", SLOT_SP},
		{"xzr", SLOT_ZR},
	}

	for _, entry := range table {
		slot, ok := SlotOf(entry.name)
		assert.True(ok, entry.name)
		assert.Equal(entry.slot, slot, entry.name)
	}

	_, ok := SlotOf("x32")
	assert.False(ok)

	assert.Equal("x3", SlotName(3))
	assert.Equal("x30", SlotName(30))
	assert.Equal("sp", SlotName(SLOT_SP))
	assert.Equal("xzr", SlotName(SLOT_ZR))
}

func TestFlagsCond(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		flags Flags
		cond  string
		ok    bool
	}){
		{FLAG_Z, "eq", true},
		{0, "eq", false},
		{0, "ne", true},
		{FLAG_C, "hs", true},
		{FLAG_C, "lo", false},
		{FLAG_N, "mi", true},
		{FLAG_N, "pl", false},
		{FLAG_V, "vs", true},
		{FLAG_V, "vc", false},
		{FLAG_C, "hi", true},
		{FLAG_C | FLAG_Z, "hi", false},
		{FLAG_C | FLAG_Z, "ls", true},
		{FLAG_N | FLAG_V, "ge", true},
		{FLAG_N, "ge", false},
		{FLAG_N, "lt", true},
		{0, "gt", true},
		{FLAG_Z, "gt", false},
		{FLAG_Z, "le", true},
		{FLAG_N | FLAG_Z | FLAG_C | FLAG_V, "al", true},
		{0, "nv", true},
	}

	for _, entry := range table {
		code, ok := isa.Cond(entry.cond)
		assert.True(ok, entry.cond)
		assert.Equal(entry.ok, entry.flags.Cond(code), "%v %v", entry.flags, entry.cond)
	}
}

func TestFlagsString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("nzcv", Flags(0).String())
	assert.Equal("nZCv", (FLAG_Z | FLAG_C).String())
	assert.Equal("NzcV", (FLAG_N | FLAG_V).String())
}
