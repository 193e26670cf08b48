package isa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryRaw(t *testing.T) {
	assert := assert.New(t)

	b := Form("b", OP_B, "i", "i", "000101_iiiiiiiiiiiiiiiiiiiiiiiiii", PCRel('i'))
	ldr := Form("ldr", OP_LDR, "ra", "t,ni", "11111001_01iiiiii_iiiiii_nnnnn_ttttt",
		SP("n"), Scaled('i', 3))
	ldp := Form("ldp", OP_LDP, "rra", "t,u,ni", "10101001_01iiiiii_iuuuuu_nnnnn_ttttt",
		SP("n"), Signed("i"), Scaled('i', 3))
	ldrx := Form("ldr", OP_LDR, "rx", "t,nmxs", "11111000_011mmmmm_xxxs10_nnnnn_ttttt",
		SP("n"), Flag('s', 3))

	table := [](struct {
		name  string
		entry *Entry
		field Field
		value int64
		pc    uint64
		raw   uint64
		err   error
	}){
		{"b forward", b, FIELD_IMM, 0x100, 0x80, 0x20, nil},
		{"b backward", b, FIELD_IMM, 0x80, 0x100, 0x3ffffe0, nil},
		{"b self", b, FIELD_IMM, 0x40, 0x40, 0, nil},
		{"b misaligned", b, FIELD_IMM, 0x42, 0x40, 0, ErrFieldAlign},
		{"b far", b, FIELD_IMM, 1 << 28, 0, 0, ErrFieldRange},
		{"ldr scaled", ldr, FIELD_IMM, 16, 0, 2, nil},
		{"ldr misaligned", ldr, FIELD_IMM, 12, 0, 0, ErrFieldAlign},
		{"ldr negative", ldr, FIELD_IMM, -8, 0, 0, ErrFieldRange},
		{"ldr far", ldr, FIELD_IMM, 8 << 12, 0, 0, ErrFieldRange},
		{"ldp negative", ldp, FIELD_IMM, -16, 0, 0x7e, nil},
		{"ldp low", ldp, FIELD_IMM, -512, 0, 0x40, nil},
		{"ldp under", ldp, FIELD_IMM, -520, 0, 0, ErrFieldRange},
		{"ldr lsl 0", ldrx, FIELD_AMOUNT, 0, 0, 0, nil},
		{"ldr lsl 3", ldrx, FIELD_AMOUNT, 3, 0, 1, nil},
		{"ldr lsl 2", ldrx, FIELD_AMOUNT, 2, 0, 0, ErrFieldRange},
	}

	for _, entry := range table {
		assert.NoError(entry.entry.Validate(), entry.name)
		raw, err := entry.entry.Raw(entry.field, entry.value, entry.pc)
		if entry.err != nil {
			assert.True(errors.Is(err, entry.err), entry.name)
			continue
		}
		if !assert.NoError(err, entry.name) {
			continue
		}
		assert.Equal(entry.raw, raw, entry.name)
		assert.Equal(uint64(entry.value), entry.entry.Value(entry.field, raw, entry.pc), entry.name)
	}
}

func TestEntryOptions(t *testing.T) {
	assert := assert.New(t)

	e := Form("add", OP_ADD, "rre", "d,n,mxs", "10001011_001mmmmm_xxxsss_nnnnn_ddddd",
		SP("dn"))
	assert.True(e.AcceptsSP(FIELD_RD))
	assert.True(e.AcceptsSP(FIELD_RN))
	assert.False(e.AcceptsSP(FIELD_RM))
	assert.Equal(INDEX_NONE, e.Index)

	assert.True(e.AcceptsShift(3))
	e = Form("add", OP_ADD, "rrs", "d,n,mhs", "10001011_hh0mmmmm_ssssss_nnnnn_ddddd",
		Shifts("lsl", "lsr", "asr"))
	assert.True(e.AcceptsShift(0))
	assert.True(e.AcceptsShift(2))
	assert.False(e.AcceptsShift(3))

	e = Form("ldr", OP_LDR, "rx", "t,nmxs", "11111000_011mmmmm_xxxs10_nnnnn_ttttt",
		Extends("uxtw", "sxtx"))
	assert.True(e.AcceptsExtend(2))
	assert.True(e.AcceptsExtend(7))
	assert.False(e.AcceptsExtend(0))
	assert.False(e.AcceptsExtend(3))

	var fields Fields
	fields.Set(FIELD_EXTEND, 2)
	assert.True(e.Allows(fields))
	fields.Set(FIELD_EXTEND, 6)
	assert.False(e.Allows(fields))

	e = Form("ldr", OP_LDR, "rq", "t,ni", "11111000_010iiiii_iiii01_nnnnn_ttttt", Signed("i"))
	assert.Equal(INDEX_POST, e.Index)
	assert.True(e.Conv(FIELD_IMM).Signed)
	assert.Equal("ldr rq 11111000010iiiiiiiii01nnnnnttttt", e.String())

	assert.Panics(func() { Form("x", OP_NOP, "", "", "11010101_00000011_00100000_00011111", Signed("?")) })
	assert.Panics(func() { Form("x", OP_NOP, "", "", "11010101_00000011_00100000_00011111", Shifts("rol")) })
	assert.Panics(func() { Form("x", OP_NOP, "", "", "11010101_00000011_00100000_00011111", Extends("lsl")) })
}
