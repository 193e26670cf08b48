package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		word uint32
		pc   uint64
		text string
	}){
		{0x8b030041, 0, "add x1, x2, x3"},
		{0x8b431041, 0, "add x1, x2, x3, lsr #4"},
		{0x8b2163ff, 0, "add sp, sp, x1"},
		{0xd2800c80, 0, "mov x0, #100"},
		{0x91400420, 0, "add x0, x1, #1, lsl #12"},
		{0xf1400c3f, 0, "cmp x1, #3, lsl #12"},
		{0xd2b579a0, 0, "movz x0, #43981, lsl #16"},
		{0xf2e00020, 0, "movk x0, #1, lsl #48"},
		{0xab2163ff, 0, "cmn sp, x1"},
		{0xaa0103e0, 0, "mov x0, x1"},
		{0xcb0103e0, 0, "neg x0, x1"},
		{0xeb02003f, 0, "cmp x1, x2"},
		{0x9a820020, 0, "csel x0, x1, x2, eq"},
		{0xa9bf7bfd, 0, "stp x29, x30, [sp, #-16]!"},
		{0xf9400420, 0, "ldr x0, [x1, #8]"},
		{0xf8408420, 0, "ldr x0, [x1], #8"},
		{0xf8627820, 0, "ldr x0, [x1, x2, lsl #3]"},
		{0xb6280043, 0, "tbz x3, #37, 0x8"},
		{0x54000041, 0, "b.ne 0x8"},
		{0x17ffffff, 0x10, "b 0xc"},
		{0x14000000, 0x40, "b 0x40"},
		{0xd503201f, 0, "nop"},
		{0xd65f03c0, 0, "ret"},
	}

	for _, entry := range table {
		e, fields, ok := A64().Decode(entry.word)
		if !assert.True(ok, entry.text) {
			continue
		}
		assert.Equal(entry.text, e.Format(fields, entry.pc), "%08x", entry.word)
	}
}
