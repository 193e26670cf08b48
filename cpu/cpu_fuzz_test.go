package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/a64sim/isa"
)

func FuzzDecode(f *testing.F) {
	for _, word := range []uint32{0, 0x8b030041, 0xd65f03c0, 0xa9bf7bfd, 0xf8627820, 0xffffffff} {
		f.Add(word, uint64(0x1000))
	}

	f.Fuzz(func(t *testing.T, word uint32, address uint64) {
		assert := assert.New(t)

		address &^= isa.WORD_BYTES - 1

		first, err1 := Decode(isa.A64(), address, word)
		second, err2 := Decode(isa.A64(), address, word)
		if err1 != nil {
			assert.Equal(err1, err2)
			assert.Nil(second)
			return
		}
		if !assert.NoError(err2) {
			return
		}

		assert.Same(first.Entry, second.Entry)
		assert.Equal(first.Fields, second.Fields)
		assert.Equal(first.Imm, second.Imm)
		assert.Equal(first.String(), second.String())
		assert.NotNil(first.handler, first.Entry.Op.String())

		// Register 31 is never an ordinary register.
		for _, slot := range []uint8{first.Rd, first.Rn, first.Rm, first.Ra, first.Rt, first.Rt2} {
			assert.Less(slot, uint8(SLOT_COUNT))
		}

		// Executing a decoded instruction leaves xzr zero.
		cpu := NewCpu(nil, make([]byte, 64))
		cpu.cache[0] = first
		for slot := range uint8(SLOT_ZR) {
			cpu.reg.Set(slot, uint64(slot)*8)
		}
		_, _, err := cpu.Step(false)
		if err == nil {
			assert.Equal(uint64(0), cpu.reg.Get(SLOT_ZR))
		}
	})
}
