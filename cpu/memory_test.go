package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	origin := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}

	mem := &Memory{}
	mem.Load(origin)
	assert.Equal(0, mem.Size())
	assert.True(mem.Reset())
	assert.False(mem.Reset())
	assert.Equal(8, mem.Size())

	table := [](struct {
		width int
		value uint64
	}){
		{1, 0x11},
		{2, 0x2211},
		{4, 0x44332211},
		{8, 0x8877665544332211},
	}

	for _, entry := range table {
		value, err := mem.Read(0, entry.width)
		assert.NoError(err, entry.width)
		assert.Equal(entry.value, value, entry.width)
	}

	assert.NoError(mem.Write(4, 4, 0xdeadbeefcafe))
	value, _ := mem.Read(0, 8)
	assert.Equal(uint64(0xbeefcafe44332211), value)

	// The origin is unchanged, and restored on reset.
	assert.Equal(byte(0x55), origin[4])
	origin[0] = 0
	assert.False(mem.Reset())
	value, _ = mem.Read(0, 8)
	assert.Equal(uint64(0x8877665544332211), value)

	_, err := mem.Read(0, 3)
	assert.True(errors.Is(err, ErrMemoryWidth))
	assert.True(errors.Is(mem.Write(0, 3, 0), ErrMemoryWidth))

	_, err = mem.Read(4, 8)
	var merr *MemoryError
	if assert.True(errors.As(err, &merr)) {
		assert.Equal(uint64(4), merr.Address)
		assert.Equal(8, merr.Width)
	}
	_, err = mem.Bytes(^uint64(0), 2)
	assert.True(errors.As(err, &merr))
	assert.True(errors.As(mem.Write(8, 1, 0), &merr))

	mem.Load(nil)
	assert.True(mem.Reset())
	assert.Equal(0, mem.Size())
}
