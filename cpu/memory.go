package cpu

import (
	"encoding/binary"
	"slices"
)

// Memory is a byte addressable, little-endian memory image. The working
// image is recopied from an immutable origin on every reset.
type Memory struct {
	origin []byte
	data   []byte
}

// Load sets the origin image. The working image is unchanged until Reset.
func (mem *Memory) Load(origin []byte) {
	mem.origin = slices.Clone(origin)
}

// Reset recopies the working image from the origin. It returns true if the
// working image was resized.
func (mem *Memory) Reset() (resized bool) {
	if len(mem.data) != len(mem.origin) {
		mem.data = make([]byte, len(mem.origin))
		resized = true
	}
	copy(mem.data, mem.origin)
	return
}

// Size returns the size of the working image.
func (mem *Memory) Size() int {
	return len(mem.data)
}

// Bytes returns a view of the working image.
func (mem *Memory) Bytes(address uint64, width int) (data []byte, err error) {
	end := address + uint64(width)
	if width < 0 || end < address || end > uint64(len(mem.data)) {
		err = &MemoryError{Address: address, Width: width}
		return
	}
	data = mem.data[address:end]
	return
}

// Read reads a 1, 2, 4 or 8 byte value.
func (mem *Memory) Read(address uint64, width int) (value uint64, err error) {
	data, err := mem.Bytes(address, width)
	if err != nil {
		return
	}

	switch width {
	case 1:
		value = uint64(data[0])
	case 2:
		value = uint64(binary.LittleEndian.Uint16(data))
	case 4:
		value = uint64(binary.LittleEndian.Uint32(data))
	case 8:
		value = binary.LittleEndian.Uint64(data)
	default:
		err = ErrMemoryWidth
	}

	return
}

// Write writes the low 1, 2, 4 or 8 bytes of a value.
func (mem *Memory) Write(address uint64, width int, value uint64) (err error) {
	data, err := mem.Bytes(address, width)
	if err != nil {
		return
	}

	switch width {
	case 1:
		data[0] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(data, uint16(value))
	case 4:
		binary.LittleEndian.PutUint32(data, uint32(value))
	case 8:
		binary.LittleEndian.PutUint64(data, value)
	default:
		err = ErrMemoryWidth
	}

	return
}
