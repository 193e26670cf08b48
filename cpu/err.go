package cpu

import (
	"errors"

	"github.com/ezrec/a64sim/translate"
)

var f = translate.From

var (
	ErrRegisterUnknown = errors.New(f("register unknown"))
	ErrPcAlign         = errors.New(f("pc misaligned"))
	ErrMemoryWidth     = errors.New(f("memory width invalid"))
)

// UndecodableError reports a word that no opcode table entry matches.
// It stops the current run; the processor can still be inspected and reset.
type UndecodableError struct {
	Address uint64
	Word    uint32
}

func (err *UndecodableError) Error() string {
	return f("undecodable instruction %08x at %#x", err.Word, err.Address)
}

// MemoryError reports an access outside of the memory image.
type MemoryError struct {
	Address uint64
	Width   int
}

func (err *MemoryError) Error() string {
	return f("memory access of %v bytes at %#x out of range", err.Width, err.Address)
}
