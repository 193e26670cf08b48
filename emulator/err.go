package emulator

import (
	"github.com/ezrec/a64sim/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Address uint64
	LineNo  int
	Err     error
}

func (err *ErrRuntime) Error() string {
	return f("line %d (%#x) %v", err.LineNo, err.Address, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
