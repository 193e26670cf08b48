package isa

import (
	"errors"

	"github.com/ezrec/a64sim/translate"
)

var f = translate.From

var (
	// Pattern errors
	ErrPatternLength = errors.New(f("pattern length"))
	ErrPatternSymbol = errors.New(f("pattern symbol"))
	ErrPatternWidth  = errors.New(f("pattern field width"))

	// Entry errors
	ErrEntryShape     = errors.New(f("shape and bindings disagree"))
	ErrEntryBind      = errors.New(f("binding invalid"))
	ErrEntryField     = errors.New(f("field not in pattern"))
	ErrEntryDuplicate = errors.New(f("field bound twice"))

	// Field value errors
	ErrFieldRange = errors.New(f("immediate out of range"))
	ErrFieldAlign = errors.New(f("misaligned immediate"))
)

// ErrPattern reports a malformed pattern.
type ErrPattern struct {
	Text string
	Err  error
}

func (err *ErrPattern) Error() string {
	return f("pattern '%v' %v", err.Text, err.Err)
}

func (err *ErrPattern) Unwrap() error {
	return err.Err
}

// ErrEntry reports a malformed opcode table entry.
type ErrEntry struct {
	Mnemonic string
	Pattern  string
	Err      error
}

func (err *ErrEntry) Error() string {
	return f("entry %v '%v' %v", err.Mnemonic, err.Pattern, err.Err)
}

func (err *ErrEntry) Unwrap() error {
	return err.Err
}

// ErrField reports a field value that the encoding cannot hold.
type ErrField struct {
	Field Field
	Value int64
	Err   error
}

func (err *ErrField) Error() string {
	return f("%v: %v %#x", err.Err, err.Field, err.Value)
}

func (err *ErrField) Unwrap() error {
	return err.Err
}
