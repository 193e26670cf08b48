package asm

import (
	"errors"

	"github.com/ezrec/a64sim/translate"
)

var f = translate.From

var (
	// Operand syntax errors
	ErrRegisterExpected = errors.New(f("register name expected"))
	ErrShiftRegister    = errors.New(f("bad register for shift or extension"))
	ErrAddressFormat    = errors.New(f("unrecognized address operand format"))
	ErrOperandMissing   = errors.New(f("operand expected"))
	ErrImmediateMissing = errors.New(f("immediate expected"))
	ErrMnemonicUnknown  = errors.New(f("unknown mnemonic"))
	ErrFormMissing      = errors.New(f("no matching form"))
	ErrShiftKind        = errors.New(f("shift kind not permitted"))
	ErrExpression       = errors.New(f("bad expression"))

	// Source errors
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrDirective       = errors.New(f("directive unknown"))
)

// SyntaxError reports malformed assembly, with the byte span of the
// offending text within its line.
type SyntaxError struct {
	Message string
	Start   int
	End     int
	Err     error
}

func newSyntaxError(err error, start, end int) *SyntaxError {
	return &SyntaxError{Message: err.Error(), Start: start, End: end, Err: err}
}

func (err *SyntaxError) Error() string {
	return f("%v at %v-%v", err.Message, err.Start, err.End)
}

func (err *SyntaxError) Unwrap() error {
	return err.Err
}

// ErrLine locates an error in the source text.
type ErrLine struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrLine) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrLine) Unwrap() error {
	return err.Err
}

// ErrEval reports an expression that does not evaluate to an integer.
type ErrEval struct {
	Expr string
	Err  error
}

func (err *ErrEval) Error() string {
	return f("bad expression '%v': %v", err.Expr, err.Err)
}

func (err *ErrEval) Unwrap() []error {
	return []error{ErrExpression, err.Err}
}
