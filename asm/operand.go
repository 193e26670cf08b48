package asm

import (
	"fmt"
	"strings"
)

// Operand is a parsed operand: *Register, *ShiftedRegister, *Immediate or
// *Address.
type Operand interface {
	Span() (start, end int)
	fmt.Stringer
	operand()
}

// Expr is the unevaluated text of an expression.
type Expr struct {
	Text  string
	Start int
	End   int
}

// Register is a plain register operand.
type Register struct {
	Name  string
	Start int
	End   int
}

// ShiftedRegister is a register with a shift or extend modifier.
type ShiftedRegister struct {
	*Register
	Kind   string // Shift or extend keyword.
	Amount *Expr  // Amount, if given.
	End    int
}

// Immediate is an expression operand.
type Immediate struct {
	Expr
}

// Address is a memory operand.
type Address struct {
	Parts     []Operand  // Operands inside the brackets.
	PreIndex  bool       // Closed with "]!".
	PostIndex *Immediate // Immediate following the brackets.
	Start     int
	End       int
}

func (*Register) operand()        {}
func (*ShiftedRegister) operand() {}
func (*Immediate) operand()       {}
func (*Address) operand()         {}

func (op *Register) Span() (int, int) {
	return op.Start, op.End
}

func (op *Register) String() string {
	return op.Name
}

func (op *ShiftedRegister) Span() (int, int) {
	return op.Start, op.End
}

func (op *ShiftedRegister) String() string {
	if op.Amount == nil {
		return fmt.Sprintf("%v, %v", op.Name, op.Kind)
	}
	return fmt.Sprintf("%v, %v #%v", op.Name, op.Kind, op.Amount.Text)
}

func (op *Immediate) Span() (int, int) {
	return op.Start, op.End
}

func (op *Immediate) String() string {
	return "#" + op.Text
}

func (op *Address) Span() (int, int) {
	if op.PostIndex != nil {
		return op.Start, op.PostIndex.End
	}
	return op.Start, op.End
}

func (op *Address) String() string {
	var parts []string
	for _, part := range op.Parts {
		parts = append(parts, part.String())
	}
	text := "[" + strings.Join(parts, ", ") + "]"
	if op.PreIndex {
		text += "!"
	}
	if op.PostIndex != nil {
		text += ", " + op.PostIndex.String()
	}
	return text
}
