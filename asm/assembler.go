package asm

import (
	"encoding/binary"
	"log"
	"strings"

	"github.com/ezrec/a64sim/isa"
)

// Image is a little-endian memory image under construction.
type Image struct {
	Data []byte
}

// Put stores an instruction word at the address, growing the image as
// needed.
func (img *Image) Put(address uint64, word uint32) {
	end := address + isa.WORD_BYTES
	if uint64(len(img.Data)) < end {
		img.Data = append(img.Data, make([]byte, end-uint64(len(img.Data)))...)
	}
	binary.LittleEndian.PutUint32(img.Data[address:end], word)
}

// Word returns the instruction word at the address, if present.
func (img *Image) Word(address uint64) (word uint32, ok bool) {
	end := address + isa.WORD_BYTES
	if end > uint64(len(img.Data)) || end < address {
		return
	}
	return binary.LittleEndian.Uint32(img.Data[address:end]), true
}

// Assembler encodes single instructions into an image.
type Assembler struct {
	Verbose bool       // If set, verbosely logs the encoded words.
	Table   *isa.Table // Opcode table; the A64 table if nil.
	Eval    Evaluator  // Expression evaluator; plain numbers if nil.
	Image   Image      // Encoded image.

	predefine Symbols
}

// Predefine defines, or redefines, a symbol for every parsed program.
func (asm *Assembler) Predefine(name string, value int64) {
	if asm.predefine == nil {
		asm.predefine = Symbols{}
	}
	asm.predefine[name] = value
}

func (asm *Assembler) table() *isa.Table {
	if asm.Table == nil {
		return isa.A64()
	}
	return asm.Table
}

func (asm *Assembler) eval(expr *Expr) (value int64, err error) {
	eval := asm.Eval
	if eval == nil {
		eval = Symbols(nil)
	}
	value, err = eval.Eval(expr.Text)
	if err != nil {
		err = newSyntaxError(err, expr.Start, expr.End)
	}
	return
}

// Assemble encodes an instruction for the address, and writes it into the
// image. It returns the number of bytes written.
func (asm *Assembler) Assemble(mnemonic Token, operands []Token, address uint64) (size int, err error) {
	words, err := asm.Encode(mnemonic, operands, address)
	if err != nil {
		return
	}

	for n, word := range words {
		asm.Image.Put(address+uint64(n*isa.WORD_BYTES), word)
	}
	size = len(words) * isa.WORD_BYTES

	return
}

// Encode encodes an instruction for the address.
//
// The forms of the mnemonic are tried in order. The first form whose shape
// accepts the operands, and whose fields can hold their values, is used.
func (asm *Assembler) Encode(mnemonic Token, operands []Token, address uint64) (words []uint32, err error) {
	forms := asm.table().Forms(strings.ToLower(mnemonic.Text))
	if len(forms) == 0 {
		err = newSyntaxError(ErrMnemonicUnknown, mnemonic.Start, mnemonic.End)
		return
	}

	ops, err := ParseOperands(operands)
	if err != nil {
		return
	}

	var first error
	for _, e := range forms {
		if !accepts(e, ops) {
			continue
		}
		var fields isa.Fields
		fields, err = asm.bind(e, ops, address)
		if err == nil {
			var word uint32
			word, err = asm.table().Encode(e, fields)
			if err == nil {
				if asm.Verbose {
					log.Printf("asm: %#x: %v => %08x (%v)", address, e.Format(fields, address), word, fields)
				}
				words = []uint32{word}
				return
			}
		}
		if first == nil {
			first = err
		}
	}

	if first != nil {
		err = first
		return
	}

	start, end := span(operands)
	if len(operands) == 0 {
		start, end = mnemonic.Start, mnemonic.End
	}
	err = newSyntaxError(ErrFormMissing, start, end)

	return
}

// acceptsRegister checks the register class against the field.
func acceptsRegister(e *isa.Entry, letter byte, op Operand) bool {
	reg, ok := op.(*Register)
	if !ok {
		return false
	}
	_, class, ok := isa.Register(reg.Name)
	if !ok {
		return false
	}
	field, _ := isa.FieldOf(letter)
	switch class {
	case isa.CLASS_SP:
		return e.AcceptsSP(field)
	case isa.CLASS_ZR:
		return !e.AcceptsSP(field)
	}
	return true
}

// baseOf returns the register of a plain or modified register operand.
func baseOf(op Operand) (reg *Register, shift string) {
	switch op := op.(type) {
	case *Register:
		return op, ""
	case *ShiftedRegister:
		return op.Register, strings.ToLower(op.Kind)
	}
	return
}

func isExtend(shift string) bool {
	_, ok := isa.ExtendKind(shift)
	return ok || shift == "lsl"
}

// accepts returns true if the operands match the kinds, count and order of
// the shape, and the register classes of its fields.
func accepts(e *isa.Entry, ops []Operand) bool {
	if len(ops) != len(e.Shape) {
		return false
	}

	for n, kind := range e.Shape {
		group := e.Bind[n]
		op := ops[n]
		switch kind {
		case isa.KIND_REG:
			if !acceptsRegister(e, group[0], op) {
				return false
			}
		case isa.KIND_IMM:
			if _, ok := op.(*Immediate); !ok {
				return false
			}
		case isa.KIND_SHIFTED, isa.KIND_EXTENDED:
			reg, shift := baseOf(op)
			if reg == nil || !acceptsRegister(e, group[0], reg) {
				return false
			}
			if kind == isa.KIND_SHIFTED && shift != "" {
				if _, ok := isa.ShiftKind(shift); !ok {
					return false
				}
			}
			if kind == isa.KIND_EXTENDED && shift != "" && !isExtend(shift) {
				return false
			}
		case isa.KIND_OFFSET, isa.KIND_PRE, isa.KIND_POST, isa.KIND_REGOFFSET:
			addr, ok := op.(*Address)
			if !ok || len(addr.Parts) == 0 || !acceptsRegister(e, group[0], addr.Parts[0]) {
				return false
			}
			parts := addr.Parts[1:]
			switch kind {
			case isa.KIND_OFFSET:
				if addr.PreIndex || addr.PostIndex != nil || len(parts) > 1 {
					return false
				}
				if len(parts) == 1 {
					if _, ok := parts[0].(*Immediate); !ok {
						return false
					}
				}
			case isa.KIND_PRE:
				if !addr.PreIndex || addr.PostIndex != nil || len(parts) != 1 {
					return false
				}
				if _, ok := parts[0].(*Immediate); !ok {
					return false
				}
			case isa.KIND_POST:
				if addr.PreIndex || addr.PostIndex == nil || len(parts) != 0 {
					return false
				}
			case isa.KIND_REGOFFSET:
				if addr.PreIndex || addr.PostIndex != nil || len(parts) != 1 {
					return false
				}
				reg, shift := baseOf(parts[0])
				if reg == nil || !acceptsRegister(e, group[1], reg) {
					return false
				}
				if shift != "" && !isExtend(shift) {
					return false
				}
			}
		default:
			return false
		}
	}

	return true
}

// bind evaluates the operands into the fields of the entry, for an
// instruction at pc.
func (asm *Assembler) bind(e *isa.Entry, ops []Operand, pc uint64) (fields isa.Fields, err error) {
	field := func(letter byte) isa.Field {
		f, _ := isa.FieldOf(letter)
		return f
	}
	setReg := func(letter byte, reg *Register) {
		num, _, _ := isa.Register(reg.Name)
		fields.Set(field(letter), uint64(num))
	}
	setValue := func(letter byte, value int64, start, end int) (err error) {
		raw, err := e.Raw(field(letter), value, pc)
		if err != nil {
			err = newSyntaxError(err, start, end)
			return
		}
		fields.Set(field(letter), raw)
		return
	}
	setExpr := func(letter byte, expr *Expr) (err error) {
		value, err := asm.eval(expr)
		if err != nil {
			return
		}
		return setValue(letter, value, expr.Start, expr.End)
	}
	// setModifier binds the shift or extend of a register operand.
	setModifier := func(kind isa.Kind, op Operand, kindLetter, amountLetter byte) (err error) {
		shifted, ok := op.(*ShiftedRegister)
		if !ok {
			if kind == isa.KIND_SHIFTED {
				fields.Set(field(kindLetter), 0)
			} else {
				fields.Set(field(kindLetter), isa.EXTEND_LSL)
			}
			fields.Set(field(amountLetter), 0)
			return
		}

		start, end := shifted.Span()
		name := strings.ToLower(shifted.Kind)

		var code uint8
		if kind == isa.KIND_SHIFTED {
			code, _ = isa.ShiftKind(name)
			if !e.AcceptsShift(code) {
				err = newSyntaxError(ErrShiftKind, start, end)
				return
			}
			if shifted.Amount == nil {
				err = newSyntaxError(ErrImmediateMissing, start, end)
				return
			}
		} else {
			code = isa.EXTEND_LSL
			if name != "lsl" {
				code, _ = isa.ExtendKind(name)
			}
			if !e.AcceptsExtend(code) {
				err = newSyntaxError(ErrShiftKind, start, end)
				return
			}
		}
		fields.Set(field(kindLetter), uint64(code))

		if shifted.Amount == nil {
			return setValue(amountLetter, 0, start, end)
		}
		amount, err := asm.eval(shifted.Amount)
		if err != nil {
			return
		}
		if kind != isa.KIND_SHIFTED && (amount < 0 || amount > 4) {
			err = newSyntaxError(&isa.ErrField{Field: field(amountLetter), Value: amount, Err: isa.ErrFieldRange},
				shifted.Amount.Start, shifted.Amount.End)
			return
		}
		return setValue(amountLetter, amount, shifted.Amount.Start, shifted.Amount.End)
	}

	for n, kind := range e.Shape {
		group := e.Bind[n]
		op := ops[n]
		switch kind {
		case isa.KIND_REG:
			setReg(group[0], op.(*Register))
		case isa.KIND_IMM:
			err = setExpr(group[0], &op.(*Immediate).Expr)
		case isa.KIND_SHIFTED, isa.KIND_EXTENDED:
			reg, _ := baseOf(op)
			setReg(group[0], reg)
			err = setModifier(kind, op, group[1], group[2])
		case isa.KIND_OFFSET, isa.KIND_PRE:
			addr := op.(*Address)
			setReg(group[0], addr.Parts[0].(*Register))
			if len(addr.Parts) > 1 {
				err = setExpr(group[1], &addr.Parts[1].(*Immediate).Expr)
			} else {
				start, end := addr.Span()
				err = setValue(group[1], 0, start, end)
			}
		case isa.KIND_POST:
			addr := op.(*Address)
			setReg(group[0], addr.Parts[0].(*Register))
			err = setExpr(group[1], &addr.PostIndex.Expr)
		case isa.KIND_REGOFFSET:
			addr := op.(*Address)
			setReg(group[0], addr.Parts[0].(*Register))
			reg, _ := baseOf(addr.Parts[1])
			setReg(group[1], reg)
			err = setModifier(isa.KIND_REGOFFSET, addr.Parts[1], group[2], group[3])
		}
		if err != nil {
			return
		}
	}

	return
}
