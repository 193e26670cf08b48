package isa

import (
	"fmt"
	"strings"
)

// Kind is the expected kind of one textual operand.
type Kind byte

const (
	KIND_REG       = Kind('r') // xN
	KIND_SHIFTED   = Kind('s') // xN{, lsl|lsr|asr|ror #amount}
	KIND_EXTENDED  = Kind('e') // xN{, uxtb..sxtx|lsl {#amount}}
	KIND_IMM       = Kind('i') // #expr
	KIND_OFFSET    = Kind('a') // [xN{, #expr}]
	KIND_REGOFFSET = Kind('x') // [xN, xM{, extend {#amount}}]
	KIND_PRE       = Kind('p') // [xN, #expr]!
	KIND_POST      = Kind('q') // [xN], #expr
)

// Arity returns the number of fields an operand of this kind binds.
func (k Kind) Arity() int {
	switch k {
	case KIND_REG, KIND_IMM:
		return 1
	case KIND_OFFSET, KIND_PRE, KIND_POST:
		return 2
	case KIND_SHIFTED, KIND_EXTENDED:
		return 3
	case KIND_REGOFFSET:
		return 4
	}
	return 0
}

// Conv describes how an operand value maps to a raw field value.
type Conv struct {
	Signed bool   // Two's complement field.
	Scale  uint   // Value is a multiple of 1<<Scale, stored shifted down.
	PCRel  bool   // Value is an absolute address, stored relative to the instruction.
	Flag   uint64 // Value must be 0 or Flag, stored as a single bit.
}

// Entry is one encoding form of a mnemonic.
type Entry struct {
	Mnemonic string
	Op       Op
	Shape    []Kind   // Operand kinds, in source order.
	Bind     []string // Field letters bound by each operand.
	Pattern  *Pattern
	Index    IndexMode
	Preset   Fields // Values of fields that no operand binds.

	conv    [FIELD_COUNT]Conv
	sp      uint16 // Register fields where 31 is sp rather than xzr.
	shifts  uint8  // Permitted shift kinds; zero permits all.
	extends uint8  // Permitted extend options; zero permits all.
}

// Option adjusts an entry under construction.
type Option func(e *Entry)

func mustField(letter byte) Field {
	field, ok := FieldOf(letter)
	if !ok {
		panic(fmt.Sprintf("isa: unknown field letter %q", letter))
	}
	return field
}

// Signed marks fields as two's complement.
func Signed(letters string) Option {
	return func(e *Entry) {
		for _, letter := range []byte(letters) {
			e.conv[mustField(letter)].Signed = true
		}
	}
}

// Scaled marks a field as holding its value divided by 1<<log2.
func Scaled(letter byte, log2 uint) Option {
	return func(e *Entry) {
		e.conv[mustField(letter)].Scale = log2
	}
}

// PCRel marks a field as a signed, word scaled, PC-relative target.
func PCRel(letter byte) Option {
	return func(e *Entry) {
		c := &e.conv[mustField(letter)]
		c.Signed = true
		c.Scale = 2
		c.PCRel = true
	}
}

// Flag marks a single bit field that encodes the values 0 and value.
func Flag(letter byte, value uint64) Option {
	return func(e *Entry) {
		e.conv[mustField(letter)].Flag = value
	}
}

// SP marks register fields where register 31 is the stack pointer.
func SP(letters string) Option {
	return func(e *Entry) {
		for _, letter := range []byte(letters) {
			e.sp |= 1 << mustField(letter)
		}
	}
}

// Preset gives a value to a field that no operand binds.
func Preset(letter byte, value uint64) Option {
	return func(e *Entry) {
		e.Preset.Set(mustField(letter), value)
	}
}

// Shifts restricts the permitted shift kinds of shifted register operands.
func Shifts(names ...string) Option {
	return func(e *Entry) {
		for _, name := range names {
			kind, ok := ShiftKind(name)
			if !ok {
				panic(fmt.Sprintf("isa: unknown shift %q", name))
			}
			e.shifts |= 1 << kind
		}
	}
}

// Extends restricts the permitted extend options of extended register and
// register offset operands.
func Extends(names ...string) Option {
	return func(e *Entry) {
		for _, name := range names {
			option, ok := ExtendKind(name)
			if !ok {
				panic(fmt.Sprintf("isa: unknown extend %q", name))
			}
			e.extends |= 1 << option
		}
	}
}

// Form builds an entry. The shape is one Kind letter per operand, the bind
// list is comma separated field letters per operand, and the pattern is
// compiled with MustCompile.
func Form(mnemonic string, op Op, shape string, bind string, pattern string, opts ...Option) *Entry {
	e := &Entry{
		Mnemonic: mnemonic,
		Op:       op,
		Pattern:  MustCompile(pattern),
	}

	for _, k := range []byte(shape) {
		kind := Kind(k)
		e.Shape = append(e.Shape, kind)
		switch kind {
		case KIND_OFFSET, KIND_REGOFFSET:
			e.Index = INDEX_OFFSET
		case KIND_PRE:
			e.Index = INDEX_PRE
		case KIND_POST:
			e.Index = INDEX_POST
		}
	}

	if len(bind) != 0 {
		e.Bind = strings.Split(bind, ",")
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Validate checks that the shape, bindings and pattern agree.
func (e *Entry) Validate() (err error) {
	defer func() {
		if err != nil {
			err = &ErrEntry{Mnemonic: e.Mnemonic, Pattern: e.Pattern.String(), Err: err}
		}
	}()

	if len(e.Shape) != len(e.Bind) {
		return ErrEntryShape
	}

	var bound uint16
	for n, kind := range e.Shape {
		group := e.Bind[n]
		if kind.Arity() == 0 || len(group) != kind.Arity() {
			return ErrEntryBind
		}
		for k, letter := range []byte(group) {
			field, ok := FieldOf(letter)
			if !ok {
				return ErrEntryBind
			}
			if !e.Pattern.Has(field) {
				return ErrEntryField
			}
			if bound&(1<<field) != 0 {
				return ErrEntryDuplicate
			}
			bound |= 1 << field
			if kind != KIND_IMM && k == 0 && !field.Register() {
				return ErrEntryBind
			}
		}
		if kind == KIND_REGOFFSET {
			if m, _ := FieldOf(group[1]); !m.Register() {
				return ErrEntryBind
			}
		}
	}

	return nil
}

// AcceptsSP returns true if register 31 of the field is the stack pointer.
func (e *Entry) AcceptsSP(field Field) bool {
	return e.sp&(1<<field) != 0
}

// AcceptsShift returns true if the shift kind is permitted.
func (e *Entry) AcceptsShift(kind uint8) bool {
	return e.shifts == 0 || e.shifts&(1<<kind) != 0
}

// AcceptsExtend returns true if the extend option is permitted.
func (e *Entry) AcceptsExtend(option uint8) bool {
	return e.extends == 0 || e.extends&(1<<option) != 0
}

// Allows returns true if the shift kind and extend option fields hold
// values the entry permits. Other values are unallocated encodings.
func (e *Entry) Allows(fields Fields) bool {
	if e.shifts != 0 && fields.Has(FIELD_KIND) && !e.AcceptsShift(uint8(fields.Get(FIELD_KIND))) {
		return false
	}
	if e.extends != 0 && fields.Has(FIELD_EXTEND) && !e.AcceptsExtend(uint8(fields.Get(FIELD_EXTEND))) {
		return false
	}
	return true
}

// Conv returns the value conversion of a field.
func (e *Entry) Conv(field Field) Conv {
	return e.conv[field]
}

func mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (1 << width) - 1
}

// Value converts a raw field value to its operand value, for an
// instruction at address pc.
func (e *Entry) Value(field Field, raw uint64, pc uint64) uint64 {
	c := e.conv[field]
	value := raw

	if c.Flag != 0 && raw != 0 {
		value = c.Flag
	}
	if c.Signed {
		width := e.Pattern.Width(field)
		if width > 0 && width < 64 && raw&(1<<(width-1)) != 0 {
			value = raw | ^mask(width)
		}
	}
	value <<= c.Scale
	if c.PCRel {
		value += pc
	}

	return value
}

// Raw converts an operand value to its raw field value, for an instruction
// at address pc. Values the field cannot hold are errors, never truncated.
func (e *Entry) Raw(field Field, value int64, pc uint64) (raw uint64, err error) {
	c := e.conv[field]
	width := e.Pattern.Width(field)
	v := value

	if c.PCRel {
		v -= int64(pc)
	}

	if c.Flag != 0 {
		switch uint64(v) {
		case 0:
		case c.Flag:
			v = 1
		default:
			err = &ErrField{Field: field, Value: value, Err: ErrFieldRange}
			return
		}
	}

	if c.Scale != 0 {
		if v&int64(mask(int(c.Scale))) != 0 {
			err = &ErrField{Field: field, Value: value, Err: ErrFieldAlign}
			return
		}
		v >>= c.Scale
	}

	if c.Signed {
		lo := -int64(1) << (width - 1)
		hi := int64(1)<<(width-1) - 1
		if v < lo || v > hi {
			err = &ErrField{Field: field, Value: value, Err: ErrFieldRange}
			return
		}
		raw = uint64(v) & mask(width)
		return
	}

	if v < 0 || uint64(v) > mask(width) {
		err = &ErrField{Field: field, Value: value, Err: ErrFieldRange}
		return
	}

	raw = uint64(v)
	return
}

func (e *Entry) String() string {
	var shape []string
	for _, kind := range e.Shape {
		shape = append(shape, string(kind))
	}
	return fmt.Sprintf("%v %v %v", e.Mnemonic, strings.Join(shape, ""), e.Pattern)
}
