package isa

import (
	"fmt"
	"strings"
)

// Field identifies a named sub-value of an instruction word.
type Field int

// Fields, with their pattern letter.
const (
	FIELD_RD     = Field(0)  // d: destination register
	FIELD_RN     = Field(1)  // n: first source or base register
	FIELD_RM     = Field(2)  // m: second source register
	FIELD_RA     = Field(3)  // a: addend register
	FIELD_RT     = Field(4)  // t: transfer or test register
	FIELD_RT2    = Field(5)  // u: second transfer register
	FIELD_IMM    = Field(6)  // i: immediate
	FIELD_AMOUNT = Field(7)  // s: shift or extend amount
	FIELD_KIND   = Field(8)  // h: shift kind, or half-word select
	FIELD_COND   = Field(9)  // c: condition code
	FIELD_BIT    = Field(10) // b: bit position
	FIELD_EXTEND = Field(11) // x: extend option

	FIELD_COUNT = 12
)

// fieldInfo describes each field. A non-zero width must be matched
// exactly by every pattern using the field.
var fieldInfo = [FIELD_COUNT]struct {
	letter   byte
	name     string
	width    int
	register bool
}{
	FIELD_RD:     {'d', "rd", 5, true},
	FIELD_RN:     {'n', "rn", 5, true},
	FIELD_RM:     {'m', "rm", 5, true},
	FIELD_RA:     {'a', "ra", 5, true},
	FIELD_RT:     {'t', "rt", 5, true},
	FIELD_RT2:    {'u', "rt2", 5, true},
	FIELD_IMM:    {'i', "imm", 0, false},
	FIELD_AMOUNT: {'s', "amount", 0, false},
	FIELD_KIND:   {'h', "kind", 0, false},
	FIELD_COND:   {'c', "cond", 4, false},
	FIELD_BIT:    {'b', "bit", 6, false},
	FIELD_EXTEND: {'x', "extend", 3, false},
}

// FieldOf returns the field named by a pattern letter.
func FieldOf(letter byte) (Field, bool) {
	for f, info := range fieldInfo {
		if info.letter == letter {
			return Field(f), true
		}
	}
	return 0, false
}

// Letter returns the pattern letter of the field.
func (f Field) Letter() byte {
	return fieldInfo[f].letter
}

// Register returns true if the field holds a register number.
func (f Field) Register() bool {
	return fieldInfo[f].register
}

func (f Field) String() string {
	if f < 0 || f >= FIELD_COUNT {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldInfo[f].name
}

// Fields is a set of raw field values, as stored in an instruction word.
type Fields struct {
	Value [FIELD_COUNT]uint64
	Mask  uint16 // Bit per field present.
}

// Set stores a field value.
func (fs *Fields) Set(f Field, value uint64) {
	fs.Value[f] = value
	fs.Mask |= 1 << f
}

// Get returns a field value, or zero if the field is not present.
func (fs Fields) Get(f Field) uint64 {
	return fs.Value[f]
}

// Has returns true if the field is present.
func (fs Fields) Has(f Field) bool {
	return fs.Mask&(1<<f) != 0
}

// Merge returns fs with every field present in other overwritten.
func (fs Fields) Merge(other Fields) Fields {
	for f := range Field(FIELD_COUNT) {
		if other.Has(f) {
			fs.Set(f, other.Value[f])
		}
	}
	return fs
}

func (fs Fields) String() string {
	var parts []string
	for f := range Field(FIELD_COUNT) {
		if fs.Has(f) {
			parts = append(parts, fmt.Sprintf("%c=%#x", f.Letter(), fs.Value[f]))
		}
	}
	return strings.Join(parts, " ")
}
