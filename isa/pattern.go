package isa

import (
	"strings"
)

const (
	WORD_BITS  = 32 // Bits in an instruction word.
	WORD_BYTES = 4  // Bytes in an instruction word.
)

// Pattern is a compiled instruction word template.
//
// The template text has one symbol per bit, most significant bit first.
// '0' and '1' are literal bits that must match on decode and are set on
// encode. Letters name fields (see FieldOf). A letter may appear at
// several, non-contiguous positions; the first position holds the most
// significant bit of the field value.
type Pattern struct {
	text  string
	mask  uint32               // Literal bit positions.
	value uint32               // Literal bit values.
	pos   [FIELD_COUNT][]uint8 // Word bit positions per field, field MSB first.
}

// Compile compiles a pattern template.
func Compile(text string) (p *Pattern, err error) {
	text = strings.ReplaceAll(text, "_", "")

	if len(text) != WORD_BITS {
		err = &ErrPattern{Text: text, Err: ErrPatternLength}
		return
	}

	p = &Pattern{text: text}

	for n := range WORD_BITS {
		bit := uint8(WORD_BITS - 1 - n)
		switch ch := text[n]; ch {
		case '0':
			p.mask |= 1 << bit
		case '1':
			p.mask |= 1 << bit
			p.value |= 1 << bit
		default:
			field, ok := FieldOf(ch)
			if !ok {
				p = nil
				err = &ErrPattern{Text: text, Err: ErrPatternSymbol}
				return
			}
			p.pos[field] = append(p.pos[field], bit)
		}
	}

	for field, info := range fieldInfo {
		width := len(p.pos[field])
		if width != 0 && info.width != 0 && width != info.width {
			p = nil
			err = &ErrPattern{Text: text, Err: ErrPatternWidth}
			return
		}
	}

	return
}

// MustCompile compiles a pattern template, and panics on error.
func MustCompile(text string) *Pattern {
	p, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the template text.
func (p *Pattern) String() string {
	return p.text
}

// Has returns true if the field appears in the pattern.
func (p *Pattern) Has(field Field) bool {
	return len(p.pos[field]) != 0
}

// Width returns the number of bits the field occupies.
func (p *Pattern) Width(field Field) int {
	return len(p.pos[field])
}

// Literal returns the literal bit mask and the literal bit values.
func (p *Pattern) Literal() (mask, value uint32) {
	return p.mask, p.value
}

// Matches returns true if all literal bits of the pattern match the word.
func (p *Pattern) Matches(word uint32) bool {
	return word&p.mask == p.value
}

// Encode builds an instruction word from the literal bits and the field
// values. Fields absent from the pattern are ignored; fields of the pattern
// absent from fields encode as zero.
func (p *Pattern) Encode(fields Fields) (word uint32, err error) {
	word = p.value

	for field, pos := range p.pos {
		if len(pos) == 0 {
			continue
		}
		value := fields.Value[field]
		width := len(pos)
		if width < 64 && value>>width != 0 {
			err = &ErrField{Field: Field(field), Value: int64(value), Err: ErrFieldRange}
			return
		}
		for n, bit := range pos {
			word |= uint32((value>>(width-1-n))&1) << bit
		}
	}

	return
}

// Decode extracts the field values from the word. The fields are gathered
// even when matched is false, and must then be ignored.
func (p *Pattern) Decode(word uint32) (fields Fields, matched bool) {
	matched = p.Matches(word)

	for field, pos := range p.pos {
		if len(pos) == 0 {
			continue
		}
		var value uint64
		for _, bit := range pos {
			value = (value << 1) | uint64((word>>bit)&1)
		}
		fields.Set(Field(field), value)
	}

	return
}
