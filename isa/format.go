package isa

import (
	"fmt"
	"strings"
)

// Format renders the assembly text of an instruction at address pc.
func (e *Entry) Format(fields Fields, pc uint64) string {
	var operands []string

	reg := func(letter byte) string {
		field := mustField(letter)
		return RegisterName(uint8(fields.Get(field)), e.AcceptsSP(field))
	}
	value := func(letter byte) uint64 {
		field := mustField(letter)
		return e.Value(field, fields.Get(field), pc)
	}
	imm := func(letter byte) string {
		field := mustField(letter)
		v := value(letter)
		switch {
		case field == FIELD_COND:
			return CondNames[v&0xf]
		case e.conv[field].PCRel:
			return fmt.Sprintf("%#x", v)
		case e.conv[field].Signed:
			return fmt.Sprintf("#%d", int64(v))
		default:
			return fmt.Sprintf("#%d", v)
		}
	}

	for n, kind := range e.Shape {
		group := e.Bind[n]
		var text string
		switch kind {
		case KIND_REG:
			text = reg(group[0])
		case KIND_IMM:
			text = imm(group[0])
			if shift := e.immShift(fields); shift != 0 && group[0] == 'i' {
				text += fmt.Sprintf(", lsl #%d", shift)
			}
		case KIND_SHIFTED:
			text = reg(group[0])
			if amount := value(group[2]); amount != 0 || value(group[1]) != 0 {
				text += fmt.Sprintf(", %v #%d", ShiftNames[value(group[1])&3], amount)
			}
		case KIND_EXTENDED:
			text = reg(group[0])
			if option := value(group[1]); option != EXTEND_LSL || value(group[2]) != 0 {
				text += fmt.Sprintf(", %v #%d", ExtendNames[option&7], value(group[2]))
			}
		case KIND_OFFSET, KIND_PRE:
			text = "[" + reg(group[0])
			if offset := value(group[1]); offset != 0 || kind == KIND_PRE {
				text += ", " + imm(group[1])
			}
			text += "]"
			if kind == KIND_PRE {
				text += "!"
			}
		case KIND_POST:
			text = fmt.Sprintf("[%v], %v", reg(group[0]), imm(group[1]))
		case KIND_REGOFFSET:
			text = "[" + reg(group[0]) + ", " + reg(group[1])
			option := value(group[2])
			switch amount := value(group[3]); {
			case option == EXTEND_LSL && amount != 0:
				text += fmt.Sprintf(", lsl #%d", amount)
			case option != EXTEND_LSL:
				text += fmt.Sprintf(", %v #%d", ExtendNames[option&7], amount)
			}
			text += "]"
		}
		operands = append(operands, text)
	}

	if len(operands) == 0 {
		return e.Mnemonic
	}

	return e.Mnemonic + " " + strings.Join(operands, ", ")
}

// immShift returns the left shift an unbound shift field applies to the
// immediate: 12 bits for add and sub, 16 bit steps for wide moves.
func (e *Entry) immShift(fields Fields) uint64 {
	for _, group := range e.Bind {
		if strings.IndexByte(group, 'h') >= 0 {
			return 0
		}
	}
	h := fields.Get(FIELD_KIND)
	switch e.Pattern.Width(FIELD_KIND) {
	case 1:
		return 12 * h
	case 2:
		return 16 * h
	}
	return 0
}
