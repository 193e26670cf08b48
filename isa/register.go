package isa

import (
	"fmt"
	"strconv"
	"strings"
)

// Register numbers with architectural names.
const (
	REG_FP = 29 // Frame pointer.
	REG_LR = 30 // Link register.
	REG_31 = 31 // Either sp or xzr, depending on the encoding.
)

//go:generate go tool stringer -linecomment -type=RegClass

// RegClass distinguishes the two meanings of register number 31.
type RegClass int

const (
	CLASS_GENERAL = RegClass(0) // general
	CLASS_SP      = RegClass(1) // sp
	CLASS_ZR      = RegClass(2) // xzr
)

// Register parses a register name into its encoded number and class.
func Register(name string) (num uint8, class RegClass, ok bool) {
	name = strings.ToLower(name)
	switch name {
	case "sp":
		return REG_31, CLASS_SP, true
	case "xzr":
		return REG_31, CLASS_ZR, true
	case "lr":
		return REG_LR, CLASS_GENERAL, true
	case "fp":
		return REG_FP, CLASS_GENERAL, true
	}

	if len(name) < 2 || name[0] != 'x' {
		return
	}
	n, err := strconv.ParseUint(name[1:], 10, 8)
	if err != nil || n > 30 {
		return
	}

	return uint8(n), CLASS_GENERAL, true
}

// RegisterName returns the name of a register number, where sp selects
// the stack pointer meaning of register 31.
func RegisterName(num uint8, sp bool) string {
	switch {
	case num == REG_31 && sp:
		return "sp"
	case num == REG_31:
		return "xzr"
	default:
		return fmt.Sprintf("x%d", num)
	}
}

// ShiftNames are the register shift kinds, by encoding.
var ShiftNames = [4]string{"lsl", "lsr", "asr", "ror"}

// ExtendNames are the register extend options, by encoding.
var ExtendNames = [8]string{"uxtb", "uxth", "uxtw", "uxtx", "sxtb", "sxth", "sxtw", "sxtx"}

// CondNames are the condition codes, by encoding.
var CondNames = [16]string{
	"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt", "gt", "le", "al", "nv",
}

// EXTEND_LSL is the extend option that "lsl" selects in extended
// register operands.
const EXTEND_LSL = 3

func lookup(names []string, name string) (code uint8, ok bool) {
	name = strings.ToLower(name)
	for n, known := range names {
		if known == name {
			return uint8(n), true
		}
	}
	return
}

// ShiftKind returns the encoding of a shift keyword.
func ShiftKind(name string) (uint8, bool) {
	return lookup(ShiftNames[:], name)
}

// ExtendKind returns the encoding of an extend keyword.
func ExtendKind(name string) (uint8, bool) {
	return lookup(ExtendNames[:], name)
}

// Cond returns the encoding of a condition name, including the hs and lo
// aliases.
func Cond(name string) (uint8, bool) {
	switch strings.ToLower(name) {
	case "hs":
		return 2, true
	case "lo":
		return 3, true
	}
	return lookup(CondNames[:], name)
}
