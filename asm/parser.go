package asm

import (
	"github.com/ezrec/a64sim/isa"
)

func isShift(text string) bool {
	if _, ok := isa.ShiftKind(text); ok {
		return true
	}
	_, ok := isa.ExtendKind(text)
	return ok
}

func isRegister(text string) bool {
	_, _, ok := isa.Register(text)
	return ok
}

// ParseOperands parses the operand tokens of an instruction.
//
// Operands are separated by commas outside of brackets. A shift or extend
// keyword modifies the register operand before it, and an immediate that
// directly follows an address operand is its post-index.
func ParseOperands(tokens []Token) (operands []Operand, err error) {
	return parseGroups(split(tokens), true)
}

func parseGroups(groups [][]Token, outer bool) (operands []Operand, err error) {
	for n, group := range groups {
		if len(group) == 0 {
			start, end := 0, 0
			if n > 0 && len(groups[n-1]) > 0 {
				_, end = span(groups[n-1])
				start = end
			}
			err = newSyntaxError(ErrOperandMissing, start, end)
			return
		}

		first := group[0]
		start, end := span(group)

		switch {
		case first.is("["):
			var addr *Address
			addr, err = parseAddress(group)
			if err != nil {
				return
			}
			if !outer {
				err = newSyntaxError(ErrAddressFormat, start, end)
				return
			}
			operands = append(operands, addr)
		case isShift(first.Text):
			var prev *Register
			if len(operands) > 0 {
				prev, _ = operands[len(operands)-1].(*Register)
			}
			if prev == nil {
				err = newSyntaxError(ErrShiftRegister, start, end)
				return
			}
			shifted := &ShiftedRegister{Register: prev, Kind: first.Text, End: end}
			if len(group) > 1 {
				shifted.Amount, err = parseExpr(group[1:])
				if err != nil {
					return
				}
			}
			operands[len(operands)-1] = shifted
		case isRegister(first.Text):
			if len(group) > 1 {
				err = newSyntaxError(ErrRegisterExpected, start, end)
				return
			}
			operands = append(operands, &Register{Name: first.Text, Start: first.Start, End: first.End})
		default:
			var expr *Expr
			expr, err = parseExpr(group)
			if err != nil {
				return
			}
			imm := &Immediate{Expr: *expr}
			if outer && len(operands) > 0 {
				if addr, ok := operands[len(operands)-1].(*Address); ok && addr.PostIndex == nil {
					addr.PostIndex = imm
					continue
				}
			}
			operands = append(operands, imm)
		}
	}

	return
}

// parseAddress parses a bracketed memory operand.
func parseAddress(group []Token) (addr *Address, err error) {
	start, end := span(group)

	inner := group[1:]
	pre := false
	if len(inner) > 0 && inner[len(inner)-1].is("!") {
		pre = true
		inner = inner[:len(inner)-1]
	}
	if len(inner) == 0 || !inner[len(inner)-1].is("]") {
		err = newSyntaxError(ErrAddressFormat, start, end)
		return
	}
	inner = inner[:len(inner)-1]
	if len(inner) == 0 {
		err = newSyntaxError(ErrAddressFormat, start, end)
		return
	}

	parts, err := parseGroups(split(inner), false)
	if err != nil {
		return
	}

	addr = &Address{
		Parts:    parts,
		PreIndex: pre,
		Start:    start,
		End:      end,
	}

	return
}

// parseExpr collects the tokens of an expression, after an optional '#'.
func parseExpr(tokens []Token) (expr *Expr, err error) {
	start, end := span(tokens)
	if tokens[0].is("#") {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		err = newSyntaxError(ErrImmediateMissing, start, end)
		return
	}
	for _, tok := range tokens {
		switch tok.Text {
		case "[", "]", "!", "#":
			err = newSyntaxError(ErrExpression, tok.Start, tok.End)
			return
		}
	}

	expr = &Expr{Text: join(tokens), Start: start, End: end}
	return
}
