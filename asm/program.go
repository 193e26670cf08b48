package asm

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/ezrec/a64sim/internal"
	"github.com/ezrec/a64sim/isa"
)

// Statement is an assembled source line.
type Statement struct {
	LineNo  int      // Line number in the source.
	Address uint64   // Address of the first word.
	Text    string   // Source text, without comments or labels.
	Codes   []uint32 // Encoded words.
}

// Program is an assembled source text.
type Program struct {
	Statements []Statement
	Labels     map[string]int64 // Addresses of labels.
	Equates    map[string]int64 // Values of .equ definitions.
	Image      []byte           // Little-endian memory image.
}

// Debug locates the statement that encoded an address.
type Debug struct {
	*Statement
	Index int // Word index within the statement.
}

// Debug returns the statement that encoded the address. The statement is
// nil when no statement did.
func (prog *Program) Debug(address uint64) (dbg Debug) {
	for n, st := range prog.Statements {
		end := st.Address + uint64(len(st.Codes)*isa.WORD_BYTES)
		if address >= st.Address && address < end {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(address-st.Address) / isa.WORD_BYTES,
			}
			break
		}
	}

	return
}

// Binary returns the memory image.
func (prog *Program) Binary() []byte {
	return prog.Image
}

// Codes iterates over the encoded words, by address.
func (prog *Program) Codes() iter.Seq2[uint64, uint32] {
	return func(yield func(address uint64, code uint32) bool) {
		for _, st := range prog.Statements {
			for n, code := range st.Codes {
				if !yield(st.Address+uint64(n*isa.WORD_BYTES), code) {
					return
				}
			}
		}
	}
}

// Symbols iterates over the labels, then the equates.
func (prog *Program) Symbols() iter.Seq2[string, int64] {
	return internal.IterSeq2Concat(maps.All(prog.Labels), maps.All(prog.Equates))
}

// line is a source line after the first pass.
type line struct {
	lineNo  int
	text    string
	tokens  []Token
	address uint64
}

// stripComment removes ';' and '//' comments.
func stripComment(text string) string {
	if n := strings.Index(text, ";"); n >= 0 {
		text = text[:n]
	}
	if n := strings.Index(text, "//"); n >= 0 {
		text = text[:n]
	}
	return text
}

// isName returns true if the token is a symbol name.
func isName(tok Token) bool {
	c := tok.Text[0]
	return c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isLabel returns true if the tokens start with a 'name:' label.
func isLabel(tokens []Token) bool {
	return len(tokens) >= 2 && tokens[1].is(":") && tokens[0].End == tokens[1].Start && isName(tokens[0])
}

// Parse assembles a source text into a Program.
//
// The first pass assigns addresses to labels, and evaluates .equ
// definitions in order; the second pass encodes the instructions and
// .word directives. Errors are collected for every failing line.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	symbols := maps.Clone(asm.predefine)
	if symbols == nil {
		symbols = Symbols{}
	}

	prog = &Program{
		Labels:  map[string]int64{},
		Equates: map[string]int64{},
	}
	asm.Image = Image{}
	asm.Eval = symbols

	var errs []error
	fail := func(ln *line, e error) {
		errs = append(errs, &ErrLine{LineNo: ln.lineNo, Line: ln.text, Err: e})
	}

	var lines []*line
	var address uint64
	var lineNo int

	for scanner.Scan() {
		lineNo++
		text := scanner.Text()

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineNo, text)
		}

		ln := &line{lineNo: lineNo, text: strings.TrimSpace(text)}
		tokens := Tokenize(stripComment(text))

		for isLabel(tokens) {
			label := tokens[0].Text
			_, dup := symbols[label]
			if dup {
				fail(ln, newSyntaxError(ErrLabelDuplicate, tokens[0].Start, tokens[1].End))
			} else {
				symbols[label] = int64(address)
				prog.Labels[label] = int64(address)
			}
			tokens = tokens[2:]
		}

		if len(tokens) == 0 {
			continue
		}

		switch strings.ToLower(tokens[0].Text) {
		case ".equ":
			// .equ NAME{,} expr
			args := tokens[1:]
			if len(args) > 1 && args[1].is(",") {
				args = slices.Delete(slices.Clone(args), 1, 2)
			}
			start, end := span(tokens)
			if len(args) < 2 || !isName(args[0]) {
				fail(ln, newSyntaxError(ErrEquateSyntax, start, end))
				continue
			}
			name := args[0].Text
			if _, dup := symbols[name]; dup {
				fail(ln, newSyntaxError(ErrEquateDuplicate, args[0].Start, args[0].End))
				continue
			}
			expr, e := parseExpr(args[1:])
			if e == nil {
				var value int64
				value, e = asm.eval(expr)
				if e == nil {
					symbols[name] = value
					prog.Equates[name] = value
					continue
				}
			}
			fail(ln, e)
			continue
		case ".word":
			ln.tokens = tokens
		default:
			if strings.HasPrefix(tokens[0].Text, ".") {
				fail(ln, newSyntaxError(ErrDirective, tokens[0].Start, tokens[0].End))
				continue
			}
			ln.tokens = tokens
		}

		ln.address = address
		lines = append(lines, ln)
		address += uint64(asm.size(tokens))
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	for _, ln := range lines {
		codes, e := asm.encodeLine(ln)
		if e != nil {
			fail(ln, e)
			continue
		}
		for n, code := range codes {
			asm.Image.Put(ln.address+uint64(n*isa.WORD_BYTES), code)
		}
		prog.Statements = append(prog.Statements, Statement{
			LineNo:  ln.lineNo,
			Address: ln.address,
			Text:    join(ln.tokens),
			Codes:   codes,
		})
	}

	err = errors.Join(errs...)
	if err != nil {
		prog = nil
		return
	}

	prog.Image = asm.Image.Data

	return
}

// size returns the number of bytes a statement encodes.
func (asm *Assembler) size(tokens []Token) int {
	if strings.ToLower(tokens[0].Text) == ".word" {
		return len(split(tokens[1:])) * isa.WORD_BYTES
	}
	return isa.WORD_BYTES
}

// encodeLine encodes an instruction or .word statement.
func (asm *Assembler) encodeLine(ln *line) (codes []uint32, err error) {
	mnemonic := ln.tokens[0]
	if strings.ToLower(mnemonic.Text) != ".word" {
		return asm.Encode(mnemonic, ln.tokens[1:], ln.address)
	}

	groups := split(ln.tokens[1:])
	if len(groups) == 0 {
		err = newSyntaxError(ErrImmediateMissing, mnemonic.Start, mnemonic.End)
		return
	}
	for _, group := range groups {
		if len(group) == 0 {
			err = newSyntaxError(ErrImmediateMissing, mnemonic.Start, mnemonic.End)
			return
		}
		var expr *Expr
		expr, err = parseExpr(group)
		if err != nil {
			return
		}
		var value int64
		value, err = asm.eval(expr)
		if err != nil {
			return
		}
		if value < -(1<<31) || value > (1<<32)-1 {
			err = newSyntaxError(&isa.ErrField{Field: isa.FIELD_IMM, Value: value, Err: isa.ErrFieldRange}, expr.Start, expr.End)
			return
		}
		codes = append(codes, uint32(value))
	}

	return
}
