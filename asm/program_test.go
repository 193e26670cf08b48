package asm

import (
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/a64sim/isa"
)

const countdown = `
; Count down from COUNT.
.equ COUNT, 3
.equ STEP 1

start:
	mov x0, #COUNT      // counter
loop:	sub x0, x0, #STEP
	cbnz x0, loop
	b done
table: .word 0x12345678, -1, COUNT * 2
done:
	ret
`

func TestProgramParse(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(countdown))
	if !assert.NoError(err) {
		return
	}

	assert.Equal(map[string]int64{"start": 0, "loop": 4, "table": 16, "done": 28}, prog.Labels)
	assert.Equal(map[string]int64{"COUNT": 3, "STEP": 1}, prog.Equates)

	assert.Equal(6, len(prog.Statements))
	assert.Equal(Statement{LineNo: 7, Address: 0, Text: "mov x0 , # COUNT", Codes: []uint32{0xd2800060}}, prog.Statements[0])
	assert.Equal(uint64(4), prog.Statements[1].Address)
	assert.Equal([]uint32{0xd1000400}, prog.Statements[1].Codes)
	assert.Equal([]uint32{0xb5ffffe0}, prog.Statements[2].Codes)
	assert.Equal([]uint32{0x14000004}, prog.Statements[3].Codes)
	assert.Equal([]uint32{0x12345678, 0xffffffff, 6}, prog.Statements[4].Codes)
	assert.Equal([]uint32{0xd65f03c0}, prog.Statements[5].Codes)

	assert.Equal(32, len(prog.Binary()))
	assert.Equal([]byte{0x78, 0x56, 0x34, 0x12}, prog.Binary()[16:20])

	codes := map[uint64]uint32{}
	for address, code := range prog.Codes() {
		codes[address] = code
	}
	assert.Equal(8, len(codes))
	assert.Equal(uint32(0xffffffff), codes[20])
	assert.Equal(uint32(0xd65f03c0), codes[28])

	symbols := maps.Collect(prog.Symbols())
	assert.Equal(int64(28), symbols["done"])
	assert.Equal(int64(3), symbols["COUNT"])
	assert.Equal(6, len(symbols))
}

func TestProgramDebug(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(countdown))
	if !assert.NoError(err) {
		return
	}

	dbg := prog.Debug(4)
	if assert.NotNil(dbg.Statement) {
		assert.Equal(8, dbg.LineNo)
		assert.Equal(0, dbg.Index)
	}

	dbg = prog.Debug(24)
	if assert.NotNil(dbg.Statement) {
		assert.Equal(11, dbg.LineNo)
		assert.Equal(2, dbg.Index)
	}

	dbg = prog.Debug(32)
	assert.Nil(dbg.Statement)
}

func TestProgramPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("LIMIT", 42)

	prog, err := asm.Parse(strings.NewReader("mov x1, #LIMIT + 1\n"))
	if assert.NoError(err) {
		assert.Equal([]uint32{0xd2800561}, prog.Statements[0].Codes)
	}

	// Predefined symbols survive between programs.
	prog, err = asm.Parse(strings.NewReader("mov x2, #LIMIT\n"))
	if assert.NoError(err) {
		assert.Equal([]uint32{0xd2800542}, prog.Statements[0].Codes)
	}

	_, err = asm.Parse(strings.NewReader(".equ LIMIT 1\n"))
	assert.True(errors.Is(err, ErrEquateDuplicate))
}

func TestProgramComments(t *testing.T) {
	assert := assert.New(t)

	source := strings.Join([]string{
		".equ HALF, 10 // 2",
		"mov x0, #HALF ; #5",
		"// nop",
	}, "\n")

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	if !assert.NoError(err) {
		return
	}
	assert.Equal(map[string]int64{"HALF": 10}, prog.Equates)
	if assert.Len(prog.Statements, 1) {
		assert.Equal([]uint32{0xd2800140}, prog.Statements[0].Codes)
	}
}

func TestProgramErrors(t *testing.T) {
	assert := assert.New(t)

	source := strings.Join([]string{
		"nop",
		"here: nop",
		"here: nop",
		"fmadd d0, d1",
		".equ",
		".bss 4",
		"add x0, x1, #5000",
		".word 0x100000000",
		"b nowhere",
		"ret",
	}, "\n")

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	assert.Nil(prog)
	assert.Error(err)

	table := [](struct {
		lineNo int
		err    error
	}){
		// Label and directive errors are found by the first pass.
		{3, ErrLabelDuplicate},
		{5, ErrEquateSyntax},
		{6, ErrDirective},
		{4, ErrMnemonicUnknown},
		{7, isa.ErrFieldRange},
		{8, isa.ErrFieldRange},
		{9, ErrExpression},
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !assert.True(ok) {
		return
	}
	errs := joined.Unwrap()
	assert.Equal(len(table), len(errs))

	for n, entry := range table {
		if n >= len(errs) {
			break
		}
		var lerr *ErrLine
		if assert.True(errors.As(errs[n], &lerr), "%v", errs[n]) {
			assert.Equal(entry.lineNo, lerr.LineNo, "%v", lerr)
			assert.True(errors.Is(lerr, entry.err), "%v", lerr)
		}
	}
}
