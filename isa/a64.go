package isa

import (
	"sync"
)

// A64 returns the shared opcode table for the modelled A64 integer subset.
// The table is immutable, and safe to share between processors.
var A64 = sync.OnceValue(func() *Table {
	return MustTable(a64Entries()...)
})

// Shift kinds permitted by arithmetic shifted register forms.
var arithShifts = Shifts("lsl", "lsr", "asr")

// Extend options permitted by register offset addressing.
var offsetExtends = Extends("uxtw", "uxtx", "sxtw", "sxtx")

func a64Entries() (entries []*Entry) {
	add := func(e ...*Entry) {
		entries = append(entries, e...)
	}

	// Moves. The register move is orr with xzr, and the stack pointer move
	// is add #0; both precede the forms they restrict.
	add(
		Form("mov", OP_ORR, "rr", "d,m", "10101010_000mmmmm_000000_11111_ddddd",
			Preset('n', REG_31), Preset('h', 0), Preset('s', 0)),
		Form("mov", OP_ADD, "rr", "d,n", "10010001_00000000_000000_nnnnn_ddddd",
			SP("dn"), Preset('h', 0), Preset('i', 0)),
		Form("mov", OP_MOVZ, "ri", "d,i", "11010010_100iiiii_iiiiiiiiiii_ddddd",
			Preset('h', 0)),
		Form("movz", OP_MOVZ, "ri", "d,i", "110100101_hh_iiiiiiiiiiiiiiii_ddddd"),
		Form("movn", OP_MOVN, "ri", "d,i", "100100101_hh_iiiiiiiiiiiiiiii_ddddd"),
		Form("movk", OP_MOVK, "ri", "d,i", "111100101_hh_iiiiiiiiiiiiiiii_ddddd"),
	)

	// Compare and test aliases write xzr.
	add(
		Form("cmp", OP_SUBS, "rs", "n,mhs", "11101011_hh0mmmmm_ssssss_nnnnn_11111",
			arithShifts, Preset('d', REG_31)),
		Form("cmp", OP_SUBS, "re", "n,mxs", "11101011_001mmmmm_xxxsss_nnnnn_11111",
			SP("n"), Preset('d', REG_31)),
		Form("cmp", OP_SUBS, "ri", "n,i", "11110001_0hiiiiii_iiiiii_nnnnn_11111",
			SP("n"), Preset('d', REG_31)),
		Form("cmn", OP_ADDS, "rs", "n,mhs", "10101011_hh0mmmmm_ssssss_nnnnn_11111",
			arithShifts, Preset('d', REG_31)),
		Form("cmn", OP_ADDS, "re", "n,mxs", "10101011_001mmmmm_xxxsss_nnnnn_11111",
			SP("n"), Preset('d', REG_31)),
		Form("cmn", OP_ADDS, "ri", "n,i", "10110001_0hiiiiii_iiiiii_nnnnn_11111",
			SP("n"), Preset('d', REG_31)),
		Form("tst", OP_ANDS, "rs", "n,mhs", "11101010_hh0mmmmm_ssssss_nnnnn_11111",
			Preset('d', REG_31)),
		Form("neg", OP_SUB, "rs", "d,mhs", "11001011_hh0mmmmm_ssssss_11111_ddddd",
			arithShifts, Preset('n', REG_31)),
		Form("mvn", OP_ORN, "rs", "d,mhs", "10101010_hh1mmmmm_ssssss_11111_ddddd",
			Preset('n', REG_31)),
	)

	// Add and subtract: shifted register, extended register, immediate.
	for _, arith := range []struct {
		mnemonic string
		op       Op
		opS      string
		sp       string
	}{
		{"add", OP_ADD, "100", "dn"},
		{"adds", OP_ADDS, "101", "n"},
		{"sub", OP_SUB, "110", "dn"},
		{"subs", OP_SUBS, "111", "n"},
	} {
		add(
			Form(arith.mnemonic, arith.op, "rrs", "d,n,mhs", arith.opS+"01011_hh0mmmmm_ssssss_nnnnn_ddddd",
				arithShifts),
			Form(arith.mnemonic, arith.op, "rre", "d,n,mxs", arith.opS+"01011_001mmmmm_xxxsss_nnnnn_ddddd",
				SP(arith.sp)),
			Form(arith.mnemonic, arith.op, "rri", "d,n,i", arith.opS+"10001_0hiiiiii_iiiiii_nnnnn_ddddd",
				SP(arith.sp)),
		)
	}

	// Logical shifted register.
	add(
		Form("and", OP_AND, "rrs", "d,n,mhs", "10001010_hh0mmmmm_ssssss_nnnnn_ddddd"),
		Form("bic", OP_BIC, "rrs", "d,n,mhs", "10001010_hh1mmmmm_ssssss_nnnnn_ddddd"),
		Form("orr", OP_ORR, "rrs", "d,n,mhs", "10101010_hh0mmmmm_ssssss_nnnnn_ddddd"),
		Form("orn", OP_ORN, "rrs", "d,n,mhs", "10101010_hh1mmmmm_ssssss_nnnnn_ddddd"),
		Form("eor", OP_EOR, "rrs", "d,n,mhs", "11001010_hh0mmmmm_ssssss_nnnnn_ddddd"),
		Form("ands", OP_ANDS, "rrs", "d,n,mhs", "11101010_hh0mmmmm_ssssss_nnnnn_ddddd"),
	)

	// Multiply and divide.
	add(
		Form("mul", OP_MADD, "rrr", "d,n,m", "10011011_000mmmmm_011111_nnnnn_ddddd",
			Preset('a', REG_31)),
		Form("mneg", OP_MSUB, "rrr", "d,n,m", "10011011_000mmmmm_111111_nnnnn_ddddd",
			Preset('a', REG_31)),
		Form("madd", OP_MADD, "rrrr", "d,n,m,a", "10011011_000mmmmm_0aaaaa_nnnnn_ddddd"),
		Form("msub", OP_MSUB, "rrrr", "d,n,m,a", "10011011_000mmmmm_1aaaaa_nnnnn_ddddd"),
		Form("udiv", OP_UDIV, "rrr", "d,n,m", "10011010_110mmmmm_000010_nnnnn_ddddd"),
		Form("sdiv", OP_SDIV, "rrr", "d,n,m", "10011010_110mmmmm_000011_nnnnn_ddddd"),
	)

	// Variable shifts, with their preferred register aliases first, and the
	// immediate shifts that are a plain field of the bitfield move encoding.
	add(
		Form("lsl", OP_LSLV, "rrr", "d,n,m", "10011010_110mmmmm_001000_nnnnn_ddddd"),
		Form("lsr", OP_LSRV, "rrr", "d,n,m", "10011010_110mmmmm_001001_nnnnn_ddddd"),
		Form("asr", OP_ASRV, "rrr", "d,n,m", "10011010_110mmmmm_001010_nnnnn_ddddd"),
		Form("ror", OP_RORV, "rrr", "d,n,m", "10011010_110mmmmm_001011_nnnnn_ddddd"),
		Form("lslv", OP_LSLV, "rrr", "d,n,m", "10011010_110mmmmm_001000_nnnnn_ddddd"),
		Form("lsrv", OP_LSRV, "rrr", "d,n,m", "10011010_110mmmmm_001001_nnnnn_ddddd"),
		Form("asrv", OP_ASRV, "rrr", "d,n,m", "10011010_110mmmmm_001010_nnnnn_ddddd"),
		Form("rorv", OP_RORV, "rrr", "d,n,m", "10011010_110mmmmm_001011_nnnnn_ddddd"),
		Form("lsr", OP_LSR_IMM, "rri", "d,n,s", "11010011_01ssssss_111111_nnnnn_ddddd"),
		Form("asr", OP_ASR_IMM, "rri", "d,n,s", "10010011_01ssssss_111111_nnnnn_ddddd"),
	)

	// Conditional select.
	add(
		Form("csel", OP_CSEL, "rrri", "d,n,m,c", "10011010_100mmmmm_cccc00_nnnnn_ddddd"),
		Form("csinc", OP_CSINC, "rrri", "d,n,m,c", "10011010_100mmmmm_cccc01_nnnnn_ddddd"),
		Form("csinv", OP_CSINV, "rrri", "d,n,m,c", "11011010_100mmmmm_cccc00_nnnnn_ddddd"),
		Form("csneg", OP_CSNEG, "rrri", "d,n,m,c", "11011010_100mmmmm_cccc01_nnnnn_ddddd"),
	)

	// Branches. Targets are absolute addresses.
	add(
		Form("b", OP_B, "i", "i", "000101_iiiiiiiiiiiiiiiiiiiiiiiiii", PCRel('i')),
		Form("bl", OP_BL, "i", "i", "100101_iiiiiiiiiiiiiiiiiiiiiiiiii", PCRel('i')),
	)
	for code, name := range CondNames {
		cond := ""
		for bit := 3; bit >= 0; bit-- {
			cond += string(byte('0' + (code>>bit)&1))
		}
		add(Form("b."+name, OP_B_COND, "i", "i", "01010100_iiiiiiiiiiiiiiiiiii_0_"+cond,
			PCRel('i'), Preset('c', uint64(code))))
	}
	add(
		Form("b.hs", OP_B_COND, "i", "i", "01010100_iiiiiiiiiiiiiiiiiii_0_0010",
			PCRel('i'), Preset('c', 2)),
		Form("b.lo", OP_B_COND, "i", "i", "01010100_iiiiiiiiiiiiiiiiiii_0_0011",
			PCRel('i'), Preset('c', 3)),
		Form("cbz", OP_CBZ, "ri", "t,i", "10110100_iiiiiiiiiiiiiiiiiii_ttttt", PCRel('i')),
		Form("cbnz", OP_CBNZ, "ri", "t,i", "10110101_iiiiiiiiiiiiiiiiiii_ttttt", PCRel('i')),
		Form("tbz", OP_TBZ, "rii", "t,b,i", "b0110110_bbbbbiii_iiiiiiiiiii_ttttt", PCRel('i')),
		Form("tbnz", OP_TBNZ, "rii", "t,b,i", "b0110111_bbbbbiii_iiiiiiiiiii_ttttt", PCRel('i')),
		Form("br", OP_BR, "r", "n", "11010110_00011111_000000_nnnnn_00000"),
		Form("blr", OP_BLR, "r", "n", "11010110_00111111_000000_nnnnn_00000"),
		Form("ret", OP_RET, "", "", "11010110_01011111_000000_11110_00000",
			Preset('n', REG_LR)),
		Form("ret", OP_RET, "r", "n", "11010110_01011111_000000_nnnnn_00000"),
	)

	// System.
	add(
		Form("nop", OP_NOP, "", "", "11010101_00000011_00100000_00011111"),
		Form("hlt", OP_HLT, "i", "i", "11010100_010iiiii_iiiiiiiiiii_00000"),
		Form("brk", OP_BRK, "i", "i", "11010100_001iiiii_iiiiiiiiiii_00000"),
	)

	// Loads and stores: unsigned scaled offset, unscaled offset, pre-index,
	// post-index, and register offset for the doubleword forms.
	for _, ls := range []struct {
		mnemonic string
		op       Op
		size     string
		opc      string
		scale    uint
	}{
		{"ldr", OP_LDR, "11", "01", 3},
		{"str", OP_STR, "11", "00", 3},
		{"ldrb", OP_LDRB, "00", "01", 0},
		{"strb", OP_STRB, "00", "00", 0},
		{"ldrh", OP_LDRH, "01", "01", 1},
		{"strh", OP_STRH, "01", "00", 1},
	} {
		prefix := ls.size + "111_0"
		add(
			Form(ls.mnemonic, ls.op, "ra", "t,ni", prefix+"01_"+ls.opc+"_iiiiiiiiiiii_nnnnn_ttttt",
				SP("n"), Scaled('i', ls.scale)),
			Form(ls.mnemonic, ls.op, "rp", "t,ni", prefix+"00_"+ls.opc+"_0_iiiiiiiii_11_nnnnn_ttttt",
				SP("n"), Signed("i")),
			Form(ls.mnemonic, ls.op, "rq", "t,ni", prefix+"00_"+ls.opc+"_0_iiiiiiiii_01_nnnnn_ttttt",
				SP("n"), Signed("i")),
		)
	}
	add(
		Form("ldur", OP_LDR, "ra", "t,ni", "11111000_010iiiii_iiii00_nnnnn_ttttt",
			SP("n"), Signed("i")),
		Form("stur", OP_STR, "ra", "t,ni", "11111000_000iiiii_iiii00_nnnnn_ttttt",
			SP("n"), Signed("i")),
		Form("ldr", OP_LDR, "rx", "t,nmxs", "11111000_011mmmmm_xxxs10_nnnnn_ttttt",
			SP("n"), Flag('s', 3), offsetExtends),
		Form("str", OP_STR, "rx", "t,nmxs", "11111000_001mmmmm_xxxs10_nnnnn_ttttt",
			SP("n"), Flag('s', 3), offsetExtends),
	)

	// Load and store pair.
	for _, pair := range []struct {
		mnemonic string
		op       Op
		l        string
	}{
		{"stp", OP_STP, "0"},
		{"ldp", OP_LDP, "1"},
	} {
		add(
			Form(pair.mnemonic, pair.op, "rra", "t,u,ni", "10101001_0"+pair.l+"iiiiiii_uuuuu_nnnnn_ttttt",
				SP("n"), Signed("i"), Scaled('i', 3)),
			Form(pair.mnemonic, pair.op, "rrp", "t,u,ni", "10101001_1"+pair.l+"iiiiiii_uuuuu_nnnnn_ttttt",
				SP("n"), Signed("i"), Scaled('i', 3)),
			Form(pair.mnemonic, pair.op, "rrq", "t,u,ni", "10101000_1"+pair.l+"iiiiiii_uuuuu_nnnnn_ttttt",
				SP("n"), Signed("i"), Scaled('i', 3)),
		)
	}

	return
}
