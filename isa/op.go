package isa

// Op is the operation an entry performs, and selects its execution handler.
type Op int

const (
	OP_ADD = Op(iota)
	OP_ADDS
	OP_SUB
	OP_SUBS
	OP_AND
	OP_ANDS
	OP_ORR
	OP_EOR
	OP_BIC
	OP_ORN
	OP_MOVZ
	OP_MOVN
	OP_MOVK
	OP_MADD
	OP_MSUB
	OP_UDIV
	OP_SDIV
	OP_LSLV
	OP_LSRV
	OP_ASRV
	OP_RORV
	OP_LSR_IMM
	OP_ASR_IMM
	OP_CSEL
	OP_CSINC
	OP_CSINV
	OP_CSNEG
	OP_B
	OP_BL
	OP_B_COND
	OP_CBZ
	OP_CBNZ
	OP_TBZ
	OP_TBNZ
	OP_BR
	OP_BLR
	OP_RET
	OP_NOP
	OP_HLT
	OP_BRK
	OP_LDR
	OP_STR
	OP_LDRB
	OP_STRB
	OP_LDRH
	OP_STRH
	OP_LDP
	OP_STP

	OP_COUNT = int(iota)
)

var opNames = [OP_COUNT]string{
	"add", "adds", "sub", "subs", "and", "ands", "orr", "eor", "bic", "orn",
	"movz", "movn", "movk", "madd", "msub", "udiv", "sdiv",
	"lslv", "lsrv", "asrv", "rorv", "lsr_imm", "asr_imm",
	"csel", "csinc", "csinv", "csneg",
	"b", "bl", "b_cond", "cbz", "cbnz", "tbz", "tbnz", "br", "blr", "ret",
	"nop", "hlt", "brk",
	"ldr", "str", "ldrb", "strb", "ldrh", "strh", "ldp", "stp",
}

func (op Op) String() string {
	if op < 0 || int(op) >= OP_COUNT {
		return "op?"
	}
	return opNames[op]
}

// Branch returns true if the operation may set the program counter.
func (op Op) Branch() bool {
	switch op {
	case OP_B, OP_BL, OP_B_COND, OP_CBZ, OP_CBNZ, OP_TBZ, OP_TBNZ, OP_BR, OP_BLR, OP_RET:
		return true
	}
	return false
}

// IndexMode is the addressing mode of a memory operand.
type IndexMode int

const (
	INDEX_NONE   = IndexMode(0) // No memory operand.
	INDEX_OFFSET = IndexMode(1) // [base, offset]
	INDEX_PRE    = IndexMode(2) // [base, offset]!
	INDEX_POST   = IndexMode(3) // [base], offset
)
