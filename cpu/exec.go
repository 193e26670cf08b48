package cpu

import (
	"math/bits"

	"github.com/ezrec/a64sim/isa"
)

// handler executes a decoded instruction. It returns true if it set the
// program counter.
type handler func(cpu *Cpu, in *Instruction) (jumped bool, err error)

// handlers, by operation.
var handlers = [isa.OP_COUNT]handler{
	isa.OP_ADD:  execArith(false, false),
	isa.OP_ADDS: execArith(false, true),
	isa.OP_SUB:  execArith(true, false),
	isa.OP_SUBS: execArith(true, true),

	isa.OP_AND:  execLogic(func(a, b uint64) uint64 { return a & b }, false),
	isa.OP_ANDS: execLogic(func(a, b uint64) uint64 { return a & b }, true),
	isa.OP_ORR:  execLogic(func(a, b uint64) uint64 { return a | b }, false),
	isa.OP_EOR:  execLogic(func(a, b uint64) uint64 { return a ^ b }, false),
	isa.OP_BIC:  execLogic(func(a, b uint64) uint64 { return a &^ b }, false),
	isa.OP_ORN:  execLogic(func(a, b uint64) uint64 { return a | ^b }, false),

	isa.OP_MOVZ: execMovz,
	isa.OP_MOVN: execMovn,
	isa.OP_MOVK: execMovk,

	isa.OP_MADD: execMadd,
	isa.OP_MSUB: execMsub,
	isa.OP_UDIV: execUdiv,
	isa.OP_SDIV: execSdiv,

	isa.OP_LSLV: execShiftVar(0),
	isa.OP_LSRV: execShiftVar(1),
	isa.OP_ASRV: execShiftVar(2),
	isa.OP_RORV: execShiftVar(3),

	isa.OP_LSR_IMM: execShiftImm(1),
	isa.OP_ASR_IMM: execShiftImm(2),

	isa.OP_CSEL:  execCondSelect(func(m uint64) uint64 { return m }),
	isa.OP_CSINC: execCondSelect(func(m uint64) uint64 { return m + 1 }),
	isa.OP_CSINV: execCondSelect(func(m uint64) uint64 { return ^m }),
	isa.OP_CSNEG: execCondSelect(func(m uint64) uint64 { return -m }),

	isa.OP_B:      execB,
	isa.OP_BL:     execBl,
	isa.OP_B_COND: execBCond,
	isa.OP_CBZ:    execCompareBranch(true),
	isa.OP_CBNZ:   execCompareBranch(false),
	isa.OP_TBZ:    execTestBranch(true),
	isa.OP_TBNZ:   execTestBranch(false),
	isa.OP_BR:     execBr,
	isa.OP_BLR:    execBlr,
	isa.OP_RET:    execBr,

	isa.OP_NOP: execNop,
	isa.OP_HLT: execNop,
	isa.OP_BRK: execNop,

	isa.OP_LDR:  execLoad(8),
	isa.OP_STR:  execStore(8),
	isa.OP_LDRB: execLoad(1),
	isa.OP_STRB: execStore(1),
	isa.OP_LDRH: execLoad(2),
	isa.OP_STRH: execStore(2),
	isa.OP_LDP:  execLoadPair,
	isa.OP_STP:  execStorePair,
}

// shift applies a shift kind.
func shift(value uint64, kind uint8, amount uint64) uint64 {
	amount &= 63
	switch kind & 3 {
	case 0:
		return value << amount
	case 1:
		return value >> amount
	case 2:
		return uint64(int64(value) >> amount)
	default:
		return bits.RotateLeft64(value, -int(amount))
	}
}

// extend applies an extend option, then a left shift.
func extend(value uint64, option uint8, amount uint64) uint64 {
	switch option & 7 {
	case 0:
		value = uint64(uint8(value))
	case 1:
		value = uint64(uint16(value))
	case 2:
		value = uint64(uint32(value))
	case 4:
		value = uint64(int64(int8(value)))
	case 5:
		value = uint64(int64(int16(value)))
	case 6:
		value = uint64(int64(int32(value)))
	}
	return value << (amount & 63)
}

// addWithCarry returns x + y + carry, and its NZCV flags.
func addWithCarry(x, y uint64, carry uint64) (result uint64, flags Flags) {
	result, c := bits.Add64(x, y, carry)

	if result>>63 != 0 {
		flags |= FLAG_N
	}
	if result == 0 {
		flags |= FLAG_Z
	}
	if c != 0 {
		flags |= FLAG_C
	}
	if ((x^result)&(y^result))>>63 != 0 {
		flags |= FLAG_V
	}

	return
}

// logicFlags returns the NZCV flags of a logical result.
func logicFlags(result uint64) (flags Flags) {
	if result>>63 != 0 {
		flags |= FLAG_N
	}
	if result == 0 {
		flags |= FLAG_Z
	}
	return
}

// operand2 evaluates the second operand of a data processing instruction.
func (cpu *Cpu) operand2(in *Instruction) uint64 {
	switch in.Operand {
	case OPERAND_IMM:
		return in.Imm << (12 * uint64(in.Kind&1))
	case OPERAND_EXTENDED:
		return extend(cpu.get(in.Rm), in.Extend, in.Amount)
	default:
		return shift(cpu.get(in.Rm), in.Kind, in.Amount)
	}
}

func execArith(subtract bool, setFlags bool) handler {
	return func(cpu *Cpu, in *Instruction) (jumped bool, err error) {
		x := cpu.get(in.Rn)
		y := cpu.operand2(in)
		carry := uint64(0)
		if subtract {
			y = ^y
			carry = 1
		}
		result, flags := addWithCarry(x, y, carry)
		cpu.set(in.Rd, result)
		if setFlags {
			cpu.Flags = flags
		}
		return
	}
}

func execLogic(op func(a, b uint64) uint64, setFlags bool) handler {
	return func(cpu *Cpu, in *Instruction) (jumped bool, err error) {
		result := op(cpu.get(in.Rn), cpu.operand2(in))
		cpu.set(in.Rd, result)
		if setFlags {
			cpu.Flags = logicFlags(result)
		}
		return
	}
}

func execMovz(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	cpu.set(in.Rd, in.Imm<<(16*uint64(in.Kind&3)))
	return
}

func execMovn(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	cpu.set(in.Rd, ^(in.Imm << (16 * uint64(in.Kind&3))))
	return
}

func execMovk(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	pos := 16 * uint64(in.Kind&3)
	value := cpu.get(in.Rd) &^ (0xffff << pos)
	cpu.set(in.Rd, value|(in.Imm<<pos))
	return
}

func execMadd(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	product := cpu.get(in.Rn) * cpu.get(in.Rm)
	cpu.set(in.Rd, cpu.get(in.Ra)+product)
	return
}

func execMsub(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	product := cpu.get(in.Rn) * cpu.get(in.Rm)
	cpu.set(in.Rd, cpu.get(in.Ra)-product)
	return
}

// execUdiv divides; division by zero yields zero.
func execUdiv(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	n, m := cpu.get(in.Rn), cpu.get(in.Rm)
	var q uint64
	if m != 0 {
		q = n / m
	}
	cpu.set(in.Rd, q)
	return
}

// execSdiv divides; division by zero yields zero.
func execSdiv(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	n, m := int64(cpu.get(in.Rn)), int64(cpu.get(in.Rm))
	var q int64
	if m != 0 {
		q = n / m
	}
	cpu.set(in.Rd, uint64(q))
	return
}

func execShiftVar(kind uint8) handler {
	return func(cpu *Cpu, in *Instruction) (jumped bool, err error) {
		cpu.set(in.Rd, shift(cpu.get(in.Rn), kind, cpu.get(in.Rm)))
		return
	}
}

func execShiftImm(kind uint8) handler {
	return func(cpu *Cpu, in *Instruction) (jumped bool, err error) {
		cpu.set(in.Rd, shift(cpu.get(in.Rn), kind, in.Amount))
		return
	}
}

func execCondSelect(invert func(m uint64) uint64) handler {
	return func(cpu *Cpu, in *Instruction) (jumped bool, err error) {
		n, m := cpu.get(in.Rn), cpu.get(in.Rm)
		if cpu.Flags.Cond(in.Cond) {
			cpu.set(in.Rd, n)
		} else {
			cpu.set(in.Rd, invert(m))
		}
		return
	}
}

func execB(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	cpu.Pc = in.Imm
	return true, nil
}

func execBl(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	cpu.set(isa.REG_LR, in.Address+isa.WORD_BYTES)
	cpu.Pc = in.Imm
	return true, nil
}

func execBCond(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	if !cpu.Flags.Cond(in.Cond) {
		return
	}
	cpu.Pc = in.Imm
	return true, nil
}

func execCompareBranch(zero bool) handler {
	return func(cpu *Cpu, in *Instruction) (jumped bool, err error) {
		if (cpu.get(in.Rt) == 0) != zero {
			return
		}
		cpu.Pc = in.Imm
		return true, nil
	}
}

func execTestBranch(zero bool) handler {
	return func(cpu *Cpu, in *Instruction) (jumped bool, err error) {
		set := (cpu.get(in.Rt)>>(in.Bit&63))&1 != 0
		if set == zero {
			return
		}
		cpu.Pc = in.Imm
		return true, nil
	}
}

func execBr(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	cpu.Pc = cpu.get(in.Rn)
	return true, nil
}

func execBlr(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	target := cpu.get(in.Rn)
	cpu.set(isa.REG_LR, in.Address+isa.WORD_BYTES)
	cpu.Pc = target
	return true, nil
}

func execNop(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	return
}

// address computes the effective address of a memory operand, and the
// base register value to write back, if any.
func (cpu *Cpu) address(in *Instruction) (address uint64, writeback bool, base uint64) {
	base = cpu.get(in.Rn)

	switch in.Entry.Index {
	case isa.INDEX_PRE:
		address = base + in.Imm
		return address, true, address
	case isa.INDEX_POST:
		return base, true, base + in.Imm
	}

	if in.Fields.Has(isa.FIELD_RM) {
		return base + extend(cpu.get(in.Rm), in.Extend, in.Amount), false, base
	}

	return base + in.Imm, false, base
}

func execLoad(width int) handler {
	return func(cpu *Cpu, in *Instruction) (jumped bool, err error) {
		address, writeback, base := cpu.address(in)
		value, err := cpu.load(address, width)
		if err != nil {
			return
		}
		if writeback {
			cpu.set(in.Rn, base)
		}
		cpu.set(in.Rt, value)
		return
	}
}

func execStore(width int) handler {
	return func(cpu *Cpu, in *Instruction) (jumped bool, err error) {
		address, writeback, base := cpu.address(in)
		err = cpu.store(address, width, cpu.get(in.Rt))
		if err != nil {
			return
		}
		if writeback {
			cpu.set(in.Rn, base)
		}
		return
	}
}

func execLoadPair(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	address, writeback, base := cpu.address(in)
	first, err := cpu.load(address, 8)
	if err != nil {
		return
	}
	second, err := cpu.load(address+8, 8)
	if err != nil {
		return
	}
	if writeback {
		cpu.set(in.Rn, base)
	}
	cpu.set(in.Rt, first)
	cpu.set(in.Rt2, second)
	return
}

func execStorePair(cpu *Cpu, in *Instruction) (jumped bool, err error) {
	address, writeback, base := cpu.address(in)
	first, second := cpu.get(in.Rt), cpu.get(in.Rt2)
	// Neither doubleword is written unless both are in range.
	_, err = cpu.Memory.Bytes(address, 16)
	if err != nil {
		return
	}
	err = cpu.store(address, 8, first)
	if err != nil {
		return
	}
	err = cpu.store(address+8, 8, second)
	if err != nil {
		return
	}
	if writeback {
		cpu.set(in.Rn, base)
	}
	return
}
