package cpu

import (
	"io"

	"github.com/hexaflex/ls8/arch"
)

// handler executes one instruction with its two candidate operands.
// When jump is true, next becomes the new program counter.
type handler func(c *CPU, a, b byte) (next int, jump bool, err error)

// handlers is the dispatch table, indexed by opcode. A nil slot is an
// illegal instruction.
var handlers = [256]handler{
	arch.NOP:  nop,
	arch.HLT:  hlt,
	arch.IRET: nop,

	arch.LDI: ldi,
	arch.LD:  ld,
	arch.ST:  st,
	arch.PRN: prn,
	arch.PRA: pra,

	arch.ADD: binary(OpAdd),
	arch.SUB: binary(OpSub),
	arch.MUL: binary(OpMul),
	arch.DIV: binary(OpDiv),
	arch.MOD: binary(OpMod),
	arch.AND: binary(OpAnd),
	arch.OR:  binary(OpOr),
	arch.XOR: binary(OpXor),
	arch.CMP: binary(OpCmp),
	arch.NOT: unary(OpNot),
	arch.INC: unary(OpInc),
	arch.DEC: unary(OpDec),

	arch.PUSH: push,
	arch.POP:  pop,
	arch.CALL: call,
	arch.RET:  ret,

	arch.JMP: jmp,
	arch.JEQ: jumpIf(arch.FlagEqual),
	arch.JNE: jumpIf(0),
	arch.JGT: jumpIf(arch.FlagGreater),
	arch.JLT: jumpIf(arch.FlagLess),
}

func nop(*CPU, byte, byte) (int, bool, error) {
	return 0, false, nil
}

func hlt(*CPU, byte, byte) (int, bool, error) {
	return 0, false, io.EOF
}

func ldi(c *CPU, a, b byte) (int, bool, error) {
	c.reg.Set(a, b)
	return 0, false, nil
}

func ld(c *CPU, a, b byte) (int, bool, error) {
	c.reg.Set(a, c.memory.Read(int(c.reg.Get(b))))
	return 0, false, nil
}

func st(c *CPU, a, b byte) (int, bool, error) {
	c.memory.Write(int(c.reg.Get(a)), c.reg.Get(b))
	return 0, false, nil
}

func prn(c *CPU, a, _ byte) (int, bool, error) {
	if c.console == nil {
		return 0, false, ErrNoConsole
	}
	return 0, false, c.console.PrintValue(c.reg.Get(a))
}

func pra(c *CPU, a, _ byte) (int, bool, error) {
	if c.console == nil {
		return 0, false, ErrNoConsole
	}
	return 0, false, c.console.PrintChar(c.reg.Get(a))
}

func binary(op Op) handler {
	return func(c *CPU, a, b byte) (int, bool, error) {
		return 0, false, c.alu.Exec(&c.reg, op, a, b)
	}
}

func unary(op Op) handler {
	return func(c *CPU, a, _ byte) (int, bool, error) {
		return 0, false, c.alu.Exec(&c.reg, op, a, a)
	}
}

func push(c *CPU, a, _ byte) (int, bool, error) {
	c.push(c.reg.Get(a))
	return 0, false, nil
}

func pop(c *CPU, a, _ byte) (int, bool, error) {
	c.reg.Set(a, c.pop())
	return 0, false, nil
}

func call(c *CPU, a, _ byte) (int, bool, error) {
	c.push(byte(c.reg.PC + 2))
	return int(c.reg.Get(a)), true, nil
}

func ret(c *CPU, _, _ byte) (int, bool, error) {
	return int(c.pop()), true, nil
}

func jmp(c *CPU, a, _ byte) (int, bool, error) {
	return int(c.reg.Get(a)), true, nil
}

// jumpIf jumps when FL holds exactly the given bit pattern. Stale bits left
// by an earlier CMP therefore suppress the jump.
func jumpIf(fl byte) handler {
	return func(c *CPU, a, _ byte) (int, bool, error) {
		if c.reg.FL != fl {
			return 0, false, nil
		}
		return int(c.reg.Get(a)), true, nil
	}
}
