package cpu

import (
	"github.com/pkg/errors"

	"github.com/hexaflex/ls8/arch"
)

// Op identifies an ALU operation.
type Op int

// Known ALU operations.
const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpInc
	OpDec
	OpAnd
	OpOr
	OpXor
	OpNot
	OpCmp
)

var opNames = [...]string{
	OpAdd: "ADD",
	OpSub: "SUB",
	OpMul: "MUL",
	OpDiv: "DIV",
	OpMod: "MOD",
	OpInc: "INC",
	OpDec: "DEC",
	OpAnd: "AND",
	OpOr:  "OR",
	OpXor: "XOR",
	OpNot: "NOT",
	OpCmp: "CMP",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "Op(?)"
	}
	return opNames[op]
}

// ALU performs arithmetic and logic on the register file it is handed.
//
// Every result is truncated to 8 bits. CMP ORs the new comparison bits
// into FL and leaves the old ones in place, unless ClearFlagsOnCompare
// is set.
type ALU struct {
	ClearFlagsOnCompare bool
}

// Exec applies op to registers a and b, storing the result in a.
// Unary operations ignore b. Division and modulo by zero return
// ErrDivideByZero and leave the registers untouched.
func (alu ALU) Exec(r *Registers, op Op, a, b byte) error {
	va, vb := r.Get(a), r.Get(b)

	switch op {
	case OpAdd:
		r.Set(a, va+vb)
	case OpSub:
		r.Set(a, va-vb)
	case OpMul:
		r.Set(a, va*vb)
	case OpDiv:
		if vb == 0 {
			return ErrDivideByZero
		}
		r.Set(a, va/vb)
	case OpMod:
		if vb == 0 {
			return ErrDivideByZero
		}
		r.Set(a, va%vb)
	case OpInc:
		r.Set(a, va+1)
	case OpDec:
		r.Set(a, va-1)
	case OpAnd:
		r.Set(a, va&vb)
	case OpOr:
		r.Set(a, va|vb)
	case OpXor:
		r.Set(a, va^vb)
	case OpNot:
		r.Set(a, ^va)
	case OpCmp:
		if alu.ClearFlagsOnCompare {
			r.FL = 0
		}
		switch {
		case va == vb:
			r.FL |= arch.FlagEqual
		case va > vb:
			r.FL |= arch.FlagGreater
		default:
			r.FL |= arch.FlagLess
		}
	default:
		return errors.Errorf("unknown ALU operation %d", int(op))
	}

	return nil
}
