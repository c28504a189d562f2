// Package arch defines the LS-8 instruction set along with
// some related helper functions.
//
// An opcode byte is laid out as AABCDDDD: AA holds the number of operand
// bytes which follow the opcode, B is set for ALU operations, C for
// instructions which set the program counter and DDDD identifies the
// instruction within its group.
package arch

import (
	"fmt"
	"strings"
)

// Known opcodes.
const (
	NOP  = 0x00
	HLT  = 0x01
	RET  = 0x11
	IRET = 0x13

	PUSH = 0x45
	POP  = 0x46
	PRN  = 0x47
	PRA  = 0x48

	CALL = 0x50
	JMP  = 0x54
	JEQ  = 0x55
	JNE  = 0x56
	JGT  = 0x57
	JLT  = 0x58

	INC = 0x65
	DEC = 0x66
	NOT = 0x69

	LDI = 0x82
	LD  = 0x83
	ST  = 0x84

	ADD = 0xa0
	SUB = 0xa1
	MUL = 0xa2
	DIV = 0xa3
	MOD = 0xa4
	CMP = 0xa7
	AND = 0xa8
	OR  = 0xaa
	XOR = 0xab
)

// Bit masks for the opcode fields.
const (
	ArgcMask  = 0xc0 // Operand count.
	ALUMask   = 0x20 // Instruction is handled by the ALU.
	JumpMask  = 0x10 // Instruction sets the program counter.
	ArgcShift = 6
)

// OperandKind describes how an instruction interprets an operand byte.
type OperandKind int

// Known operand kinds.
const (
	Register  OperandKind = iota // Operand is a register index.
	Immediate                    // Operand is a literal value.
)

var names = map[int]string{
	NOP:  "NOP",
	HLT:  "HLT",
	RET:  "RET",
	IRET: "IRET",
	PRA:  "PRA",
	PRN:  "PRN",
	CALL: "CALL",
	POP:  "POP",
	PUSH: "PUSH",
	JMP:  "JMP",
	JEQ:  "JEQ",
	JNE:  "JNE",
	JLT:  "JLT",
	JGT:  "JGT",
	NOT:  "NOT",
	INC:  "INC",
	DEC:  "DEC",
	LD:   "LD",
	LDI:  "LDI",
	ST:   "ST",
	CMP:  "CMP",
	ADD:  "ADD",
	SUB:  "SUB",
	MUL:  "MUL",
	DIV:  "DIV",
	MOD:  "MOD",
	OR:   "OR",
	XOR:  "XOR",
	AND:  "AND",
}

var opcodes = func() map[string]int {
	out := make(map[string]int, len(names))
	for op, name := range names {
		out[name] = op
	}
	return out
}()

// Opcode returns the opcode for the given instruction name.
// Returns false if the name is not recognized.
func Opcode(name string) (int, bool) {
	op, ok := opcodes[strings.ToUpper(name)]
	return op, ok
}

// Name returns the name for the given opcode.
// Returns false if the opcode is not recognized.
func Name(opcode int) (string, bool) {
	name, ok := names[opcode]
	return name, ok
}

// Argc returns the number of operand bytes encoded in the given opcode.
// This is derived from the opcode bits alone and is valid for unknown
// opcodes as well.
func Argc(opcode int) int {
	return (opcode & ArgcMask) >> ArgcShift
}

// Operands returns the kinds of the operands the given instruction expects.
// Returns nil for unknown opcodes and instructions without operands.
func Operands(opcode int) []OperandKind {
	if _, ok := names[opcode]; !ok {
		return nil
	}

	switch opcode {
	case LDI:
		return []OperandKind{Register, Immediate}
	}

	out := make([]OperandKind, Argc(opcode))
	for i := range out {
		out[i] = Register
	}
	return out
}

// Format returns a human readable form of the instruction with the given
// opcode and operand bytes. Operands beyond the instruction's argc are ignored.
// Unknown opcodes are rendered as a raw data byte.
func Format(opcode int, a, b byte) string {
	name, ok := Name(opcode)
	if !ok {
		return fmt.Sprintf("DB 0x%02x", opcode)
	}

	kinds := Operands(opcode)
	if len(kinds) == 0 {
		return name
	}

	var sb strings.Builder
	sb.WriteString(name)

	for i, kind := range kinds {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}

		v := a
		if i == 1 {
			v = b
		}

		if kind == Register {
			sb.WriteString(RegisterName(int(v % RegisterCount)))
		} else {
			fmt.Fprintf(&sb, "%d", v)
		}
	}

	return sb.String()
}
