package asm

import (
	"fmt"
	"io"
	"strings"

	"github.com/hexaflex/ls8/arch"
)

// Disassemble writes a listing of program to w, one instruction per line.
// The listing is valid source: feeding it back into Parse yields program.
func Disassemble(w io.Writer, program []byte) error {
	for addr := 0; addr < len(program); {
		opcode := int(program[addr])
		size := arch.Argc(opcode) + 1

		_, known := arch.Name(opcode)
		if addr+size > len(program) {
			known = false
		}

		var args [2]byte
		if known {
			copy(args[:], program[addr+1:addr+size])
			known = canonical(opcode, args)
		}

		text := fmt.Sprintf("DB 0x%02x", program[addr])
		if known {
			text = arch.Format(opcode, args[0], args[1])
		} else {
			size = 1
		}

		raw := make([]string, size)
		for i := range raw {
			raw[i] = fmt.Sprintf("%02x", program[addr+i])
		}

		_, err := fmt.Fprintf(w, "%-16s # %02x: %s\n", text, addr, strings.Join(raw, " "))
		if err != nil {
			return err
		}

		addr += size
	}
	return nil
}

// canonical returns false if a register operand lies outside the register file.
// Such bytes would not survive a round trip through Format and Parse.
func canonical(opcode int, args [2]byte) bool {
	for i, kind := range arch.Operands(opcode) {
		if kind == arch.Register && args[i] >= arch.RegisterCount {
			return false
		}
	}
	return true
}
