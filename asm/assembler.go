// Package asm turns LS-8 program source into the byte stream loaded into
// machine memory, and back.
//
// Two source forms are accepted and may be mixed freely. The classic form has
// one 8-digit binary literal per line:
//
//	10000010 # LDI R0,8
//	00000000
//	00001000
//
// The mnemonic form has one instruction per line, optionally preceded by a
// label, and a DB directive for raw data:
//
//	loop:  LDI R0, 'A'
//	       PRA R0
//	       DB  "text", 0x0a, 0
//
// Comments start with '#' or ';'. Numbers are decimal, or binary and
// hexadecimal with the 0b and 0x prefixes. An operand of exactly eight binary
// digits is read as a binary byte, like a line in the classic form. Labels may be used wherever an
// immediate value is expected and resolve to their address.
package asm

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hexaflex/ls8/arch"
)

// fixup records an immediate operand which refers to a label.
type fixup struct {
	offset int
	label  string
	pos    Position
}

// assembler holds state for a single Parse call.
type assembler struct {
	file   string
	out    []byte
	labels map[string]int
	fixups []fixup
}

// Parse reads program source from r and returns the assembled bytes.
// The filename is only used for error messages.
func Parse(r io.Reader, filename string) ([]byte, error) {
	a := &assembler{
		file:   filename,
		labels: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		if err := a.line(line, scanner.Text()); err != nil {
			return nil, err
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}

	for _, f := range a.fixups {
		addr, ok := a.labels[f.label]
		if !ok {
			return nil, newError(f.pos, "undefined label %q", f.label)
		}
		if addr > 0xff {
			return nil, newError(f.pos, "label %q at address %d is out of range", f.label, addr)
		}
		a.out[f.offset] = byte(addr)
	}

	return a.out, nil
}

// line assembles a single source line.
func (a *assembler) line(line int, text string) error {
	text = stripComment(text)

	col := 1 + len(text) - len(strings.TrimLeft(text, " \t"))
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return nil
	}

	pos := Position{File: a.file, Line: line, Col: col}

	if isBinaryLiteral(text) {
		v, _ := strconv.ParseUint(text, 2, 8)
		a.out = append(a.out, byte(v))
		return nil
	}

	if index := strings.IndexByte(text, ':'); index > 0 && isIdent(text[:index]) {
		name := text[:index]
		if _, ok := a.labels[name]; ok {
			return newError(pos, "duplicate label %q", name)
		}
		a.labels[name] = len(a.out)

		rest := text[index+1:]
		trimmed := strings.TrimLeft(rest, " \t")
		pos.Col += index + 1 + len(rest) - len(trimmed)
		text = strings.TrimSpace(trimmed)
		if len(text) == 0 {
			return nil
		}
	}

	mnemonic, args := text, ""
	if index := strings.IndexAny(text, " \t"); index > -1 {
		mnemonic, args = text[:index], strings.TrimSpace(text[index:])
	}

	argPos := pos
	argPos.Col += len(text) - len(args)

	operands, err := splitOperands(args)
	if err != nil {
		return newError(argPos, "%v", err)
	}

	if strings.EqualFold(mnemonic, "DB") {
		return a.data(argPos, operands)
	}

	return a.instruction(pos, argPos, mnemonic, operands)
}

// instruction assembles an opcode and its operands.
func (a *assembler) instruction(pos, argPos Position, mnemonic string, operands []string) error {
	opcode, ok := arch.Opcode(mnemonic)
	if !ok {
		return newError(pos, "unknown instruction %q", mnemonic)
	}

	kinds := arch.Operands(opcode)
	if len(operands) != len(kinds) {
		return newError(pos, "%s expects %d operand(s); have %d", strings.ToUpper(mnemonic), len(kinds), len(operands))
	}

	a.out = append(a.out, byte(opcode))

	for i, kind := range kinds {
		switch kind {
		case arch.Register:
			index := arch.RegisterIndex(operands[i])
			if index < 0 {
				return newError(argPos, "%q is not a register", operands[i])
			}
			a.out = append(a.out, byte(index))

		case arch.Immediate:
			if err := a.immediate(argPos, operands[i]); err != nil {
				return err
			}
		}
	}

	return nil
}

// data assembles the operands of a DB directive.
func (a *assembler) data(pos Position, operands []string) error {
	if len(operands) == 0 {
		return newError(pos, "DB expects at least one value")
	}

	for _, v := range operands {
		if strings.HasPrefix(v, `"`) {
			s, err := strconv.Unquote(v)
			if err != nil {
				return newError(pos, "invalid string %s", v)
			}
			a.out = append(a.out, s...)
			continue
		}

		if err := a.immediate(pos, v); err != nil {
			return err
		}
	}

	return nil
}

// immediate appends a literal byte value or a label reference.
func (a *assembler) immediate(pos Position, v string) error {
	if isIdent(v) && !arch.IsRegister(v) {
		a.fixups = append(a.fixups, fixup{offset: len(a.out), label: v, pos: pos})
		a.out = append(a.out, 0)
		return nil
	}

	n, err := ParseNumber(v)
	if err != nil {
		return newError(pos, "invalid value %q", v)
	}
	if n < -128 || n > 255 {
		return newError(pos, "value %d does not fit in a byte", n)
	}

	a.out = append(a.out, byte(n))
	return nil
}

// ParseNumber parses a decimal, 0x-prefixed hexadecimal, 0b-prefixed binary,
// 8-digit binary or quoted character literal. Leading zeros never select octal.
func ParseNumber(v string) (int64, error) {
	if strings.HasPrefix(v, "'") {
		s, err := strconv.Unquote(v)
		if err != nil {
			return 0, err
		}
		r := []rune(s)
		if len(r) != 1 {
			return 0, errors.Errorf("invalid character literal %s", v)
		}
		return int64(r[0]), nil
	}

	if isBinaryLiteral(v) {
		return strconv.ParseInt(v, 2, 64)
	}

	digits := strings.TrimPrefix(v, "-")
	negative := len(digits) < len(v)

	base := 10
	if len(digits) > 2 && digits[0] == '0' {
		switch digits[1] {
		case 'x', 'X':
			base, digits = 16, digits[2:]
		case 'b', 'B':
			base, digits = 2, digits[2:]
		}
	}

	if len(digits) == 0 || digits[0] == '-' || digits[0] == '+' {
		return 0, errors.Errorf("invalid number %s", v)
	}

	n, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return 0, err
	}
	if negative {
		n = -n
	}
	return n, nil
}

// stripComment removes a trailing comment, leaving quoted text intact.
func stripComment(text string) string {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
		case c == '"' || c == '\'':
			quote = c
		case c == '#' || c == ';':
			return text[:i]
		}
	}
	return text
}

// splitOperands splits a comma separated operand list, leaving quoted text intact.
func splitOperands(args string) ([]string, error) {
	if len(args) == 0 {
		return nil, nil
	}

	var out []string
	var quote byte
	start := 0

	for i := 0; i < len(args); i++ {
		c := args[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
		case c == '"' || c == '\'':
			quote = c
		case c == ',':
			out = append(out, strings.TrimSpace(args[start:i]))
			start = i + 1
		}
	}

	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}

	out = append(out, strings.TrimSpace(args[start:]))
	for _, v := range out {
		if len(v) == 0 {
			return nil, errors.New("empty operand")
		}
	}
	return out, nil
}

// isBinaryLiteral returns true for the classic 8-digit binary byte form.
func isBinaryLiteral(text string) bool {
	if len(text) != 8 {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] != '0' && text[i] != '1' {
			return false
		}
	}
	return true
}

// isIdent returns true if v is a valid label name.
func isIdent(v string) bool {
	if len(v) == 0 {
		return false
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
