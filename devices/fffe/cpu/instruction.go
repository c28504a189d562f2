package cpu

import (
	"fmt"

	"github.com/hexaflex/ls8/arch"
)

// Instruction defines fetched instruction data.
type Instruction struct {
	IP     int     // Instruction address.
	Opcode byte    // Instruction opcode.
	Args   [2]byte // Candidate operands at IP+1 and IP+2.
}

// Fetch reads the opcode at pc along with the two bytes that follow it.
// Both operand bytes are always read, whether the instruction uses them or not.
func (i *Instruction) Fetch(m Memory, pc int) {
	i.IP = m.mask(pc)
	i.Opcode = m.Read(pc)
	i.Args[0] = m.Read(pc + 1)
	i.Args[1] = m.Read(pc + 2)
}

// Argc returns the number of operand bytes the opcode consumes.
func (i *Instruction) Argc() int {
	return arch.Argc(int(i.Opcode))
}

// Size returns the encoded size of the instruction in bytes.
func (i *Instruction) Size() int {
	return i.Argc() + 1
}

func (i *Instruction) String() string {
	return fmt.Sprintf("%02x: %s", i.IP, arch.Format(int(i.Opcode), i.Args[0], i.Args[1]))
}
