package cpu

import (
	"fmt"
	"strings"

	"github.com/hexaflex/ls8/arch"
)

// Special holds the registers which are not addressable by instructions.
type Special struct {
	PC int  // Program counter.
	IR byte // Instruction register; the last fetched opcode.
	FL byte // Flags, set by CMP.
}

// Registers defines the register file.
type Registers struct {
	GP [arch.RegisterCount]byte // General purpose registers R0-R7.
	Special
}

// Reset puts the register file in its power-on state.
func (r *Registers) Reset() {
	*r = Registers{}
	r.GP[arch.SP] = arch.StackStart
}

// Get returns the value of general purpose register n.
// Register indices wrap at the register count.
func (r *Registers) Get(n byte) byte {
	return r.GP[n%arch.RegisterCount]
}

// Set stores v in general purpose register n.
func (r *Registers) Set(n, v byte) {
	r.GP[n%arch.RegisterCount] = v
}

func (r Registers) String() string {
	var sb strings.Builder
	for i, v := range r.GP {
		fmt.Fprintf(&sb, "%s=%02x ", arch.RegisterName(i), v)
	}
	fmt.Fprintf(&sb, "PC=%02x IR=%02x FL=%03b", r.PC, r.IR, r.FL)
	return sb.String()
}
