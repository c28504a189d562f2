package arch

import (
	"fmt"
	"strings"
)

// Register file layout.
const (
	RegisterCount = 8

	IM = 5 // Interrupt mask.
	IS = 6 // Interrupt status.
	SP = 7 // Stack pointer.

	StackStart = 0xf4 // Initial stack pointer value.
)

// Flag bits stored in FL by CMP.
const (
	FlagEqual   = 1 << 0
	FlagGreater = 1 << 1
	FlagLess    = 1 << 2
)

// IsRegister returns true if the given name represents a known register.
func IsRegister(name string) bool {
	return RegisterIndex(name) > -1
}

// RegisterIndex returns the index for the given register.
// Returns -1 if the name is not recognized.
func RegisterIndex(name string) int {
	switch strings.ToLower(name) {
	case "r0":
		return 0
	case "r1":
		return 1
	case "r2":
		return 2
	case "r3":
		return 3
	case "r4":
		return 4
	case "r5", "im":
		return IM
	case "r6", "is":
		return IS
	case "r7", "sp":
		return SP
	}
	return -1
}

// RegisterName returns the name associated with the given register index.
// Returns "" if the index is not recognized.
func RegisterName(n int) string {
	switch n {
	case 0, 1, 2, 3, 4:
		return fmt.Sprintf("R%d", n)
	case IM:
		return "IM"
	case IS:
		return "IS"
	case SP:
		return "SP"
	}
	return ""
}
