package cpu

import (
	"fmt"

	"github.com/pkg/errors"
)

// Faults which halt the machine.
var (
	ErrDivideByZero  = errors.New("divide by zero")
	ErrIllegalOpcode = errors.New("illegal opcode")
	ErrNoConsole     = errors.New("no console connected")
)

// Error defines a runtime fault raised by a specific instruction.
type Error struct {
	Instruction
	Err error
}

// NewError creates a new error for the given instruction.
func NewError(instr *Instruction, err error) *Error {
	return &Error{
		Instruction: *instr,
		Err:         err,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%02x: %v (opcode %02x)", e.IP, e.Err, e.Opcode)
}

// Cause returns the underlying fault.
func (e *Error) Cause() error { return e.Err }

// Unwrap returns the underlying fault.
func (e *Error) Unwrap() error { return e.Err }
