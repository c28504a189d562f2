package asm

import "fmt"

// Position defines a location in program source.
type Position struct {
	File string // File in which the token was found.
	Line int    // Line number, starting at 1.
	Col  int    // Column number, starting at 1.
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Error defines a build error with source context.
type Error struct {
	Pos Position
	Msg string
}

// newError creates a new, formatted error message with the given source context.
func newError(pos Position, f string, argv ...interface{}) *Error {
	return &Error{
		Pos: pos,
		Msg: fmt.Sprintf(f, argv...),
	}
}

func (e *Error) Error() string {
	return e.Pos.String() + " " + e.Msg
}
