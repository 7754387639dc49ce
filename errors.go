package clesh

import "fmt"

// An AddressError reports an access outside the bounds of memory.
type AddressError struct {
	Address int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("Invalid memory address %d.", e.Address)
}

// A ParseError is a fatal compile failure. It carries the offending token so
// the diagnostic names the source file, line number, and literal text.
type ParseError struct {
	Msg   string
	Token Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Error: %s\nLine No: %d\nSource: %s\nToken: %s", e.Msg, e.Token.Line, e.Token.Source, e.Token.Text)
}

// An ExecError is a fatal runtime failure. It carries the opcode being
// executed and the instruction pointer at the time of the failure.
type ExecError struct {
	Msg     string
	Code    Opcode
	Pointer int
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("Error: %s\nCode: %d\nPointer: %d", e.Msg, e.Code, e.Pointer)
}
