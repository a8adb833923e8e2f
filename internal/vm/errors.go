package vm

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrUnsupported     = errors.New("unsupported instruction")
	ErrStackOverflow   = errors.New("stack overflow")
	ErrStackUnderflow  = errors.New("stack underflow")
	ErrOutOfBounds     = errors.New("memory access out of bounds")
	ErrProgramTooLarge = errors.New("program too large")

	// ErrReboot and ErrQuit are returned by a HAL to stop the engine loop.
	ErrReboot = errors.New("reboot")
	ErrQuit   = errors.New("quit")
)

// MemoryError reports an access outside of the 4k address space.
type MemoryError struct {
	Op   string
	Addr int
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("%s 0x%03x: %v", e.Op, e.Addr, ErrOutOfBounds)
}

func (e *MemoryError) Unwrap() error {
	return ErrOutOfBounds
}

// StackError reports a call with a full stack or a return with an empty one.
type StackError struct {
	Depth int
	Err   error
}

func (e *StackError) Error() string {
	return fmt.Sprintf("%v (depth %d)", e.Err, e.Depth)
}

func (e *StackError) Unwrap() error {
	return e.Err
}

// Fault is a fatal engine condition. Instr is nil when decoding failed, and
// Opcode is meaningless when the fetch itself went out of bounds.
type Fault struct {
	PC     Address
	Opcode uint16
	Instr  Instruction
	Err    error
}

func (f *Fault) Error() string {
	switch {
	case f.Instr != nil:
		return fmt.Sprintf("fault at %s (opcode 0x%04X, %s): %v", f.PC, f.Opcode, f.Instr, f.Err)
	case errors.Is(f.Err, ErrOutOfBounds):
		return fmt.Sprintf("fault at %s: %v", f.PC, f.Err)
	default:
		return fmt.Sprintf("fault at %s (opcode 0x%04X): %v", f.PC, f.Opcode, f.Err)
	}
}

func (f *Fault) Unwrap() error {
	return f.Err
}
