package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroMemory is returned when a VM is constructed without scratch memory.
	ErrZeroMemory = errors.New("memory size must be non-zero")

	// ErrCodeTooLarge is returned when the code does not fit the 32 bit instruction pointer.
	ErrCodeTooLarge = errors.New("code exceeds addressable size")

	// ErrReleased is returned (or panicked with, for accessors) when a released VM is used.
	ErrReleased = errors.New("vm has been released")

	ErrRegisterIndex = errors.New("register index out of range")
	ErrMemoryAccess  = errors.New("memory access out of range")
	ErrIPOverflow    = errors.New("instruction pointer overflow")
	ErrOperandRange  = errors.New("operand beyond end of code")
	ErrRegisterKind  = errors.New("unknown register kind")

	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrReentrant is returned when a handler tries to drive the VM it runs on.
	ErrReentrant = errors.New("vm is already dispatching")
)

// StepError is returned by Step when a handler faults while executing the
// instruction at IP. Faults are programming errors in the handler, not in
// the bytecode: bad register indices, ip overflow, stack misuse, use after
// release.
type StepError struct {
	IP     uint32
	Opcode byte
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step failed at ip %08x (opcode %02x): %v", e.IP, e.Opcode, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
