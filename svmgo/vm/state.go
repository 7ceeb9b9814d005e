package vm

import (
	"fmt"
	"io"
	"math"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fxamacker/cbor/v2"
)

// cborEncMode produces canonical CBOR, so equal states serialize to equal bytes.
var cborEncMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("cbor encoding mode: %w", err))
	}
	return em
}()

// StackSize bounds the integer stack handlers reach through VM.Push and VM.Pop.
const StackSize = 1024

// Flags are condition bits available to handlers. The core never reads them.
type Flags struct {
	Zero bool `json:"zero" cbor:"zero"`
}

// VMState is everything needed to resume execution, apart from the opcode
// handlers, which belong to the host.
type VMState struct {
	Code   hexutil.Bytes `json:"code" cbor:"code"`
	Memory hexutil.Bytes `json:"memory" cbor:"memory"`

	IP uint32 `json:"ip" cbor:"ip"`

	Registers Registers `json:"registers" cbor:"registers"`
	Flags     Flags     `json:"flags" cbor:"flags"`

	// Stack holds the pushed values, bottom first. Its length is the stack pointer.
	Stack []uint32 `json:"stack" cbor:"stack"`

	// Step counts dispatched instructions.
	Step uint64 `json:"step" cbor:"step"`

	// Halted is set by handlers through VM.Halt.
	Halted bool `json:"halted" cbor:"halted"`
}

// NewVMState copies code and allocates memorySize bytes of zeroed scratch memory.
func NewVMState(code []byte, memorySize uint32) (*VMState, error) {
	state := &VMState{
		Code:   append(hexutil.Bytes(nil), code...),
		Memory: make(hexutil.Bytes, memorySize),
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return state, nil
}

func (state *VMState) Validate() error {
	if len(state.Memory) == 0 {
		return ErrZeroMemory
	}
	if uint64(len(state.Code)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes", ErrCodeTooLarge, len(state.Code))
	}
	if len(state.Stack) > StackSize {
		return fmt.Errorf("%w: %d entries, limit %d", ErrStackOverflow, len(state.Stack), StackSize)
	}
	return nil
}

// Done reports whether execution has ended, either by running off the end of
// the code or by a handler halting.
func (state *VMState) Done() bool {
	return state.Halted || uint64(state.IP) >= uint64(len(state.Code))
}

// Opcode returns the byte at ip. Only valid while !Done().
func (state *VMState) Opcode() byte {
	return state.Code[state.IP]
}

// Serialize writes the state as canonical CBOR.
func (state *VMState) Serialize(w io.Writer) error {
	return cborEncMode.NewEncoder(w).Encode(state)
}

// Deserialize reads a CBOR state written by Serialize.
func (state *VMState) Deserialize(r io.Reader) error {
	if err := cbor.NewDecoder(r).Decode(state); err != nil {
		return err
	}
	return state.Validate()
}
