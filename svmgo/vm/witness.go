package vm

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	VMStatusRunning = 0
	VMStatusHalted  = 1
)

// register witness: kind byte + 32 byte word
const registerWitnessSize = 1 + 32

// code hash, memory hash, stack hash, ip, step, done, zero flag, registers
const (
	witnessDoneOffset = 32 + 32 + 32 + 4 + 8
	WitnessSize       = witnessDoneOffset + 1 + 1 + NumRegisters*registerWitnessSize
)

// StateWitness is the fixed-size binary commitment to a VMState.
type StateWitness []byte

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (state *VMState) EncodeWitness() StateWitness {
	out := make([]byte, 0, WitnessSize)
	codeHash := crypto.Keccak256Hash(state.Code)
	memHash := crypto.Keccak256Hash(state.Memory)
	stack := make([]byte, 0, 4*len(state.Stack))
	for _, v := range state.Stack {
		stack = binary.BigEndian.AppendUint32(stack, v)
	}
	stackHash := crypto.Keccak256Hash(stack)
	out = append(out, codeHash[:]...)
	out = append(out, memHash[:]...)
	out = append(out, stackHash[:]...)
	out = binary.BigEndian.AppendUint32(out, state.IP)
	out = binary.BigEndian.AppendUint64(out, state.Step)
	out = append(out, boolByte(state.Done()), boolByte(state.Flags.Zero))
	for _, r := range state.Registers {
		out = append(out, byte(r.kind))
		var word [32]byte
		if r.kind == KindString {
			word = crypto.Keccak256Hash([]byte(r.str))
		} else {
			binary.BigEndian.PutUint32(word[28:], r.integer)
		}
		out = append(out, word[:]...)
	}
	return out
}

// StateHash is the keccak256 of the witness with the first byte replaced by the VM status.
func (sw StateWitness) StateHash() (common.Hash, error) {
	if len(sw) != WitnessSize {
		return common.Hash{}, fmt.Errorf("invalid witness length: got %d, expected %d", len(sw), WitnessSize)
	}
	hash := crypto.Keccak256Hash(sw)
	if sw[witnessDoneOffset] != 0 {
		hash[0] = VMStatusHalted
	} else {
		hash[0] = VMStatusRunning
	}
	return hash, nil
}
