package vm

import (
	"fmt"
	"io"
)

// DumpRegisters writes one line per register, plus ip, flags and the stack depth.
func (m *VM) DumpRegisters(w io.Writer) error {
	m.live()
	return m.state.DumpRegisters(w)
}

func (state *VMState) DumpRegisters(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "ip: %08x step: %d halted: %t zero: %t sp: %d\n",
		state.IP, state.Step, state.Done(), state.Flags.Zero, len(state.Stack)); err != nil {
		return err
	}
	for i, r := range state.Registers {
		if _, err := fmt.Fprintf(w, "#%d\t%-7s\t%s\n", i, r.Kind(), r); err != nil {
			return err
		}
	}
	return nil
}
