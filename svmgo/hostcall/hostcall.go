// Package hostcall holds host-native handlers that bytecode reaches through a
// syscall opcode.
package hostcall

import (
	"fmt"

	"github.com/simplevm/simplevm/svmgo/vm"
)

// SyscallOpcode is the opcode the demo tools bind Double to.
const SyscallOpcode byte = 0x52

// Double reports the code size and register #1 on the VM's stdout, then
// doubles #1. It is a one byte instruction. A string in #1 is reported on
// stderr and replaced by 0.
func Double(m *vm.VM) {
	m.Logger().Debug("host syscall", "name", "double", "ip", m.IP(), "kind", m.RegisterKind(1))
	if kind := m.RegisterKind(1); kind != vm.KindInteger {
		_, _ = fmt.Fprintf(m.Stderr(), "Register #1 holds a %s\n", kind)
	}
	out := m.Stdout()
	_, _ = fmt.Fprintf(out, "Bytecode length: %d\n", len(m.Code()))
	v := m.GetInt(1)
	_, _ = fmt.Fprintf(out, "Value of #1: %d\n", v)
	m.SetInt(1, v*2)
	_, _ = fmt.Fprintf(out, "Value of #1: %d\n", m.GetInt(1))
	m.Advance(1)
}

// Install binds the demo syscall to op.
func Install(m *vm.VM, op byte) {
	m.InstallOpcode(op, Double)
}
