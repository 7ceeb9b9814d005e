package hostcall

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/simplevm/simplevm/svmgo/vm"
)

func TestDouble(t *testing.T) {
	var out bytes.Buffer
	var stderr bytes.Buffer
	m, err := vm.New([]byte{SyscallOpcode, SyscallOpcode}, 200, vm.WithStdout(&out), vm.WithStderr(&stderr))
	require.NoError(t, err)
	defer func() { require.NoError(t, m.Release()) }()

	m.SetInt(1, 5)
	Install(m, SyscallOpcode)
	require.NoError(t, m.Run())

	require.Equal(t, uint32(20), m.GetInt(1))
	require.Equal(t, uint32(2), m.IP())
	require.Equal(t, "Bytecode length: 2\nValue of #1: 5\nValue of #1: 10\n"+
		"Bytecode length: 2\nValue of #1: 10\nValue of #1: 20\n", out.String())
	require.Empty(t, stderr.String())
}

func TestDoubleOnString(t *testing.T) {
	var faults []string
	var stderr, logs bytes.Buffer
	m, err := vm.New([]byte{SyscallOpcode}, 8,
		vm.WithStderr(&stderr),
		vm.WithLogger(log.NewLogger(log.LogfmtHandlerWithLevel(&logs, slog.LevelDebug))),
		vm.WithErrorHandler(func(m *vm.VM, msg string) {
			faults = append(faults, msg)
		}))
	require.NoError(t, err)
	m.SetString(1, "five")
	Install(m, SyscallOpcode)

	require.NoError(t, m.Run())
	require.Len(t, faults, 1)
	require.Equal(t, uint32(0), m.GetInt(1), "doubled fallback overwrites the string")
	require.Equal(t, "Register #1 holds a string\n", stderr.String())
	require.Contains(t, logs.String(), "host syscall")
	require.Contains(t, logs.String(), "name=double")
}
