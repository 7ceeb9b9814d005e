package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simplevm/simplevm/svmgo/vm"
)

func testVMState(t *testing.T) *vm.VMState {
	state, err := vm.NewVMState([]byte{0x52, 0x00, 0x52}, 32)
	require.NoError(t, err)
	state.IP = 1
	state.Step = 1
	state.Registers.SetInteger(1, 10)
	state.Registers.SetString(2, "hello")
	state.Memory[3] = 0x7f
	return state
}

func TestStateFiles(t *testing.T) {
	for _, name := range []string{"state.json", "state.json.gz", "state.cbor"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			state := testVMState(t)
			require.NoError(t, WriteState(path, state))

			loaded, err := LoadState(path)
			require.NoError(t, err)
			require.Equal(t, state, loaded)
		})
	}
}

func TestWriteStateEmptyPath(t *testing.T) {
	require.NoError(t, WriteState("", testVMState(t)))
}

func TestLoadStateInvalid(t *testing.T) {
	t.Run("ZeroMemory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"code":"0x52","memory":"0x","ip":0}`), 0o644))
		_, err := LoadState(path)
		require.ErrorIs(t, err, vm.ErrZeroMemory)
	})
	t.Run("BadRegisterKind", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"code":"0x52","memory":"0x00","registers":[{"kind":"float"}]}`), 0o644))
		_, err := LoadState(path)
		require.ErrorContains(t, err, vm.ErrRegisterKind.Error())
	})
	t.Run("MissingCBOR", func(t *testing.T) {
		_, err := LoadState(filepath.Join(t.TempDir(), "missing.cbor"))
		require.ErrorContains(t, err, "failed to open state file")
	})
}
