package vm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryReadWrite(t *testing.T) {
	m, err := New([]byte{0x00}, 64)
	require.NoError(t, err)

	t.Run("zeroed", func(t *testing.T) {
		dat, err := m.ReadMemory(0, 64)
		require.NoError(t, err)
		require.Equal(t, make([]byte, 64), dat)
	})
	t.Run("in range", func(t *testing.T) {
		require.NoError(t, m.WriteMemory(10, []byte{0xaa, 0xbb}))
		dat, err := m.ReadMemory(9, 4)
		require.NoError(t, err)
		require.Equal(t, []byte{0x00, 0xaa, 0xbb, 0x00}, dat)
	})
	t.Run("last byte", func(t *testing.T) {
		require.NoError(t, m.WriteMemory(63, []byte{0x42}))
		require.Equal(t, byte(0x42), m.Memory()[63])
	})
	t.Run("out of range", func(t *testing.T) {
		require.ErrorIs(t, m.WriteMemory(63, []byte{1, 2}), ErrMemoryAccess)
		_, err := m.ReadMemory(0, 65)
		require.ErrorIs(t, err, ErrMemoryAccess)
		_, err = m.ReadMemory(0xffff_ffff, 2)
		require.ErrorIs(t, err, ErrMemoryAccess)
		require.Len(t, m.Memory(), 64, "memory never grows")
	})
	t.Run("read is a copy", func(t *testing.T) {
		dat, err := m.ReadMemory(10, 1)
		require.NoError(t, err)
		dat[0] = 0
		require.Equal(t, byte(0xaa), m.Memory()[10])
	})
}

func TestMemoryFromHandler(t *testing.T) {
	// 0x40 reg addr: store integer register big-endian at addr
	store := func(m *VM) {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], m.GetInt(int(m.Operand(1))))
		if err := m.WriteMemory(uint32(m.Operand(2)), buf[:]); err != nil {
			m.ReportError(err.Error())
		}
		m.Advance(3)
	}
	var faults []string
	m, err := New([]byte{0x40, 1, 0, 0x40, 2, 30}, 32, WithErrorHandler(func(m *VM, msg string) {
		faults = append(faults, msg)
	}))
	require.NoError(t, err)
	m.SetInt(1, 0xdeadbeef)
	m.SetInt(2, 1)
	m.InstallOpcode(0x40, store)

	require.NoError(t, m.Run())
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, m.Memory()[:4])
	require.Len(t, faults, 1, "second store crosses the end of memory")
	require.Contains(t, faults[0], "memory access out of range")
}
