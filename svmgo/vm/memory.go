package vm

import "fmt"

// Memory returns the scratch memory region. Its size is fixed at construction.
func (m *VM) Memory() []byte {
	m.live()
	return m.state.Memory
}

func (m *VM) MemorySize() uint32 {
	m.live()
	return uint32(len(m.state.Memory))
}

func (m *VM) checkRange(addr uint32, size uint64) error {
	if uint64(addr)+size > uint64(len(m.state.Memory)) {
		return fmt.Errorf("%w: [%08x, +%d) with memory size %d", ErrMemoryAccess, addr, size, len(m.state.Memory))
	}
	return nil
}

// ReadMemory copies size bytes starting at addr.
func (m *VM) ReadMemory(addr uint32, size uint32) ([]byte, error) {
	m.live()
	if err := m.checkRange(addr, uint64(size)); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, m.state.Memory[addr:])
	return out, nil
}

// WriteMemory copies data into memory at addr. Writes never grow memory.
func (m *VM) WriteMemory(addr uint32, data []byte) error {
	m.live()
	if err := m.checkRange(addr, uint64(len(data))); err != nil {
		return err
	}
	copy(m.state.Memory[addr:], data)
	return nil
}
