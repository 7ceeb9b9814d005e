package vm

// Handler executes one instruction. It has full access to the VM and must
// move the instruction pointer itself: the run loop never advances it. A
// handler that leaves ip unchanged makes Run loop forever; use RunN to bound
// execution when handlers are not trusted. Handlers must not drive the VM
// they run on: a nested Step, Run or RunN returns ErrReentrant.
type Handler func(m *VM)

// OpcodeTable maps every opcode byte to its handler. Nil slots execute NoOp.
type OpcodeTable [256]Handler

// Install binds h to op, replacing any previous binding. A nil h restores the no-op.
func (t *OpcodeTable) Install(op byte, h Handler) {
	t[op] = h
}

// Lookup returns the handler bound to op, or nil if the slot is unbound.
func (t *OpcodeTable) Lookup(op byte) Handler {
	return t[op]
}

// Bound counts the opcodes with an installed handler.
func (t *OpcodeTable) Bound() int {
	n := 0
	for _, h := range t {
		if h != nil {
			n++
		}
	}
	return n
}

// NoOp skips the current one byte instruction.
func NoOp(m *VM) {
	m.Advance(1)
}
