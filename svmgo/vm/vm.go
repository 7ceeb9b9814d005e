// Package vm is an embeddable bytecode machine: a register bank, a 256 entry
// opcode table and a fetch-dispatch loop. The machine defines no instruction
// set. The host installs handlers, and each handler decides the width of its
// instruction by advancing the instruction pointer itself.
package vm

import (
	"fmt"
	"io"
	"math"

	"github.com/ethereum/go-ethereum/log"
)

// ErrorHandler receives recoverable VM faults, such as reading a register
// through the wrong type. It may halt the VM; the default only logs.
type ErrorHandler func(m *VM, msg string)

// DefaultErrorHandler logs the fault and lets execution continue.
func DefaultErrorHandler(m *VM, msg string) {
	m.log.Warn("VM error", "msg", msg, "ip", m.state.IP, "step", m.state.Step)
}

// HaltOnError logs the fault like DefaultErrorHandler and then halts the VM.
func HaltOnError(m *VM, msg string) {
	DefaultErrorHandler(m, msg)
	m.Halt()
}

type Option func(m *VM)

func WithLogger(l log.Logger) Option {
	return func(m *VM) {
		m.log = l
	}
}

// WithErrorHandler sets the fault hook. A nil h keeps DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *VM) {
		m.onError = h
	}
}

// WithStdout sets the writer handlers use for program output.
func WithStdout(w io.Writer) Option {
	return func(m *VM) {
		m.stdOut = w
	}
}

func WithStderr(w io.Writer) Option {
	return func(m *VM) {
		m.stdErr = w
	}
}

// VM is a single execution engine. It is not safe for concurrent use; run
// one VM per goroutine instead, since VMs share no state.
type VM struct {
	state   *VMState
	opcodes OpcodeTable

	onError ErrorHandler
	log     log.Logger

	stdOut io.Writer
	stdErr io.Writer

	// dispatching is set while a handler runs
	dispatching bool
	released    bool
}

// New builds a VM over a copy of code with memorySize bytes of scratch memory.
// Empty code is allowed and halts immediately; zero memory is rejected.
func New(code []byte, memorySize uint32, opts ...Option) (*VM, error) {
	state, err := NewVMState(code, memorySize)
	if err != nil {
		return nil, err
	}
	return newVM(state, opts), nil
}

// NewFromState resumes a VM from a loaded snapshot. The VM takes ownership of state.
func NewFromState(state *VMState, opts ...Option) (*VM, error) {
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("invalid state: %w", err)
	}
	return newVM(state, opts), nil
}

func newVM(state *VMState, opts []Option) *VM {
	m := &VM{
		state:   state,
		onError: DefaultErrorHandler,
		log:     log.Root(),
		stdOut:  io.Discard,
		stdErr:  io.Discard,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.onError == nil {
		m.onError = DefaultErrorHandler
	}
	return m
}

func (m *VM) live() {
	if m.released {
		panic(ErrReleased)
	}
}

// State exposes the live machine state.
func (m *VM) State() *VMState {
	m.live()
	return m.state
}

func (m *VM) Opcodes() *OpcodeTable {
	m.live()
	return &m.opcodes
}

// InstallOpcode binds h to op, overwriting the previous handler.
func (m *VM) InstallOpcode(op byte, h Handler) {
	m.live()
	m.opcodes.Install(op, h)
}

func (m *VM) SetErrorHandler(h ErrorHandler) {
	if h == nil {
		h = DefaultErrorHandler
	}
	m.onError = h
}

// ReportError routes a recoverable fault to the VM's error handler.
func (m *VM) ReportError(msg string) {
	m.onError(m, msg)
}

func (m *VM) Logger() log.Logger {
	return m.log
}

func (m *VM) Stdout() io.Writer {
	return m.stdOut
}

func (m *VM) Stderr() io.Writer {
	return m.stdErr
}

// Step dispatches the instruction at ip. It is a no-op once the VM is halted.
// Handler panics are returned as a *StepError, as is a handler releasing the
// VM. Calling Step, Run or RunN from inside a handler returns ErrReentrant.
func (m *VM) Step() (outErr error) {
	if m.released {
		return ErrReleased
	}
	if m.dispatching {
		return ErrReentrant
	}
	s := m.state
	if s.Done() {
		return nil
	}
	ip := s.IP
	op := s.Code[ip]
	m.dispatching = true
	defer func() {
		m.dispatching = false
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			outErr = &StepError{IP: ip, Opcode: op, Err: err}
		}
	}()

	h := m.opcodes.Lookup(op)
	if h == nil {
		h = NoOp
	}
	s.Step++
	h(m)
	if m.released {
		return &StepError{IP: ip, Opcode: op, Err: ErrReleased}
	}
	return nil
}

// Run executes until ip reaches the end of the code or a handler halts.
// A second Run resumes from the current ip, so it returns immediately on a
// halted VM; use Reset to start over.
func (m *VM) Run() error {
	if m.released {
		return ErrReleased
	}
	if m.dispatching {
		return ErrReentrant
	}
	for !m.state.Done() {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunN executes at most n instructions and returns how many were dispatched.
// Fewer than n means the VM halted or a step failed.
func (m *VM) RunN(n uint64) (uint64, error) {
	if m.released {
		return 0, ErrReleased
	}
	if m.dispatching {
		return 0, ErrReentrant
	}
	var executed uint64
	for executed < n && !m.state.Done() {
		if err := m.Step(); err != nil {
			return executed, err
		}
		executed++
	}
	return executed, nil
}

// Halt stops the run loop after the current handler returns.
func (m *VM) Halt() {
	m.live()
	m.state.Halted = true
}

func (m *VM) Halted() bool {
	m.live()
	return m.state.Done()
}

// Reset rewinds ip to 0 and clears the halt flag. Registers, memory and
// installed handlers are kept.
func (m *VM) Reset() {
	m.live()
	m.state.IP = 0
	m.state.Halted = false
}

// Release drops the code, memory, stack, registers and handlers. The VM must not be
// used afterwards: Run and Step return ErrReleased, accessors panic with it.
func (m *VM) Release() error {
	if m.released {
		return ErrReleased
	}
	m.state.Code = nil
	m.state.Memory = nil
	m.state.Stack = nil
	m.state.Registers.Clear()
	m.opcodes = OpcodeTable{}
	m.released = true
	return nil
}

func (m *VM) IP() uint32 {
	m.live()
	return m.state.IP
}

func (m *VM) Code() []byte {
	m.live()
	return m.state.Code
}

// Advance moves ip forward by the width of the current instruction.
func (m *VM) Advance(n uint32) {
	m.live()
	if n > math.MaxUint32-m.state.IP {
		panic(fmt.Errorf("%w: %d + %d", ErrIPOverflow, m.state.IP, n))
	}
	m.state.IP += n
}

// Jump sets ip. Any target at or past the end of the code halts the VM.
func (m *VM) Jump(ip uint32) {
	m.live()
	m.state.IP = ip
}

// Operand reads the code byte at ip+offset, for decoding instruction arguments.
func (m *VM) Operand(offset uint32) byte {
	m.live()
	at := uint64(m.state.IP) + uint64(offset)
	if at >= uint64(len(m.state.Code)) {
		panic(fmt.Errorf("%w: ip %d offset %d, code size %d", ErrOperandRange, m.state.IP, offset, len(m.state.Code)))
	}
	return m.state.Code[at]
}

// Push puts v on the integer stack. A full stack panics with ErrStackOverflow.
func (m *VM) Push(v uint32) {
	m.live()
	if len(m.state.Stack) >= StackSize {
		panic(fmt.Errorf("%w: %d entries", ErrStackOverflow, StackSize))
	}
	m.state.Stack = append(m.state.Stack, v)
}

// Pop removes and returns the top of the stack. An empty stack panics with
// ErrStackUnderflow.
func (m *VM) Pop() uint32 {
	m.live()
	sp := len(m.state.Stack)
	if sp == 0 {
		panic(ErrStackUnderflow)
	}
	v := m.state.Stack[sp-1]
	m.state.Stack = m.state.Stack[:sp-1]
	return v
}

// SP is the number of values on the stack.
func (m *VM) SP() int {
	m.live()
	return len(m.state.Stack)
}

func (m *VM) RegisterKind(i int) Kind {
	m.live()
	return m.state.Registers.Kind(i)
}

// GetInt returns integer register i. If it holds a string the error handler
// is called and 0 is returned.
func (m *VM) GetInt(i int) uint32 {
	m.live()
	v, ok := m.state.Registers.Integer(i)
	if !ok {
		m.ReportError(fmt.Sprintf("register #%d holds a %s, not an integer", i, m.state.Registers.Kind(i)))
		return 0
	}
	return v
}

// GetString returns string register i. If it holds an integer the error
// handler is called and "" is returned.
func (m *VM) GetString(i int) string {
	m.live()
	v, ok := m.state.Registers.Text(i)
	if !ok {
		m.ReportError(fmt.Sprintf("register #%d holds a %s, not a string", i, m.state.Registers.Kind(i)))
		return ""
	}
	return v
}

func (m *VM) SetInt(i int, v uint32) {
	m.live()
	m.state.Registers.SetInteger(i, v)
}

func (m *VM) SetString(i int, s string) {
	m.live()
	m.state.Registers.SetString(i, s)
}
