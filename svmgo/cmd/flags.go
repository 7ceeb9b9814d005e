package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/simplevm/simplevm/svmgo/hostcall"
	"github.com/simplevm/simplevm/svmgo/vm"
)

// StepMatcher decides, per step, whether some action should be taken.
type StepMatcher func(state *vm.VMState) bool

// ParseStepMatcher accepts "never", "always", "=N" (exactly step N) and
// "%N" (every N steps).
func ParseStepMatcher(pattern string) (StepMatcher, error) {
	switch {
	case pattern == "" || pattern == "never":
		return func(*vm.VMState) bool { return false }, nil
	case pattern == "always":
		return func(*vm.VMState) bool { return true }, nil
	case strings.HasPrefix(pattern, "="):
		when, err := strconv.ParseUint(pattern[1:], 0, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse step number: %w", err)
		}
		return func(state *vm.VMState) bool { return state.Step == when }, nil
	case strings.HasPrefix(pattern, "%"):
		every, err := strconv.ParseUint(pattern[1:], 0, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse step interval: %w", err)
		}
		if every == 0 {
			return nil, fmt.Errorf("step interval must be non-zero")
		}
		return func(state *vm.VMState) bool { return state.Step%every == 0 }, nil
	default:
		return nil, fmt.Errorf("unrecognized step matcher: %q", pattern)
	}
}

// StepMatcherFlag is a cli.Generic holding a validated step pattern.
type StepMatcherFlag struct {
	repr    string
	matcher StepMatcher
}

func MustStepMatcherFlag(pattern string) *StepMatcherFlag {
	out := new(StepMatcherFlag)
	if err := out.Set(pattern); err != nil {
		panic(err)
	}
	return out
}

func (m *StepMatcherFlag) Set(value string) error {
	matcher, err := ParseStepMatcher(value)
	if err != nil {
		return err
	}
	m.repr = value
	m.matcher = matcher
	return nil
}

func (m *StepMatcherFlag) String() string {
	return m.repr
}

var (
	ConfigFlag = &cli.PathFlag{
		Name:      "config",
		Usage:     "TOML file with defaults for memory-size, syscall-opcode, log-level, stop-at and info-at. Flags take precedence.",
		TakesFile: true,
	}
	LogLevelFlag = &cli.StringFlag{
		Name:  "log.level",
		Usage: "Log level: trace, debug, info, warn, error or crit",
		Value: "info",
	}
	LoadRawPathFlag = &cli.PathFlag{
		Name:      "path",
		Usage:     "Path to raw bytecode file",
		TakesFile: true,
		Required:  true,
	}
	LoadRawOutFlag = &cli.PathFlag{
		Name:      "out",
		Usage:     "Output path for the initial VM state: JSON (optionally .gz) or .cbor",
		TakesFile: true,
		Value:     "state.json",
	}
	MemorySizeFlag = &cli.UintFlag{
		Name:  "memory-size",
		Usage: "Scratch memory size in bytes",
		Value: uint(defaultMemorySize),
	}
	RunInputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "Path of the input VM state",
		TakesFile: true,
		Value:     "state.json",
	}
	RunOutputFlag = &cli.PathFlag{
		Name:      "output",
		Usage:     "Path of the output VM state. Empty to skip, '-' for stdout",
		TakesFile: true,
		Value:     "out.json",
	}
	RunSnapshotAtFlag = &cli.GenericFlag{
		Name:  "snapshot-at",
		Usage: "Step pattern to write a state snapshot at: never, always, =123 or %123",
		Value: MustStepMatcherFlag("never"),
	}
	RunSnapshotFmtFlag = &cli.StringFlag{
		Name:  "snapshot-fmt",
		Usage: "Format of snapshot output paths, with %d for the step number. A .cbor suffix selects CBOR",
		Value: "state-%d.json",
	}
	RunStopAtFlag = &cli.GenericFlag{
		Name:  "stop-at",
		Usage: "Step pattern to stop at: never, always, =123 or %123",
		Value: MustStepMatcherFlag("never"),
	}
	RunInfoAtFlag = &cli.GenericFlag{
		Name:  "info-at",
		Usage: "Step pattern to log progress at: never, always, =123 or %123",
		Value: MustStepMatcherFlag(defaultInfoAt),
	}
	RunSyscallOpcodeFlag = &cli.UintFlag{
		Name:  "syscall-opcode",
		Usage: "Opcode byte bound to the host syscall",
		Value: uint(hostcall.SyscallOpcode),
	}
	RunPProfCPUFlag = &cli.BoolFlag{
		Name:  "pprof.cpu",
		Usage: "Enable CPU profiling, written to the working directory",
	}
	WitnessInputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "Path of the VM state to encode",
		TakesFile: true,
		Required:  true,
	}
	WitnessOutputFlag = &cli.PathFlag{
		Name:      "output",
		Usage:     "Path to write the witness JSON to. Empty to skip, '-' for stdout",
		TakesFile: true,
	}
)
