package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"

	"github.com/simplevm/simplevm/svmgo/hostcall"
	"github.com/simplevm/simplevm/svmgo/vm"
)

func Run(ctx *cli.Context) error {
	if ctx.Bool(RunPProfCPUFlag.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	stopAt, err := ParseStepMatcher(cfg.StopAt)
	if err != nil {
		return fmt.Errorf("invalid stop-at: %w", err)
	}
	infoAt, err := ParseStepMatcher(cfg.InfoAt)
	if err != nil {
		return fmt.Errorf("invalid info-at: %w", err)
	}
	snapshotAt, _ := ParseStepMatcher("never")
	if ctx.IsSet(RunSnapshotAtFlag.Name) {
		snapshotAt = ctx.Generic(RunSnapshotAtFlag.Name).(*StepMatcherFlag).matcher
	}
	snapshotFmt := ctx.String(RunSnapshotFmtFlag.Name)

	input := ctx.Path(RunInputFlag.Name)
	state, err := LoadState(input)
	if err != nil {
		return err
	}

	l := Logger(os.Stderr, lvl, "input", input)
	outLog := &LoggingWriter{Name: "program std-out", Log: l}
	errLog := &LoggingWriter{Name: "program std-err", Log: l}

	m, err := vm.NewFromState(state, vm.WithLogger(l), vm.WithStdout(outLog), vm.WithStderr(errLog))
	if err != nil {
		return err
	}
	hostcall.Install(m, cfg.SyscallOpcode)

	start := time.Now()
	startStep := state.Step

	for !m.Halted() {
		if state.Step%100 == 0 { // don't do the ctx err check (includes lock) too often
			if err := ctx.Context.Err(); err != nil {
				return err
			}
		}

		step := state.Step

		if infoAt(state) {
			delta := time.Since(start)
			l.Info("processing",
				"step", step,
				"ip", HexU32(state.IP),
				"opcode", HexU32(state.Opcode()),
				"ips", float64(step-startStep)/(float64(delta)/float64(time.Second)),
			)
		}

		if stopAt(state) {
			break
		}

		if snapshotAt(state) {
			if err := WriteState(fmt.Sprintf(snapshotFmt, step), state); err != nil {
				return fmt.Errorf("failed to write state snapshot: %w", err)
			}
		}

		if err := m.Step(); err != nil {
			return fmt.Errorf("failed at step %d (IP: %08x): %w", step, state.IP, err)
		}
	}

	l.Info("execution stopped", "step", state.Step, "ip", HexU32(state.IP), "sp", len(state.Stack), "halted", state.Done())

	if err := WriteState(ctx.Path(RunOutputFlag.Name), state); err != nil {
		return fmt.Errorf("failed to write state output: %w", err)
	}
	return m.Release()
}

var RunCommand = &cli.Command{
	Name:        "run",
	Usage:       "Run a VM state with the host syscall installed",
	Description: "Run a VM state until it halts, with the demo host syscall bound. See flags to match when to snapshot, log progress, or stop early.",
	Action:      Run,
	Flags: []cli.Flag{
		RunInputFlag,
		RunOutputFlag,
		RunSnapshotAtFlag,
		RunSnapshotFmtFlag,
		RunStopAtFlag,
		RunInfoAtFlag,
		RunSyscallOpcodeFlag,
		LogLevelFlag,
		ConfigFlag,
		RunPProfCPUFlag,
	},
}
