package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/simplevm/simplevm/svmgo/vm"
)

func LoadRaw(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	rawPath := ctx.Path(LoadRawPathFlag.Name)
	code, err := os.ReadFile(rawPath)
	if err != nil {
		return fmt.Errorf("failed to read bytecode file %q: %w", rawPath, err)
	}
	state, err := vm.NewVMState(code, cfg.MemorySize)
	if err != nil {
		return fmt.Errorf("failed to create VM state from %q: %w", rawPath, err)
	}
	return WriteState(ctx.Path(LoadRawOutFlag.Name), state)
}

var LoadRawCommand = &cli.Command{
	Name:        "load-raw",
	Usage:       "Load a raw bytecode file into a VM state",
	Description: "Load a raw bytecode file into a fresh VM state with zeroed registers and scratch memory",
	Action:      LoadRaw,
	Flags: []cli.Flag{
		LoadRawPathFlag,
		LoadRawOutFlag,
		MemorySizeFlag,
		ConfigFlag,
	},
}
