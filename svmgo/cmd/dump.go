package cmd

import (
	"github.com/urfave/cli/v2"
)

func Dump(ctx *cli.Context) error {
	state, err := LoadState(ctx.Path(RunInputFlag.Name))
	if err != nil {
		return err
	}
	return state.DumpRegisters(ctx.App.Writer)
}

var DumpCommand = &cli.Command{
	Name:   "dump",
	Usage:  "Print the registers of a VM state",
	Action: Dump,
	Flags: []cli.Flag{
		RunInputFlag,
	},
}
