package cmd

import (
	"fmt"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
)

type WitnessOutput struct {
	Witness   hexutil.Bytes `json:"witness"`
	StateHash common.Hash   `json:"stateHash"`
}

func Witness(ctx *cli.Context) error {
	input := ctx.Path(WitnessInputFlag.Name)
	output := ctx.Path(WitnessOutputFlag.Name)
	state, err := LoadState(input)
	if err != nil {
		return fmt.Errorf("invalid input state (%v): %w", input, err)
	}
	witness := state.EncodeWitness()
	stateHash, err := witness.StateHash()
	if err != nil {
		return fmt.Errorf("failed to compute witness hash: %w", err)
	}
	witnessOutput := &WitnessOutput{
		Witness:   hexutil.Bytes(witness),
		StateHash: stateHash,
	}
	if err := jsonutil.WriteJSON(output, witnessOutput, OutFilePerm); err != nil {
		return fmt.Errorf("failed to write witness output %w", err)
	}
	_, _ = fmt.Fprintln(ctx.App.Writer, stateHash.Hex())
	return nil
}

var WitnessCommand = &cli.Command{
	Name:        "witness",
	Usage:       "Convert a VM state into a binary witness",
	Description: "Convert a VM state into a binary witness. The state hash is written to stdout",
	Action:      Witness,
	Flags: []cli.Flag{
		WitnessInputFlag,
		WitnessOutputFlag,
	},
}
