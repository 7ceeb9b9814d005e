package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/simplevm/simplevm/svmgo/cmd"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "svmgo"
	app.Usage = "Embeddable bytecode VM tool"
	app.Description = "Load raw bytecode into VM states, run them with the host syscall bound, and inspect the results"
	app.Commands = []*cli.Command{
		cmd.LoadRawCommand,
		cmd.RunCommand,
		cmd.WitnessCommand,
		cmd.DumpCommand,
	}
	return app
}

func main() {
	// the run loop polls ctx, so an interrupt stops a VM stuck on a handler
	// that never advances ip
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			_, _ = fmt.Fprintln(os.Stderr, "command interrupted")
			os.Exit(130)
		}
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
