package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/walletsync/internal/syncd"

	"github.com/urfave/cli/v3"
)

// startDaemonCommand returns a CLI command that keeps every registered
// account synchronized until the process is interrupted.
//
// Usage example:
//
//	walletsync start
func startDaemonCommand(daemon syncd.Service) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the synchronization daemon for every registered account.",
		Usage:       "Runs until Ctrl+C or a termination signal, then waits for the running synchronizations.",
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := daemon.Start(ctx); err != nil {
				return err
			}
			defer daemon.Close()

			<-ctx.Done()
			return nil
		},
	}
}
