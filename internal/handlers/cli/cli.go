package cli

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/eventbus"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/syncd"
	"github.com/gabapcia/walletsync/internal/walletregistry"

	"github.com/urfave/cli/v3"
)

// Synchronizer runs and rewinds the synchronization of the accounts of one
// currency.
type Synchronizer interface {
	Synchronize(ctx context.Context, account operation.Account) (*accountsync.Run, error)
	EraseDataSince(ctx context.Context, account operation.Account, since time.Time) error
}

// OperationLister pages through the operations of an account, newest first.
type OperationLister interface {
	ListOperations(ctx context.Context, accountUID string, limit, offset int) ([]operation.Operation, error)
}

// EventSource streams the events published by every synchronizer.
type EventSource interface {
	Events(ctx context.Context) (<-chan eventbus.Event, error)
}

// Dependencies are the services the commands act on. Events is optional.
type Dependencies struct {
	Registry      walletregistry.Service
	Daemon        syncd.Service
	Synchronizers map[string]Synchronizer
	Operations    OperationLister
	Events        EventSource
}

// Run initializes and executes the walletsync CLI application.
//
// Commands:
//
//   - `start`: runs the synchronization daemon.
//   - `register`, `accounts`: manage registered accounts.
//   - `watch`, `unwatch`: edit the keychain of an account.
//   - `sync`, `erase`: synchronize or rewind one account.
//   - `operations`, `events`: inspect the synchronized data.
func Run(ctx context.Context, deps Dependencies) error {
	return newApp(deps).Run(ctx, os.Args)
}

func newApp(deps Dependencies) *cli.Command {
	return &cli.Command{
		EnableShellCompletion: true,
		Name:                  "walletsync",
		Description:           "Synchronizes the operation history of wallet accounts from blockchain explorers.",
		Usage:                 "walletsync [command] [flags]",
		Commands: []*cli.Command{
			startDaemonCommand(deps.Daemon),
			registerAccountCommand(deps.Registry),
			listAccountsCommand(deps.Registry),
			startWatchingCommand(deps.Registry),
			stopWatchingCommand(deps.Registry),
			syncAccountCommand(deps.Registry, deps.Synchronizers),
			eraseAccountDataCommand(deps.Registry, deps.Synchronizers),
			listOperationsCommand(deps.Operations),
			tailEventsCommand(deps.Events),
		},
	}
}

// printJSON writes v as one JSON line on the command output.
func printJSON(c *cli.Command, v any) error {
	return json.NewEncoder(c.Root().Writer).Encode(v)
}
