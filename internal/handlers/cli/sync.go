package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/walletregistry"

	"github.com/urfave/cli/v3"
)

// ErrNoSynchronizer is returned when no explorer is configured for the
// currency of an account.
var ErrNoSynchronizer = errors.New("no synchronizer for currency")

// ErrEventsUnavailable is returned by the events command when event
// publishing is not configured.
var ErrEventsUnavailable = errors.New("event publishing is not configured")

func synchronizerOf(ctx context.Context, wr walletregistry.Service, synchronizers map[string]Synchronizer, uid string) (Synchronizer, operation.Account, error) {
	account, err := wr.GetAccount(ctx, uid)
	if err != nil {
		return nil, operation.Account{}, err
	}

	s, ok := synchronizers[account.Currency]
	if !ok {
		return nil, operation.Account{}, fmt.Errorf("%w %q", ErrNoSynchronizer, account.Currency)
	}

	return s, account, nil
}

// syncAccountCommand synchronizes one account and prints its events until
// the run ends.
//
// Usage example:
//
//	walletsync sync --account 0190a...
func syncAccountCommand(wr walletregistry.Service, synchronizers map[string]Synchronizer) *cli.Command {
	return &cli.Command{
		Name:        "sync",
		Description: "Synchronize one account now.",
		Usage:       "Runs one synchronization and prints its events. Fails when the run fails.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "account",
				Usage:    "Account uid",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			s, account, err := synchronizerOf(ctx, wr, synchronizers, c.String("account"))
			if err != nil {
				return err
			}

			run, err := s.Synchronize(ctx, account)
			if err != nil {
				return err
			}

			for event := range run.Events(ctx) {
				if err := printJSON(c, event); err != nil {
					return err
				}
			}

			_, err = run.Wait(ctx)
			return err
		},
	}
}

// eraseAccountDataCommand deletes the operations of an account from a date
// on and rewinds its synchronization.
//
// Usage example:
//
//	walletsync erase --account 0190a... --since 2024-01-31
func eraseAccountDataCommand(wr walletregistry.Service, synchronizers map[string]Synchronizer) *cli.Command {
	return &cli.Command{
		Name:        "erase",
		Description: "Erase the operations of an account dated at or after a date.",
		Usage:       "Deletes operations and rewinds the account so the next sync fetches them again.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "account",
				Usage:    "Account uid",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "since",
				Usage:    "Date (2006-01-02) or RFC 3339 timestamp",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			since, err := parseDate(c.String("since"))
			if err != nil {
				return err
			}

			s, account, err := synchronizerOf(ctx, wr, synchronizers, c.String("account"))
			if err != nil {
				return err
			}

			return s.EraseDataSince(ctx, account, since)
		},
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected 2006-01-02 or RFC 3339", s)
	}

	return t, nil
}

type blockView struct {
	Hash   string    `json:"hash"`
	Height uint64    `json:"height"`
	Time   time.Time `json:"time"`
}

type operationView struct {
	UID        string            `json:"uid"`
	Type       string            `json:"type"`
	Amount     *string           `json:"amount"`
	Fees       string            `json:"fees"`
	Senders    []string          `json:"senders"`
	Recipients []string          `json:"recipients"`
	Date       time.Time         `json:"date"`
	Block      *blockView        `json:"block,omitempty"`
	TxHash     string            `json:"tx_hash"`
	Success    bool              `json:"success"`
	Trust      string            `json:"trust"`
	Payload    map[string]string `json:"payload,omitempty"`
}

func newOperationView(op operation.Operation) operationView {
	v := operationView{
		UID:        op.UID,
		Type:       string(op.Type),
		Fees:       "0",
		Senders:    op.Senders,
		Recipients: op.Recipients,
		Date:       op.Date,
		TxHash:     op.TxHash,
		Success:    op.Success,
		Trust:      string(op.Trust),
		Payload:    op.Payload,
	}

	if op.Amount != nil {
		amount := op.Amount.String()
		v.Amount = &amount
	}

	if op.Fees != nil {
		v.Fees = op.Fees.String()
	}

	if op.Block != nil {
		v.Block = &blockView{Hash: op.Block.Hash, Height: op.Block.Height, Time: op.Block.Time}
	}

	return v
}

// listOperationsCommand prints the operations of an account, newest first.
//
// Usage example:
//
//	walletsync operations --account 0190a... --limit 20
func listOperationsCommand(operations OperationLister) *cli.Command {
	return &cli.Command{
		Name:        "operations",
		Description: "List the synchronized operations of an account.",
		Usage:       "Prints operations newest first, one JSON object per line.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "account",
				Usage:    "Account uid",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of operations, 0 for all",
				Value: 50,
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Number of operations to skip",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			ops, err := operations.ListOperations(ctx, c.String("account"), int(c.Int("limit")), int(c.Int("offset")))
			if err != nil {
				return err
			}

			for _, op := range ops {
				if err := printJSON(c, newOperationView(op)); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// tailEventsCommand prints the events published by every synchronizer
// until interrupted.
//
// Usage example:
//
//	walletsync events
func tailEventsCommand(source EventSource) *cli.Command {
	return &cli.Command{
		Name:        "events",
		Description: "Follow the synchronization events published by every process.",
		Usage:       "Prints events as they are published. Requires Redis.",
		Action: func(ctx context.Context, c *cli.Command) error {
			if source == nil {
				return ErrEventsUnavailable
			}

			events, err := source.Events(ctx)
			if err != nil {
				return err
			}

			for event := range events {
				if err := printJSON(c, event); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
