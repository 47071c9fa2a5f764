package cli

import (
	"context"

	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/walletregistry"

	"github.com/urfave/cli/v3"
)

type accountView struct {
	UID       string `json:"uid"`
	WalletUID string `json:"wallet_uid"`
	Currency  string `json:"currency"`
}

func newAccountView(a operation.Account) accountView {
	return accountView{UID: a.UID, WalletUID: a.WalletUID, Currency: a.Currency}
}

// registerAccountCommand registers an account and prints it.
//
// Usage example:
//
//	walletsync register --wallet my-wallet --currency bitcoin
func registerAccountCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "register",
		Description: "Register an account of a wallet on a currency.",
		Usage:       "Registers an account. A uid is generated when --account is omitted.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "account",
				Usage: "Account uid",
			},
			&cli.StringFlag{
				Name:     "wallet",
				Usage:    "Wallet uid the account belongs to",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "currency",
				Usage:    "Currency of the account (e.g., bitcoin, tezos)",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			account, err := wr.RegisterAccount(ctx, c.String("account"), c.String("wallet"), c.String("currency"))
			if err != nil {
				return err
			}

			return printJSON(c, newAccountView(account))
		},
	}
}

// listAccountsCommand prints the registered accounts, one per line.
//
// Usage example:
//
//	walletsync accounts --currency tezos
func listAccountsCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "accounts",
		Description: "List the registered accounts.",
		Usage:       "Lists every registered account, or those of --currency.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "currency",
				Usage: "Only list the accounts of this currency",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			accounts, err := wr.ListAccounts(ctx, c.String("currency"))
			if err != nil {
				return err
			}

			for _, account := range accounts {
				if err := printJSON(c, newAccountView(account)); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// startWatchingCommand adds addresses to the keychain of an account.
//
// Usage example:
//
//	walletsync watch --account 0190a... --address bc1q... --address bc1p...
func startWatchingCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "watch",
		Description: "Add addresses to the keychain of an account.",
		Usage:       "Starts watching addresses. Must provide the account and at least one address.",
		Flags:       keychainFlags("Address to start watching"),
		Action: func(ctx context.Context, c *cli.Command) error {
			return wr.StartWatching(ctx, c.String("account"), c.StringSlice("address")...)
		},
	}
}

// stopWatchingCommand removes addresses from the keychain of an account.
//
// Usage example:
//
//	walletsync unwatch --account 0190a... --address bc1q...
func stopWatchingCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "unwatch",
		Description: "Remove addresses from the keychain of an account.",
		Usage:       "Stops watching addresses. Operations already synchronized are kept.",
		Flags:       keychainFlags("Address to stop watching"),
		Action: func(ctx context.Context, c *cli.Command) error {
			return wr.StopWatching(ctx, c.String("account"), c.StringSlice("address")...)
		},
	}
}

func keychainFlags(addressUsage string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "account",
			Usage:    "Account uid",
			Required: true,
		},
		&cli.StringSliceFlag{
			Name:     "address",
			Usage:    addressUsage + ", repeatable",
			Required: true,
		},
	}
}
