package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/michaelcoll/card-collection-price-tracker/internal/app"
	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

type valuateCmd struct {
	dryRun bool
}

func (*valuateCmd) Name() string     { return "valuate" }
func (*valuateCmd) Synopsis() string { return "write the missing valuation snapshots" }
func (*valuateCmd) Usage() string {
	return `ccpt valuate [-n]

  Values every user collection for every stored price date that has no
  snapshot yet. With -n, only lists the pending (date, user) pairs.
`
}

func (c *valuateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "n", false, "List pending pairs without writing.")
}

func (c *valuateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		if c.dryRun {
			keys, err := a.Valuations.PendingKeys(ctx)
			if err != nil {
				return err
			}
			return printJSON(keys)
		}
		result, err := a.Valuations.Run(ctx)
		if err != nil {
			return err
		}
		return printJSON(result)
	})
}

type historyCmd struct {
	user string
	from string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show the valuation snapshots of a user" }
func (*historyCmd) Usage() string {
	return `ccpt history -user <user> [-from YYYY-MM-DD]
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "Owner of the collection.")
	f.StringVar(&c.from, "from", "", "First date to show.")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		return subcommands.ExitUsageError
	}
	var from models.Date
	if c.from != "" {
		d, err := models.ParseDate(c.from)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
			return subcommands.ExitUsageError
		}
		from = d
	}

	return withApp(ctx, func(a *app.App) error {
		snapshots, err := a.Valuations.History(ctx, models.UserID(c.user), from)
		if err != nil {
			return err
		}
		return printJSON(snapshots)
	})
}
