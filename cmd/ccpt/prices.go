package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/michaelcoll/card-collection-price-tracker/internal/app"
)

type pricesCmd struct{}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "download and store today's Cardmarket price guide" }
func (*pricesCmd) Usage() string {
	return `ccpt prices

  Fetches the Cardmarket price guide and stores it under the day it was
  published. Running it again the same day replaces that day's prices.
`
}

func (*pricesCmd) SetFlags(*flag.FlagSet) {}

func (*pricesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		result, err := a.Prices.ImportCurrentPrices(ctx)
		if err != nil {
			return err
		}
		return printJSON(result)
	})
}

type resolveIDsCmd struct{}

func (*resolveIDsCmd) Name() string { return "resolve-ids" }
func (*resolveIDsCmd) Synopsis() string {
	return "look up the Cardmarket product of cards that have none"
}
func (*resolveIDsCmd) Usage() string {
	return `ccpt resolve-ids
`
}

func (*resolveIDsCmd) SetFlags(*flag.FlagSet) {}

func (*resolveIDsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		result, err := a.ProductIDs.UpdateMissing(ctx)
		if err != nil {
			return err
		}
		return printJSON(result)
	})
}
