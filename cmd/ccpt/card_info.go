package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/michaelcoll/card-collection-price-tracker/internal/app"
)

type cardInfoCmd struct {
	name string
}

func (*cardInfoCmd) Name() string     { return "card-info" }
func (*cardInfoCmd) Synopsis() string { return "show how many EDHREC decks play a card" }
func (*cardInfoCmd) Usage() string {
	return `ccpt card-info -name "<card name>"
`
}

func (c *cardInfoCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Card name, as printed.")
}

func (c *cardInfoCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "-name is required")
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app.App) error {
		info, err := a.CardInfo.CardInfo(ctx, c.name)
		if err != nil {
			return err
		}
		return printJSON(info)
	})
}
