package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/michaelcoll/card-collection-price-tracker/internal/app"
	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

type importCmd struct {
	user string
	file string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace a user's collection with a ManaBox CSV export" }
func (*importCmd) Usage() string {
	return `ccpt import -user <user> [-file <export.csv>]

  Parses a ManaBox collection export and replaces everything the user owned
  with its content. Reads standard input when -file is omitted. Nothing is
  written when a single line is invalid.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "Owner of the collection.")
	f.StringVar(&c.file, "file", "", "Path to the CSV export (default: stdin).")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		return subcommands.ExitUsageError
	}

	var in io.Reader = os.Stdin
	if c.file != "" {
		file, err := os.Open(c.file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		in = file
	}
	text, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	return withApp(ctx, func(a *app.App) error {
		result, err := a.Imports.ImportCollection(ctx, models.UserID(c.user), string(text))
		if err != nil {
			return err
		}
		return printJSON(result)
	})
}

type collectionCmd struct {
	user string
}

func (*collectionCmd) Name() string     { return "collection" }
func (*collectionCmd) Synopsis() string { return "list the cards a user owns" }
func (*collectionCmd) Usage() string {
	return `ccpt collection -user <user>
`
}

func (c *collectionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "Owner of the collection.")
}

func (c *collectionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app.App) error {
		cards, err := a.Imports.Collection(ctx, models.UserID(c.user))
		if err != nil {
			return err
		}
		return printJSON(cards)
	})
}
