// Command ccpt runs the collection tracker operations from the command line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"

	"github.com/michaelcoll/card-collection-price-tracker/internal/app"
	"github.com/michaelcoll/card-collection-price-tracker/internal/config"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&importCmd{}, "collection")
	commander.Register(&collectionCmd{}, "collection")

	commander.Register(&pricesCmd{}, "prices")
	commander.Register(&resolveIDsCmd{}, "prices")

	commander.Register(&valuateCmd{}, "valuations")
	commander.Register(&historyCmd{}, "valuations")

	commander.Register(&cardInfoCmd{}, "cards")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// withApp loads the configuration, opens the store and runs fn.
func withApp(ctx context.Context, fn func(*app.App) error) subcommands.ExitStatus {
	cfg := config.Load()
	cfg.SetupLogging()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(a); err != nil {
		log.Debugf("Command failed: %+v", err)
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
