package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, "stocksignals")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&runCmd{}, "")
	commander.Register(&scanCmd{}, "")
	commander.Register(&symbolsCmd{}, "")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
