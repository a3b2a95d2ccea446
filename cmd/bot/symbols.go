package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type symbolsCmd struct {
	configFlag
}

func (*symbolsCmd) Name() string     { return "symbols" }
func (*symbolsCmd) Synopsis() string { return "prints the configured symbol universe" }
func (*symbolsCmd) Usage() string {
	return `symbols [-config <file>]

Lists the symbols the signal loop walks, one per line.
`
}
func (c *symbolsCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *symbolsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	symbols, err := newUniverse(cfg).Symbols()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, s := range symbols {
		fmt.Println(s)
	}
	return subcommands.ExitSuccess
}
