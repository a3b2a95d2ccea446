package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"StockSignals/internal/portfolio"
	"StockSignals/internal/registry"
	"StockSignals/internal/scheduler"
	"StockSignals/internal/strategy"

	"github.com/google/subcommands"
)

type scanCmd struct {
	configFlag
	symbols string
	all     bool
}

func (*scanCmd) Name() string     { return "scan" }
func (*scanCmd) Synopsis() string { return "runs one signal pass and prints the result" }
func (*scanCmd) Usage() string {
	return `scan [-config <file>] [-symbols AAPL,MSFT] [-all]

Fetches every symbol once, scores it and prints the signals strongest first.
Neutral signals are hidden unless -all is given.
`
}
func (c *scanCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.StringVar(&c.symbols, "symbols", "", "comma-separated symbols, overriding the configured universe")
	f.BoolVar(&c.all, "all", false, "include NEUTRAL signals")
}

func (c *scanCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.symbols != "" {
		cfg.Symbols.List = strings.Split(c.symbols, ",")
	}
	symbols, err := newUniverse(cfg).Symbols()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	loc, _ := cfg.Location()

	signals := registry.New(0)
	sched := scheduler.NewScheduler(ctx, schedulerOptions(cfg), newFetcher(cfg), symbols, signals, portfolio.NewLedger())
	defer sched.Stop()
	rep := sched.RunSignalPass(ctx)

	out := signals.All()
	registry.SortByStrength(out)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIGNAL\tSYMBOL\tPRICE\tVOLUME\tRSI\tMACD\tBOLLINGER\tTIME")
	for _, s := range out {
		if s.Classification.Strength() == 0 && !c.all {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.0f\t%s\t%s\t%s\t%s\n",
			s.Classification, s.Symbol, s.Price, s.Volume,
			s.Suggestion(strategy.FactorRSI), s.Suggestion(strategy.FactorMACD), s.Suggestion(strategy.FactorBollinger),
			s.Time.In(loc).Format("2006-01-02 15:04:05"))
	}
	w.Flush()
	fmt.Println(rep)

	if rep.Failed > 0 && rep.Appended == 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
