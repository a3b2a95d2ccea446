package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"StockSignals/internal/collector"
	"StockSignals/internal/config"
	"StockSignals/internal/logger"
	"StockSignals/internal/recorder"
	"StockSignals/internal/scheduler"
)

// configFlag is shared by every subcommand.
type configFlag struct {
	path string
}

func (c *configFlag) register(f *flag.FlagSet) {
	def := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	f.StringVar(&c.path, "config", def, "path to the YAML config file")
}

// load reads and validates the config and installs the logger.
func (c *configFlag) load() (*config.Config, error) {
	cfg, err := config.Load(c.path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	if _, err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "vstrader":
		return collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Price: 100}
	default:
		return collector.NewYahooFetcher(cfg.Proxy)
	}
}

func newUniverse(cfg *config.Config) collector.Universe {
	if len(cfg.Symbols.List) > 0 {
		return collector.StaticUniverse(cfg.Symbols.List)
	}
	return collector.DirUniverse{Dir: cfg.Symbols.Dir}
}

// openRecorder falls back to a no-op journal when SQLite cannot be opened.
func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		slog.Warn("init sqlite recorder failed, using noop", "err", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func schedulerOptions(cfg *config.Config) scheduler.Options {
	return scheduler.Options{
		SignalInterval: cfg.Schedule.SignalInterval,
		PriceInterval:  cfg.Schedule.PriceInterval,
		FetchTimeout:   cfg.Schedule.FetchTimeout,
		Lookback:       cfg.DataSource.Lookback,
		Granularity:    cfg.DataSource.Granularity,
		VolumeFloor:    cfg.Schedule.VolumeFloor,
		Params:         cfg.Indicators,
		MaxAge:         cfg.Registry.MaxAge,
		SweepInterval:  cfg.Registry.SweepInterval,
	}
}
