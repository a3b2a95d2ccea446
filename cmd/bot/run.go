package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockSignals/internal/api"
	"StockSignals/internal/desk"
	"StockSignals/internal/metrics"
	"StockSignals/internal/notifier"
	"StockSignals/internal/portfolio"
	"StockSignals/internal/registry"
	"StockSignals/internal/scheduler"

	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

type runCmd struct {
	configFlag
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "runs the signal engine, HTTP API and Telegram bot" }
func (*runCmd) Usage() string {
	return `run [-config <file>]

Streams signals for every symbol, refreshes prices of held symbols, serves the
HTTP API with /metrics and /healthz and, when configured, answers Telegram
commands. Stops on SIGINT or SIGTERM.
`
}
func (c *runCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	slog.Info("StockSignals starting")

	symbols, err := newUniverse(cfg).Symbols()
	if err != nil {
		slog.Error("load symbols", "err", err)
		return subcommands.ExitFailure
	}
	if len(symbols) == 0 {
		slog.Warn("symbol universe is empty")
	}
	loc, _ := cfg.Location()

	fetcher := newFetcher(cfg)
	slog.Info("data source", "name", fetcher.Name(), "symbols", len(symbols))

	rec := openRecorder(cfg)
	defer rec.Close()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promReg)
	health := metrics.NewHealth()

	signals := registry.New(cfg.RegistryCap())
	ledger := portfolio.NewLedger()
	d := desk.New(signals, ledger, rec, m)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, schedulerOptions(cfg), fetcher, symbols, signals, ledger)
	sched.Recorder = rec
	sched.Metrics = m
	sched.Health = health

	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sched.Alerter = &notifier.SignalAlerter{Notifier: tn, Loc: loc, MaxRetries: 3}
	} else {
		slog.Info("telegram not configured, alerts disabled")
	}

	if err := sched.RegisterAll(); err != nil {
		slog.Error("register cron tasks", "err", err)
		return subcommands.ExitFailure
	}
	sched.Start()

	staleAfter := 3 * max(cfg.Schedule.SignalInterval, cfg.Schedule.PriceInterval)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(api.NewHandler(d, health, loc, max(staleAfter, cfg.HTTP.StaleAfter)), promReg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		<-gctx.Done()
		sched.Stop()
		return nil
	})
	if tn != nil {
		cmds := notifier.NewCommands(d, loc)
		g.Go(func() error {
			tn.StartPolling(gctx, cmds.Handle)
			return nil
		})
	}
	if cfg.Schedule.RunOnStart {
		g.Go(func() error {
			slog.Info("RUN_ON_START enabled, running both loops now")
			sched.RunSignalPass(gctx)
			sched.RunPriceRefresh(gctx)
			return nil
		})
	}

	slog.Info("StockSignals is running. Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil {
		slog.Error("stopped with error", "err", err)
		return subcommands.ExitFailure
	}
	slog.Info("StockSignals stopped")
	return subcommands.ExitSuccess
}
