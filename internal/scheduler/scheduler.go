package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"StockSignals/internal/calculator"
	"StockSignals/internal/collector"
	"StockSignals/internal/metrics"
	"StockSignals/internal/model"
	"StockSignals/internal/portfolio"
	"StockSignals/internal/recorder"
	"StockSignals/internal/registry"
	"StockSignals/internal/strategy"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Skip reasons reported in metrics and pass reports.
const (
	SkipInsufficientHistory = "insufficient_history"
	SkipBelowVolumeFloor    = "below_volume_floor"
	SkipNoData              = "no_data"
)

// Alerter is notified of actionable strong signals: STRONG BUY for a symbol
// not held, STRONG SELL for one that is.
type Alerter interface {
	Alert(ctx context.Context, sig model.Signal, owned bool) error
}

// Options tune both loops.
type Options struct {
	SignalInterval time.Duration
	PriceInterval  time.Duration
	FetchTimeout   time.Duration
	Lookback       string
	Granularity    string
	VolumeFloor    float64
	Params         calculator.Params

	// MaxAge prunes registry signals older than this on every SweepInterval.
	// Zero disables the sweep.
	MaxAge        time.Duration
	SweepInterval time.Duration
}

// DefaultOptions mirrors the one-minute cadence of the desk.
func DefaultOptions() Options {
	return Options{
		SignalInterval: 60 * time.Second,
		PriceInterval:  60 * time.Second,
		FetchTimeout:   15 * time.Second,
		Lookback:       "1d",
		Granularity:    "1m",
		Params:         calculator.DefaultParams(),
		SweepInterval:  10 * time.Minute,
	}
}

// PassReport summarises one pass of either loop.
type PassReport struct {
	Loop      string
	Symbols   int
	Appended  int
	Updated   int
	Skipped   map[string]int
	Failed    int
	Alerts    int
	Cancelled bool
	Duration  time.Duration
}

func (r PassReport) String() string {
	return fmt.Sprintf("%s pass: symbols=%d appended=%d updated=%d skipped=%v failed=%d alerts=%d cancelled=%v in %s",
		r.Loop, r.Symbols, r.Appended, r.Updated, r.Skipped, r.Failed, r.Alerts, r.Cancelled, r.Duration.Round(time.Millisecond))
}

// Scheduler runs the signal loop and the price-refresh loop on cron.
// Recorder, Alerter, Metrics and Health are optional.
type Scheduler struct {
	Cron     *cron.Cron
	Fetcher  collector.Fetcher
	Symbols  []string
	Registry *registry.Registry
	Ledger   *portfolio.Ledger
	Recorder recorder.Recorder
	Alerter  Alerter
	Metrics  *metrics.Metrics
	Health   *metrics.Health
	Opts     Options

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewScheduler creates a Scheduler whose loops stop when ctx is cancelled
// or Stop is called.
func NewScheduler(ctx context.Context, opts Options, f collector.Fetcher, symbols []string, reg *registry.Registry, ledger *portfolio.Ledger) *Scheduler {
	logger := cronLogger{slog.Default().With("component", "cron")}
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		Cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Fetcher:  f,
		Symbols:  symbols,
		Registry: reg,
		Ledger:   ledger,
		Recorder: recorder.NewNoopRecorder(),
		Opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// RegisterAll registers the signal, price and retention jobs.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc(every(s.Opts.SignalInterval), func() { s.RunSignalPass(s.ctx) }); err != nil {
		return fmt.Errorf("register signal task: %w", err)
	}
	if _, err := s.Cron.AddFunc(every(s.Opts.PriceInterval), func() { s.RunPriceRefresh(s.ctx) }); err != nil {
		return fmt.Errorf("register price task: %w", err)
	}
	if s.Opts.MaxAge > 0 {
		if _, err := s.Cron.AddFunc(every(s.Opts.SweepInterval), s.sweep); err != nil {
			return fmt.Errorf("register retention sweep: %w", err)
		}
	}
	return nil
}

func every(d time.Duration) string {
	return "@every " + d.String()
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	slog.Info("scheduler started", "symbols", len(s.Symbols),
		"signal_interval", s.Opts.SignalInterval, "price_interval", s.Opts.PriceInterval)
}

// Stop cancels in-flight passes and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.Cron.Stop().Done()
		slog.Info("scheduler stopped")
	})
}

// RunSignalPass evaluates every symbol once. A failing symbol is logged and
// skipped; the rest of the pass continues.
func (s *Scheduler) RunSignalPass(ctx context.Context) PassReport {
	start := time.Now()
	rep := PassReport{Loop: metrics.LoopSignals, Skipped: make(map[string]int)}

	for _, symbol := range s.Symbols {
		if ctx.Err() != nil {
			rep.Cancelled = true
			break
		}
		rep.Symbols++
		sig, reason, err := s.evaluateSymbol(ctx, symbol)
		switch {
		case err != nil:
			rep.Failed++
			s.Metrics.FetchError(metrics.LoopSignals)
			slog.Warn("signal pass: symbol failed", "symbol", symbol, "err", err)
			continue
		case reason != "":
			rep.Skipped[reason]++
			s.Metrics.Skip(reason)
			slog.Debug("signal pass: symbol skipped", "symbol", symbol, "reason", reason)
			continue
		}

		owned := s.Ledger.IsOwned(symbol)
		if !owned && sig.Volume < s.Opts.VolumeFloor {
			rep.Skipped[SkipBelowVolumeFloor]++
			s.Metrics.Skip(SkipBelowVolumeFloor)
			continue
		}

		s.Registry.Append(sig)
		rep.Appended++
		s.Metrics.ObserveSignal(string(sig.Classification))
		if err := s.Recorder.RecordSignal(&sig); err != nil {
			slog.Error("record signal", "symbol", symbol, "err", err)
		}
		if s.alert(ctx, sig, owned) {
			rep.Alerts++
		}
	}

	s.Metrics.SetRegistrySize(s.Registry.Len())
	rep.Duration = time.Since(start)
	s.finish(rep)
	return rep
}

// evaluateSymbol fetches, computes and scores one symbol. A non-empty reason
// means the symbol was skipped without error.
func (s *Scheduler) evaluateSymbol(ctx context.Context, symbol string) (sig model.Signal, reason string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic evaluating %s: %v", symbol, r)
		}
	}()

	fctx, cancel := s.fetchContext(ctx)
	bars, err := s.Fetcher.FetchSeries(fctx, symbol, s.Opts.Lookback, s.Opts.Granularity)
	cancel()
	if errors.Is(err, collector.ErrNoData) {
		return sig, SkipNoData, nil
	}
	if err != nil {
		return sig, "", fmt.Errorf("fetch series: %w", err)
	}

	snap, err := calculator.Latest(bars, s.Opts.Params)
	if errors.Is(err, calculator.ErrInsufficientHistory) || errors.Is(err, calculator.ErrNoBars) {
		return sig, SkipInsufficientHistory, nil
	}
	if err != nil {
		return sig, "", fmt.Errorf("indicators: %w", err)
	}
	return strategy.Evaluate(symbol, bars[len(bars)-1], snap), "", nil
}

func (s *Scheduler) alert(ctx context.Context, sig model.Signal, owned bool) bool {
	if s.Alerter == nil {
		return false
	}
	actionable := (sig.Classification == model.StrongBuy && !owned) ||
		(sig.Classification == model.StrongSell && owned)
	if !actionable {
		return false
	}
	err := s.Alerter.Alert(ctx, sig, owned)
	s.Metrics.Alert(err)
	if err != nil {
		slog.Error("send alert", "symbol", sig.Symbol, "err", err)
		return false
	}
	return true
}

// RunPriceRefresh updates the current price of every held symbol.
func (s *Scheduler) RunPriceRefresh(ctx context.Context) PassReport {
	start := time.Now()
	rep := PassReport{Loop: metrics.LoopPrices, Skipped: make(map[string]int)}

	for _, symbol := range s.Ledger.Owned() {
		if ctx.Err() != nil {
			rep.Cancelled = true
			break
		}
		rep.Symbols++
		price, err := s.latestPrice(ctx, symbol)
		if err != nil {
			rep.Failed++
			s.Metrics.FetchError(metrics.LoopPrices)
			slog.Warn("price refresh: symbol failed", "symbol", symbol, "err", err)
			continue
		}
		if err := s.Ledger.UpdatePrice(symbol, decimal.NewFromFloat(price)); err != nil {
			if errors.Is(err, portfolio.ErrNotOwned) {
				continue // sold while fetching
			}
			rep.Failed++
			slog.Warn("price refresh: update failed", "symbol", symbol, "err", err)
			continue
		}
		rep.Updated++
	}

	s.Metrics.SetLedger(len(s.Ledger.Owned()), s.Ledger.RealizedProfit().InexactFloat64())
	rep.Duration = time.Since(start)
	s.finish(rep)
	return rep
}

func (s *Scheduler) latestPrice(ctx context.Context, symbol string) (price float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic fetching %s: %v", symbol, r)
		}
	}()
	fctx, cancel := s.fetchContext(ctx)
	defer cancel()
	price, err = s.Fetcher.FetchLatestPrice(fctx, symbol)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, fmt.Errorf("invalid price %v: %w", price, collector.ErrNoData)
	}
	return price, nil
}

func (s *Scheduler) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Opts.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Opts.FetchTimeout)
}

func (s *Scheduler) sweep() {
	n := s.Registry.Prune(time.Now().Add(-s.Opts.MaxAge))
	s.Metrics.SetRegistrySize(s.Registry.Len())
	if n > 0 {
		slog.Info("registry sweep", "pruned", n, "remaining", s.Registry.Len())
	}
}

func (s *Scheduler) finish(rep PassReport) {
	s.Metrics.ObservePass(rep.Loop, rep.Duration)
	if !rep.Cancelled {
		s.Health.MarkPass(rep.Loop, time.Now())
	}
	slog.Info("pass complete", "loop", rep.Loop, "symbols", rep.Symbols,
		"appended", rep.Appended, "updated", rep.Updated, "failed", rep.Failed,
		"cancelled", rep.Cancelled, "duration", rep.Duration)
}

// cronLogger routes robfig/cron output into slog.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
