package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StockSignals/internal/collector"
	"StockSignals/internal/metrics"
	"StockSignals/internal/model"
	"StockSignals/internal/portfolio"
	"StockSignals/internal/registry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

type fakeAlerter struct {
	mu   sync.Mutex
	sent []model.Signal
	err  error
}

func (a *fakeAlerter) Alert(_ context.Context, sig model.Signal, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.sent = append(a.sent, sig)
	return nil
}

func newTestScheduler(t *testing.T, f collector.Fetcher, symbols ...string) *Scheduler {
	t.Helper()
	s := NewScheduler(context.Background(), DefaultOptions(), f, symbols, registry.New(0), portfolio.NewLedger())
	s.Metrics = metrics.New(prometheus.NewRegistry())
	s.Health = metrics.NewHealth()
	t.Cleanup(s.Stop)
	return s
}

func TestRunSignalPass_IsolatesFailures(t *testing.T) {
	f := &collector.MockFetcher{
		Price:  100,
		Errs:   map[string]error{"BAD": errors.New("upstream 500")},
		Panics: map[string]bool{"BOOM": true},
	}
	s := newTestScheduler(t, f, "A", "BAD", "BOOM", "B")

	rep := s.RunSignalPass(context.Background())
	if rep.Symbols != 4 || rep.Appended != 2 || rep.Failed != 2 {
		t.Fatalf("unexpected report %s", rep)
	}
	got := map[string]bool{}
	for _, sig := range s.Registry.All() {
		got[sig.Symbol] = true
		if !sig.Indicators.Complete() {
			t.Errorf("signal for %s has undefined indicators", sig.Symbol)
		}
	}
	if !got["A"] || !got["B"] {
		t.Errorf("expected signals for A and B, got %v", got)
	}
	if v := testutil.ToFloat64(s.Metrics.FetchErrors.WithLabelValues(metrics.LoopSignals)); v != 2 {
		t.Errorf("expected 2 fetch errors, got %v", v)
	}
}

func TestRunSignalPass_AppendsEveryCycle(t *testing.T) {
	s := newTestScheduler(t, &collector.MockFetcher{Price: 50}, "A")
	s.RunSignalPass(context.Background())
	s.RunSignalPass(context.Background())
	if s.Registry.Len() != 2 {
		t.Errorf("expected one signal per pass, got %d", s.Registry.Len())
	}
}

func TestRunSignalPass_Skips(t *testing.T) {
	f := &collector.MockFetcher{
		Price: 100,
		Series: map[string][]model.OHLCV{
			"SHORT": collector.GenerateBars(100, 10, time.Minute),
			"EMPTY": {},
		},
	}
	s := newTestScheduler(t, f, "SHORT", "EMPTY")

	rep := s.RunSignalPass(context.Background())
	if rep.Appended != 0 || rep.Failed != 0 {
		t.Fatalf("expected only skips, got %s", rep)
	}
	if rep.Skipped[SkipInsufficientHistory] != 1 || rep.Skipped[SkipNoData] != 1 {
		t.Errorf("unexpected skip counts %v", rep.Skipped)
	}
}

func TestRunSignalPass_VolumeFloorSparesOwned(t *testing.T) {
	s := newTestScheduler(t, &collector.MockFetcher{Price: 100}, "HELD", "OTHER")
	s.Opts.VolumeFloor = 2_000_000 // generated bars carry 1,000,000
	if err := s.Ledger.Buy("HELD", decimal.NewFromInt(100)); err != nil {
		t.Fatal(err)
	}

	rep := s.RunSignalPass(context.Background())
	if rep.Appended != 1 || rep.Skipped[SkipBelowVolumeFloor] != 1 {
		t.Fatalf("unexpected report %s", rep)
	}
	if sig := s.Registry.All()[0]; sig.Symbol != "HELD" {
		t.Errorf("expected the owned symbol to pass the floor, got %s", sig.Symbol)
	}
}

func TestRunSignalPass_Cancelled(t *testing.T) {
	s := newTestScheduler(t, &collector.MockFetcher{Price: 100}, "A", "B")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := s.RunSignalPass(ctx)
	if !rep.Cancelled || rep.Appended != 0 || rep.Symbols != 0 {
		t.Errorf("expected a cancelled empty pass, got %s", rep)
	}
}

func TestRunPriceRefresh(t *testing.T) {
	f := &collector.MockFetcher{
		Price:  1,
		Prices: map[string]float64{"ACME": 110},
		Errs:   map[string]error{"DOWN": errors.New("timeout")},
	}
	s := newTestScheduler(t, f)
	_ = s.Ledger.Buy("ACME", decimal.NewFromInt(95))
	_ = s.Ledger.Buy("DOWN", decimal.NewFromInt(10))

	rep := s.RunPriceRefresh(context.Background())
	if rep.Symbols != 2 || rep.Updated != 1 || rep.Failed != 1 {
		t.Fatalf("unexpected report %s", rep)
	}
	for _, e := range s.Ledger.Entries() {
		switch e.Symbol {
		case "ACME":
			if !e.CurrentPrice.Equal(decimal.NewFromInt(110)) {
				t.Errorf("expected ACME at 110, got %s", e.CurrentPrice)
			}
		case "DOWN":
			if !e.CurrentPrice.Equal(decimal.NewFromInt(10)) {
				t.Errorf("failed refresh must keep the old price, got %s", e.CurrentPrice)
			}
		}
	}
	sold, _ := s.Ledger.Sell("ACME")
	if !sold.Unrealized().Equal(decimal.NewFromInt(15)) {
		t.Errorf("expected 15 realized, got %s", sold.Unrealized())
	}
	// Only owned symbols are fetched.
	if f.Calls("OTHER") != 0 {
		t.Error("refresh must only fetch owned symbols")
	}
}

func TestRunPriceRefresh_RejectsBadPrice(t *testing.T) {
	f := &collector.MockFetcher{Prices: map[string]float64{"ZERO": 0}}
	s := newTestScheduler(t, f)
	_ = s.Ledger.Buy("ZERO", decimal.NewFromInt(5))

	rep := s.RunPriceRefresh(context.Background())
	if rep.Failed != 1 || rep.Updated != 0 {
		t.Errorf("expected the zero price rejected, got %s", rep)
	}
}

func TestAlertRules(t *testing.T) {
	a := &fakeAlerter{}
	s := newTestScheduler(t, &collector.MockFetcher{})
	s.Alerter = a
	ctx := context.Background()

	cases := []struct {
		class model.Classification
		owned bool
		want  bool
	}{
		{model.StrongBuy, false, true},
		{model.StrongBuy, true, false},
		{model.StrongSell, true, true},
		{model.StrongSell, false, false},
		{model.MediumBuy, false, false},
		{model.Neutral, true, false},
	}
	for _, tc := range cases {
		got := s.alert(ctx, model.Signal{Symbol: "X", Classification: tc.class}, tc.owned)
		if got != tc.want {
			t.Errorf("%s owned=%v: expected alert=%v, got %v", tc.class, tc.owned, tc.want, got)
		}
	}
	if len(a.sent) != 2 {
		t.Errorf("expected 2 alerts sent, got %d", len(a.sent))
	}

	a.err = errors.New("telegram down")
	if s.alert(ctx, model.Signal{Classification: model.StrongBuy}, false) {
		t.Error("failed alert must not count as sent")
	}
}

func TestSweepPrunesOldSignals(t *testing.T) {
	s := newTestScheduler(t, &collector.MockFetcher{})
	s.Opts.MaxAge = time.Hour
	s.Registry.Append(model.Signal{Symbol: "OLD", Time: time.Now().Add(-2 * time.Hour)})
	s.Registry.Append(model.Signal{Symbol: "NEW", Time: time.Now()})

	s.sweep()
	all := s.Registry.All()
	if len(all) != 1 || all[0].Symbol != "NEW" {
		t.Errorf("expected only NEW to survive, got %v", all)
	}
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(t, &collector.MockFetcher{Price: 100}, "A")
	s.Opts.SignalInterval = time.Second
	s.Opts.PriceInterval = time.Second
	if err := s.RegisterAll(); err != nil {
		t.Fatalf("register: %v", err)
	}
	s.Start()

	deadline := time.Now().Add(5 * time.Second)
	for s.Registry.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if s.Registry.Len() == 0 {
		t.Fatal("expected the signal job to run")
	}

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not return")
	}

	n := s.Registry.Len()
	time.Sleep(1500 * time.Millisecond)
	if s.Registry.Len() != n {
		t.Error("no pass may run after stop")
	}
}
