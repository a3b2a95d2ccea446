package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockSignals/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Per-symbol Series, Prices and Errs override the generated defaults.
type MockFetcher struct {
	Price  float64
	Bars   int
	Series map[string][]model.OHLCV
	Prices map[string]float64
	Errs   map[string]error
	Panics map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(ctx context.Context, symbol, _, _ string) ([]model.OHLCV, error) {
	if err := m.enter(ctx, symbol); err != nil {
		return nil, err
	}
	if bars, ok := m.Series[symbol]; ok {
		if len(bars) == 0 {
			return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
		}
		out := make([]model.OHLCV, len(bars))
		copy(out, bars)
		return out, nil
	}
	n := m.Bars
	if n == 0 {
		n = 120
	}
	return GenerateBars(m.Price, n, time.Minute), nil
}

func (m *MockFetcher) FetchLatestPrice(ctx context.Context, symbol string) (float64, error) {
	if err := m.enter(ctx, symbol); err != nil {
		return 0, err
	}
	if p, ok := m.Prices[symbol]; ok {
		return p, nil
	}
	return m.Price, nil
}

// Calls returns how many fetches were made for symbol.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

func (m *MockFetcher) enter(ctx context.Context, symbol string) error {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[symbol]++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Panics[symbol] {
		panic("mock fetcher: " + symbol)
	}
	if err, ok := m.Errs[symbol]; ok {
		return err
	}
	return nil
}

// GenerateBars builds count gently rising bars around basePrice ending now.
func GenerateBars(basePrice float64, count int, step time.Duration) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	end := time.Now().UTC().Truncate(step)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
