package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"StockSignals/internal/model"
)

// ErrNoData is returned when a source answers but has no bars for the symbol.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchSeries returns bars covering lookback (e.g. "1d", "5d") at the
	// given granularity (e.g. "1m", "1d"), oldest first.
	FetchSeries(ctx context.Context, symbol, lookback, granularity string) ([]model.OHLCV, error)
	// FetchLatestPrice returns the most recent close.
	FetchLatestPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
