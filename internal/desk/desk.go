// Package desk is the query and command surface shared by the HTTP and chat
// adapters. It joins the signal registry with the portfolio ledger, so BUY
// candidates exclude owned symbols and SELL candidates include only them.
package desk

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"StockSignals/internal/metrics"
	"StockSignals/internal/model"
	"StockSignals/internal/portfolio"
	"StockSignals/internal/recorder"
	"StockSignals/internal/registry"

	"github.com/shopspring/decimal"
)

// Desk wires the registry and ledger to operator commands.
type Desk struct {
	Registry *registry.Registry
	Ledger   *portfolio.Ledger
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics

	now func() time.Time
}

// New creates a Desk. rec and m may be nil.
func New(reg *registry.Registry, ledger *portfolio.Ledger, rec recorder.Recorder, m *metrics.Metrics) *Desk {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Desk{
		Registry: reg,
		Ledger:   ledger,
		Recorder: rec,
		Metrics:  m,
		now:      time.Now,
	}
}

// BuyCandidates returns BUY signals for symbols not held, strongest first.
func (d *Desk) BuyCandidates(f registry.Filter) []model.Signal {
	return d.Registry.BuyCandidates(d.Ledger.OwnedSet(), f)
}

// SellCandidates returns SELL signals for held symbols, strongest first.
func (d *Desk) SellCandidates(f registry.Filter) []model.Signal {
	return d.Registry.SellCandidates(d.Ledger.OwnedSet(), f)
}

// Signals returns every registered signal in insertion order.
func (d *Desk) Signals() []model.Signal { return d.Registry.All() }

// Portfolio returns the current holdings sorted by symbol.
func (d *Desk) Portfolio() []portfolio.Entry { return d.Ledger.Entries() }

// RealizedProfit returns the profit booked by sales so far.
func (d *Desk) RealizedProfit() decimal.Decimal { return d.Ledger.RealizedProfit() }

// UnrealizedProfit returns the open profit of all holdings.
func (d *Desk) UnrealizedProfit() decimal.Decimal { return d.Ledger.UnrealizedProfit() }

// ClearSignals empties the registry. Holdings and realized profit are kept.
func (d *Desk) ClearSignals() {
	d.Registry.Clear()
	d.Metrics.SetRegistrySize(0)
	slog.Info("signals cleared")
}

// Buy records a purchase of symbol at price.
func (d *Desk) Buy(symbol string, price float64) error {
	symbol = strings.TrimSpace(symbol)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: price must be finite", portfolio.ErrInvalidOperation)
	}
	p := decimal.NewFromFloat(price)
	if err := d.Ledger.Buy(symbol, p); err != nil {
		return err
	}
	d.record(model.Trade{Action: model.ActionBuy, Symbol: symbol, Price: p})
	return nil
}

// Sell closes the holding at its last refreshed price and returns the
// realized profit of this sale.
func (d *Desk) Sell(symbol string) (decimal.Decimal, error) {
	symbol = strings.TrimSpace(symbol)
	sold, err := d.Ledger.Sell(symbol)
	if err != nil {
		return decimal.Zero, err
	}
	profit := sold.Unrealized()
	d.record(model.Trade{Action: model.ActionSell, Symbol: symbol, Price: sold.CurrentPrice, Realized: profit})
	return profit, nil
}

// Remove drops symbol from the portfolio without booking profit.
func (d *Desk) Remove(symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if err := d.Ledger.Remove(symbol); err != nil {
		return err
	}
	d.record(model.Trade{Action: model.ActionRemove, Symbol: symbol})
	return nil
}

func (d *Desk) record(tr model.Trade) {
	tr.Time = d.now()
	slog.Info("trade accepted", "action", tr.Action, "symbol", tr.Symbol,
		"price", tr.Price.String(), "realized", tr.Realized.String())
	if err := d.Recorder.RecordTrade(&tr); err != nil {
		slog.Error("record trade", "symbol", tr.Symbol, "err", err)
	}
	d.Metrics.Trade(string(tr.Action))
	d.Metrics.SetLedger(len(d.Ledger.Owned()), d.Ledger.RealizedProfit().InexactFloat64())
}
