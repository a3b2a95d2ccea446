// Package portfolio holds the ledger of owned symbols and the realized
// profit booked by selling them.
package portfolio

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidOperation is the class of rejected ledger commands.
	ErrInvalidOperation = errors.New("invalid ledger operation")
	// ErrAlreadyOwned is returned when buying a symbol that is held.
	ErrAlreadyOwned = fmt.Errorf("%w: symbol already owned", ErrInvalidOperation)
	// ErrNotOwned is returned when selling or repricing a symbol that is not held.
	ErrNotOwned = fmt.Errorf("%w: symbol not owned", ErrInvalidOperation)
)

// Entry is one held symbol.
type Entry struct {
	Symbol       string          `json:"symbol"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	BoughtAt     time.Time       `json:"bought_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Unrealized returns current price minus buy price.
func (e Entry) Unrealized() decimal.Decimal {
	return e.CurrentPrice.Sub(e.BuyPrice)
}

// Ledger tracks held symbols and the realized profit tally.
// The owned set is the key set of entries, guarded by the same mutex, so
// membership and entries change together.
type Ledger struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	realized decimal.Decimal
	now      func() time.Time
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// Buy records a new holding at price.
func (l *Ledger) Buy(symbol string, price decimal.Decimal) error {
	if symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidOperation)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be positive, got %s", ErrInvalidOperation, price)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[symbol]; ok {
		return fmt.Errorf("buy %s: %w", symbol, ErrAlreadyOwned)
	}
	now := l.now()
	l.entries[symbol] = &Entry{
		Symbol:       symbol,
		BuyPrice:     price,
		CurrentPrice: price,
		BoughtAt:     now,
		UpdatedAt:    now,
	}
	return nil
}

// Sell closes the holding and adds current minus buy price to the realized
// tally. The returned entry is the holding as sold; its Unrealized value is
// the profit just booked.
func (l *Ledger) Sell(symbol string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[symbol]
	if !ok {
		return Entry{}, fmt.Errorf("sell %s: %w", symbol, ErrNotOwned)
	}
	l.realized = l.realized.Add(e.Unrealized())
	delete(l.entries, symbol)
	return *e, nil
}

// Remove drops the holding without booking any profit.
func (l *Ledger) Remove(symbol string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[symbol]; !ok {
		return fmt.Errorf("remove %s: %w", symbol, ErrNotOwned)
	}
	delete(l.entries, symbol)
	return nil
}

// UpdatePrice overwrites the current price of a held symbol. A symbol that
// is not held is left alone and ErrNotOwned is returned; the price refresh
// loop treats that as a no-op.
func (l *Ledger) UpdatePrice(symbol string, price decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[symbol]
	if !ok {
		return fmt.Errorf("update %s: %w", symbol, ErrNotOwned)
	}
	e.CurrentPrice = price
	e.UpdatedAt = l.now()
	return nil
}

// IsOwned reports whether symbol is held.
func (l *Ledger) IsOwned(symbol string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[symbol]
	return ok
}

// Owned returns the held symbols, sorted.
func (l *Ledger) Owned() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.entries))
	for s := range l.entries {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// OwnedSet returns the held symbols as a set.
func (l *Ledger) OwnedSet() map[string]bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]bool, len(l.entries))
	for s := range l.entries {
		out[s] = true
	}
	return out
}

// Entries returns a copy of every holding, sorted by symbol.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// RealizedProfit returns the running realized profit.
func (l *Ledger) RealizedProfit() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.realized
}

// UnrealizedProfit returns the open profit across all holdings.
func (l *Ledger) UnrealizedProfit() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := decimal.Zero
	for _, e := range l.entries {
		total = total.Add(e.Unrealized())
	}
	return total
}
