package portfolio

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// checkConsistent verifies the owned set and the entries describe the same
// symbols.
func checkConsistent(t *testing.T, l *Ledger) {
	t.Helper()
	set := l.OwnedSet()
	entries := l.Entries()
	if len(set) != len(entries) {
		t.Fatalf("owned set %v has %d symbols, entries have %d", set, len(set), len(entries))
	}
	for _, e := range entries {
		if !set[e.Symbol] {
			t.Fatalf("entry %q missing from owned set %v", e.Symbol, set)
		}
	}
}

func TestBuySell_RealizedProfit(t *testing.T) {
	l := NewLedger()
	if err := l.Buy("ACME", d("95")); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if !l.IsOwned("ACME") {
		t.Fatal("expected ACME to be owned")
	}
	if err := l.UpdatePrice("ACME", d("110")); err != nil {
		t.Fatalf("update: %v", err)
	}
	sold, err := l.Sell("ACME")
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if !sold.CurrentPrice.Equal(d("110")) || !sold.BuyPrice.Equal(d("95")) {
		t.Errorf("expected the sold entry at 95 -> 110, got %+v", sold)
	}
	if profit := sold.Unrealized(); !profit.Equal(d("15")) {
		t.Errorf("expected profit 15, got %s", profit)
	}
	if !l.RealizedProfit().Equal(d("15")) {
		t.Errorf("expected realized 15, got %s", l.RealizedProfit())
	}
	if l.IsOwned("ACME") || len(l.Entries()) != 0 {
		t.Error("expected ACME to be gone after sell")
	}
}

func TestSell_LossGoesNegative(t *testing.T) {
	l := NewLedger()
	_ = l.Buy("X", d("50.25"))
	_ = l.UpdatePrice("X", d("40"))
	if _, err := l.Sell("X"); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if !l.RealizedProfit().Equal(d("-10.25")) {
		t.Errorf("expected -10.25, got %s", l.RealizedProfit())
	}
}

func TestBuy_AlreadyOwned(t *testing.T) {
	l := NewLedger()
	_ = l.Buy("X", d("10"))
	err := l.Buy("X", d("12"))
	if !errors.Is(err, ErrAlreadyOwned) || !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("expected ErrAlreadyOwned, got %v", err)
	}
	if e := l.Entries()[0]; !e.BuyPrice.Equal(d("10")) {
		t.Errorf("rejected buy must not change the entry, got %s", e.BuyPrice)
	}
}

func TestBuy_InvalidInput(t *testing.T) {
	l := NewLedger()
	if err := l.Buy("", d("1")); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("expected invalid operation for empty symbol, got %v", err)
	}
	if err := l.Buy("X", d("0")); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("expected invalid operation for zero price, got %v", err)
	}
}

func TestSell_NeverBought(t *testing.T) {
	l := NewLedger()
	_, err := l.Sell("GHOST")
	if !errors.Is(err, ErrNotOwned) || !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("expected ErrNotOwned, got %v", err)
	}
	if !l.RealizedProfit().IsZero() {
		t.Errorf("realized profit must stay zero, got %s", l.RealizedProfit())
	}
}

func TestUpdatePrice_NotOwnedIsNoop(t *testing.T) {
	l := NewLedger()
	if err := l.UpdatePrice("GHOST", d("5")); !errors.Is(err, ErrNotOwned) {
		t.Errorf("expected ErrNotOwned, got %v", err)
	}
	if len(l.Entries()) != 0 {
		t.Error("update on unowned symbol must not create an entry")
	}
}

func TestRemove_NoProfitBooked(t *testing.T) {
	l := NewLedger()
	_ = l.Buy("X", d("10"))
	_ = l.UpdatePrice("X", d("30"))
	if err := l.Remove("X"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if l.IsOwned("X") || !l.RealizedProfit().IsZero() {
		t.Errorf("expected X removed without profit, realized %s", l.RealizedProfit())
	}
	if err := l.Remove("X"); !errors.Is(err, ErrNotOwned) {
		t.Errorf("expected ErrNotOwned on second remove, got %v", err)
	}
}

func TestRebuyStartsFreshHolding(t *testing.T) {
	l := NewLedger()
	_ = l.Buy("X", d("10"))
	_ = l.UpdatePrice("X", d("12"))
	_, _ = l.Sell("X")
	if err := l.Buy("X", d("20")); err != nil {
		t.Fatalf("rebuy: %v", err)
	}
	e := l.Entries()[0]
	if !e.BuyPrice.Equal(d("20")) || !e.CurrentPrice.Equal(d("20")) {
		t.Errorf("expected a fresh entry at 20, got %+v", e)
	}
	if !l.RealizedProfit().Equal(d("2")) {
		t.Errorf("expected realized 2, got %s", l.RealizedProfit())
	}
}

func TestOwnedAndEntriesSorted(t *testing.T) {
	l := NewLedger()
	for _, s := range []string{"C", "A", "B"} {
		_ = l.Buy(s, d("1"))
	}
	if fmt.Sprint(l.Owned()) != "[A B C]" {
		t.Errorf("expected sorted owned, got %v", l.Owned())
	}
	var syms []string
	for _, e := range l.Entries() {
		syms = append(syms, e.Symbol)
	}
	if fmt.Sprint(syms) != "[A B C]" {
		t.Errorf("expected sorted entries, got %v", syms)
	}
	if set := l.OwnedSet(); len(set) != 3 || !set["B"] {
		t.Errorf("unexpected owned set %v", set)
	}
}

func TestUnrealizedProfit(t *testing.T) {
	l := NewLedger()
	_ = l.Buy("A", d("10"))
	_ = l.Buy("B", d("20"))
	_ = l.UpdatePrice("A", d("13"))
	_ = l.UpdatePrice("B", d("19"))
	if !l.UnrealizedProfit().Equal(d("2")) {
		t.Errorf("expected 2, got %s", l.UnrealizedProfit())
	}
}

func TestConcurrentStress_OwnedMatchesEntries(t *testing.T) {
	l := NewLedger()
	symbols := []string{"A", "B", "C", "D", "E"}
	var wg sync.WaitGroup
	var soldMu sync.Mutex
	soldTotal := decimal.Zero

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				s := symbols[(w+i)%len(symbols)]
				switch i % 4 {
				case 0:
					_ = l.Buy(s, decimal.NewFromInt(int64(10+i%7)))
				case 1:
					_ = l.UpdatePrice(s, decimal.NewFromInt(int64(5+i%11)))
				case 2:
					if e, err := l.Sell(s); err == nil {
						soldMu.Lock()
						soldTotal = soldTotal.Add(e.Unrealized())
						soldMu.Unlock()
					}
				case 3:
					for _, e := range l.Entries() {
						if e.Symbol == "" {
							t.Error("entry without symbol")
						}
					}
				}
			}
		}(w)
	}
	wg.Wait()

	checkConsistent(t, l)
	owned := l.Owned()
	var fromEntries []string
	for _, e := range l.Entries() {
		fromEntries = append(fromEntries, e.Symbol)
	}
	sort.Strings(fromEntries)
	if fmt.Sprint(owned) != fmt.Sprint(fromEntries) {
		t.Errorf("owned %v does not match entries %v", owned, fromEntries)
	}
	if !l.RealizedProfit().Equal(soldTotal) {
		t.Errorf("realized %s does not match the sum of sells %s", l.RealizedProfit(), soldTotal)
	}
}
