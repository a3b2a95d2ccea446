// Package registry keeps the signals emitted by the scheduler and answers
// the buy/sell candidate queries of the presentation layer.
package registry

import (
	"sort"
	"sync"
	"time"

	"StockSignals/internal/model"
)

// DefaultMaxSignals is the retention cap used when none is configured.
const DefaultMaxSignals = 5000

// Filter selects which strengths a candidate query returns.
type Filter struct {
	Strong bool
	Medium bool
	Low    bool
}

// AllStrengths accepts every BUY or SELL strength.
var AllStrengths = Filter{Strong: true, Medium: true, Low: true}

func (f Filter) accepts(c model.Classification) bool {
	switch c.Strength() {
	case 3:
		return f.Strong
	case 2:
		return f.Medium
	case 1:
		return f.Low
	default:
		return false
	}
}

// Registry is an append-only collection of signals until cleared.
// When maxSignals is positive the oldest signals are dropped beyond it.
type Registry struct {
	mu         sync.RWMutex
	signals    []model.Signal
	maxSignals int
}

// New creates a Registry holding at most maxSignals signals; 0 means no cap.
func New(maxSignals int) *Registry {
	if maxSignals < 0 {
		maxSignals = 0
	}
	return &Registry{maxSignals: maxSignals}
}

// Append adds a signal unconditionally.
func (r *Registry) Append(sig model.Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.signals = append(r.signals, sig)
	if r.maxSignals > 0 && len(r.signals) > r.maxSignals {
		over := len(r.signals) - r.maxSignals
		n := copy(r.signals, r.signals[over:])
		clear(r.signals[n:])
		r.signals = r.signals[:n]
	}
}

// All returns a copy of every stored signal in insertion order.
func (r *Registry) All() []model.Signal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Signal, len(r.signals))
	copy(out, r.signals)
	return out
}

// Len returns the number of stored signals.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.signals)
}

// Clear empties the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = nil
}

// Prune drops signals whose bar time is before cutoff and returns how many
// were removed.
func (r *Registry) Prune(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.signals[:0]
	for _, s := range r.signals {
		if !s.Time.Before(cutoff) {
			kept = append(kept, s)
		}
	}
	removed := len(r.signals) - len(kept)
	clear(r.signals[len(kept):])
	r.signals = kept
	return removed
}

// BuyCandidates returns BUY signals for symbols that are not owned.
func (r *Registry) BuyCandidates(owned map[string]bool, f Filter) []model.Signal {
	return r.candidates(f, func(s model.Signal) bool {
		return s.Classification.IsBuy() && !owned[s.Symbol]
	})
}

// SellCandidates returns SELL signals for symbols that are owned.
func (r *Registry) SellCandidates(owned map[string]bool, f Filter) []model.Signal {
	return r.candidates(f, func(s model.Signal) bool {
		return s.Classification.IsSell() && owned[s.Symbol]
	})
}

func (r *Registry) candidates(f Filter, keep func(model.Signal) bool) []model.Signal {
	r.mu.RLock()
	out := make([]model.Signal, 0)
	for _, s := range r.signals {
		if keep(s) && f.accepts(s.Classification) {
			out = append(out, s)
		}
	}
	r.mu.RUnlock()

	SortByStrength(out)
	return out
}

// SortByStrength orders signals strongest first, then by volume descending.
// Ties keep their relative order.
func SortByStrength(signals []model.Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		si, sj := signals[i].Classification.Strength(), signals[j].Classification.Strength()
		if si != sj {
			return si > sj
		}
		return signals[i].Volume > signals[j].Volume
	})
}
