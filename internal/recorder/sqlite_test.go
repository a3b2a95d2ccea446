package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"StockSignals/internal/model"

	"github.com/shopspring/decimal"
)

func TestSQLiteRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	now := time.Now()
	sig := &model.Signal{
		Symbol:         "ACME",
		Classification: model.StrongBuy,
		Price:          95,
		Volume:         1000,
		Indicators:     model.IndicatorSnapshot{Middle: 105, Upper: 110, Lower: 100, RSI: 25, MACD: 0.1, SignalLine: 0.04, Histogram: 0.06},
		Factors: []model.FactorScore{
			{Name: "Bollinger", Score: 3},
			{Name: "RSI", Score: 2},
			{Name: "MACD", Score: 1},
		},
		TotalScore: 6,
		Time:       now,
	}
	if err := r.RecordSignal(sig); err != nil {
		t.Fatalf("record signal: %v", err)
	}
	tr := &model.Trade{
		Action:   model.ActionSell,
		Symbol:   "ACME",
		Price:    decimal.RequireFromString("110.10"),
		Realized: decimal.RequireFromString("15.10"),
		Time:     now,
	}
	if err := r.RecordTrade(tr); err != nil {
		t.Fatalf("record trade: %v", err)
	}

	var class string
	var total, bollinger int
	if err := r.db.QueryRow(`SELECT classification, total_score, bollinger_score FROM signals`).
		Scan(&class, &total, &bollinger); err != nil {
		t.Fatalf("query signal: %v", err)
	}
	if class != "STRONG BUY" || total != 6 || bollinger != 3 {
		t.Errorf("unexpected signal row %s %d %d", class, total, bollinger)
	}

	var action, realized string
	if err := r.db.QueryRow(`SELECT action, realized FROM trades`).Scan(&action, &realized); err != nil {
		t.Fatalf("query trade: %v", err)
	}
	if action != "SELL" || realized != "15.1" {
		t.Errorf("unexpected trade row %s %s", action, realized)
	}
}

func TestSQLiteRecorder_ReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	r.Close()
	r, err = NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	r.Close()
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordSignal(&model.Signal{}); err != nil {
		t.Error(err)
	}
	if err := r.RecordTrade(&model.Trade{}); err != nil {
		t.Error(err)
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
}
