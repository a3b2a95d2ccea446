package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveSignal("STRONG BUY")
	m.ObserveSignal("STRONG BUY")
	m.Skip("insufficient_history")
	m.FetchError(LoopPrices)
	m.SetRegistrySize(7)
	m.SetLedger(2, 15.5)
	m.Alert(nil)
	m.Alert(errors.New("down"))

	if v := testutil.ToFloat64(m.SignalsTotal.WithLabelValues("STRONG BUY")); v != 2 {
		t.Errorf("expected 2 strong buys, got %v", v)
	}
	if v := testutil.ToFloat64(m.SkippedTotal.WithLabelValues("insufficient_history")); v != 1 {
		t.Errorf("expected 1 skip, got %v", v)
	}
	if v := testutil.ToFloat64(m.RegistrySize); v != 7 {
		t.Errorf("expected registry size 7, got %v", v)
	}
	if v := testutil.ToFloat64(m.RealizedProfit); v != 15.5 {
		t.Errorf("expected realized 15.5, got %v", v)
	}
	if testutil.ToFloat64(m.AlertsTotal) != 1 || testutil.ToFloat64(m.AlertErrorTotal) != 1 {
		t.Error("expected one sent and one failed alert")
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSignal("NEUTRAL")
	m.Skip("x")
	m.ObservePass(LoopSignals, time.Second)
	m.SetLedger(1, 1)
}

func TestHealthReport(t *testing.T) {
	h := NewHealth()
	now := time.Now()
	h.MarkPass(LoopSignals, now.Add(-time.Minute))
	if r := h.Report(now, 5*time.Minute); r.Status != "healthy" {
		t.Errorf("expected healthy, got %s", r.Status)
	}
	h.MarkPass(LoopPrices, now.Add(-time.Hour))
	if r := h.Report(now, 5*time.Minute); r.Status != "degraded" {
		t.Errorf("expected degraded, got %s", r.Status)
	}
	if r := h.Report(now, 0); r.Status != "healthy" || len(r.LastPass) != 2 {
		t.Errorf("unexpected report %+v", r)
	}
}
