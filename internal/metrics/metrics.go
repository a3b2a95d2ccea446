package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Loop labels.
const (
	LoopSignals = "signals"
	LoopPrices  = "prices"
)

// Metrics holds the Prometheus collectors for the signal engine. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	SignalsTotal    *prometheus.CounterVec   // labels: classification
	SkippedTotal    *prometheus.CounterVec   // labels: reason
	FetchErrors     *prometheus.CounterVec   // labels: loop
	PassDuration    *prometheus.HistogramVec // labels: loop
	RegistrySize    prometheus.Gauge
	Holdings        prometheus.Gauge
	RealizedProfit  prometheus.Gauge
	TradesTotal     *prometheus.CounterVec // labels: action
	AlertsTotal     prometheus.Counter
	AlertErrorTotal prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksignals_signals_total",
			Help: "Signals appended to the registry by classification",
		}, []string{"classification"}),
		SkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksignals_symbols_skipped_total",
			Help: "Symbols skipped in a signal pass by reason",
		}, []string{"reason"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksignals_fetch_errors_total",
			Help: "Data source failures by loop",
		}, []string{"loop"}),
		PassDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stocksignals_pass_duration_seconds",
			Help:    "Wall time of one loop pass",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"loop"}),
		RegistrySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stocksignals_registry_signals",
			Help: "Signals currently held in the registry",
		}),
		Holdings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stocksignals_portfolio_holdings",
			Help: "Symbols currently owned",
		}),
		RealizedProfit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stocksignals_realized_profit",
			Help: "Running realized profit",
		}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksignals_trades_total",
			Help: "Accepted ledger commands by action",
		}, []string{"action"}),
		AlertsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocksignals_alerts_total",
			Help: "Strong-signal alerts sent",
		}),
		AlertErrorTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocksignals_alert_errors_total",
			Help: "Strong-signal alerts that failed to send",
		}),
	}

	reg.MustRegister(
		m.SignalsTotal,
		m.SkippedTotal,
		m.FetchErrors,
		m.PassDuration,
		m.RegistrySize,
		m.Holdings,
		m.RealizedProfit,
		m.TradesTotal,
		m.AlertsTotal,
		m.AlertErrorTotal,
	)
	return m
}

func (m *Metrics) ObserveSignal(classification string) {
	if m == nil {
		return
	}
	m.SignalsTotal.WithLabelValues(classification).Inc()
}

func (m *Metrics) Skip(reason string) {
	if m == nil {
		return
	}
	m.SkippedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) FetchError(loop string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(loop).Inc()
}

func (m *Metrics) ObservePass(loop string, d time.Duration) {
	if m == nil {
		return
	}
	m.PassDuration.WithLabelValues(loop).Observe(d.Seconds())
}

func (m *Metrics) SetRegistrySize(n int) {
	if m == nil {
		return
	}
	m.RegistrySize.Set(float64(n))
}

// SetLedger publishes holdings count and realized profit.
func (m *Metrics) SetLedger(holdings int, realized float64) {
	if m == nil {
		return
	}
	m.Holdings.Set(float64(holdings))
	m.RealizedProfit.Set(realized)
}

func (m *Metrics) Trade(action string) {
	if m == nil {
		return
	}
	m.TradesTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) Alert(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.AlertErrorTotal.Inc()
		return
	}
	m.AlertsTotal.Inc()
}

// Health tracks when each loop last completed a pass.
type Health struct {
	mu        sync.RWMutex
	startedAt time.Time
	lastPass  map[string]time.Time
}

// NewHealth returns a Health with the start time set to now.
func NewHealth() *Health {
	return &Health{startedAt: time.Now(), lastPass: make(map[string]time.Time)}
}

func (h *Health) MarkPass(loop string, t time.Time) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.lastPass[loop] = t
	h.mu.Unlock()
}

// HealthReport is the /healthz body.
type HealthReport struct {
	Status   string            `json:"status"`
	Uptime   string            `json:"uptime"`
	LastPass map[string]string `json:"last_pass"`
}

// Report summarises loop liveness. A loop that has not completed a pass
// within staleAfter marks the process degraded; zero disables the check.
func (h *Health) Report(now time.Time, staleAfter time.Duration) HealthReport {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r := HealthReport{
		Status:   "healthy",
		Uptime:   now.Sub(h.startedAt).Round(time.Second).String(),
		LastPass: make(map[string]string, len(h.lastPass)),
	}
	for loop, t := range h.lastPass {
		r.LastPass[loop] = t.Format(time.RFC3339)
		if staleAfter > 0 && now.Sub(t) > staleAfter {
			r.Status = "degraded"
		}
	}
	return r
}
