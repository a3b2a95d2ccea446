package model

import (
	"math"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// IndicatorSnapshot holds the indicator values derived for one bar.
// Fields without enough trailing history are NaN.
type IndicatorSnapshot struct {
	Middle     float64 `json:"middle_band"`
	Upper      float64 `json:"upper_band"`
	Lower      float64 `json:"lower_band"`
	RSI        float64 `json:"rsi"`
	MACD       float64 `json:"macd_line"`
	SignalLine float64 `json:"signal_line"`
	Histogram  float64 `json:"macd_histogram"`
}

// BandsReady reports whether the moving-average bands are defined.
func (s IndicatorSnapshot) BandsReady() bool {
	return !math.IsNaN(s.Middle) && !math.IsNaN(s.Upper) && !math.IsNaN(s.Lower)
}

// RSIReady reports whether the momentum oscillator is defined.
func (s IndicatorSnapshot) RSIReady() bool {
	return !math.IsNaN(s.RSI)
}

// Complete reports whether every indicator family is defined and the
// snapshot may be scored.
func (s IndicatorSnapshot) Complete() bool {
	return s.BandsReady() && s.RSIReady() &&
		!math.IsNaN(s.MACD) && !math.IsNaN(s.SignalLine)
}

// Divergence is the convergence line minus its signal line.
func (s IndicatorSnapshot) Divergence() float64 {
	return s.MACD - s.SignalLine
}
