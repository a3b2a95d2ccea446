package calculator

import (
	"errors"
	"fmt"

	"StockSignals/internal/model"
)

var (
	// ErrNoBars is returned when an empty series is given.
	ErrNoBars = errors.New("no bars provided")
	// ErrInsufficientHistory is returned when the latest bar lacks the
	// trailing history one or more indicators need.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// Params configures the indicator windows.
type Params struct {
	Period     int     `yaml:"period"`
	DevFactor  float64 `yaml:"dev_factor"`
	RSIPeriod  int     `yaml:"rsi_period"`
	MACDShort  int     `yaml:"macd_short"`
	MACDLong   int     `yaml:"macd_long"`
	MACDSignal int     `yaml:"macd_signal"`
}

// DefaultParams returns the standard windows: 60-bar bands at 2 deviations,
// 14-bar RSI and a 13/26/4 MACD.
func DefaultParams() Params {
	return Params{
		Period:     60,
		DevFactor:  2,
		RSIPeriod:  14,
		MACDShort:  13,
		MACDLong:   26,
		MACDSignal: 4,
	}
}

// Validate checks the windows are usable.
func (p Params) Validate() error {
	if p.Period < 2 {
		return fmt.Errorf("period must be at least 2, got %d", p.Period)
	}
	if p.DevFactor <= 0 {
		return fmt.Errorf("dev_factor must be positive, got %v", p.DevFactor)
	}
	if p.RSIPeriod <= 0 {
		return fmt.Errorf("rsi_period must be positive, got %d", p.RSIPeriod)
	}
	if p.MACDShort <= 0 || p.MACDLong <= 0 || p.MACDSignal <= 0 {
		return errors.New("macd spans must be positive")
	}
	if p.MACDShort >= p.MACDLong {
		return fmt.Errorf("macd_short (%d) must be below macd_long (%d)", p.MACDShort, p.MACDLong)
	}
	return nil
}

// MinBars returns the number of bars needed before every indicator of the
// latest bar is defined.
func (p Params) MinBars() int {
	n := p.Period
	if p.RSIPeriod+1 > n {
		n = p.RSIPeriod + 1
	}
	return n
}

// Compute derives one snapshot per bar. The input is not modified.
func Compute(bars []model.OHLCV, p Params) []model.IndicatorSnapshot {
	closes := extractCloses(bars)
	middle, upper, lower := BollingerBands(closes, p.Period, p.DevFactor)
	rsi := RollingRSI(closes, p.RSIPeriod)
	line, signal, hist := MACD(closes, p.MACDShort, p.MACDLong, p.MACDSignal)

	out := make([]model.IndicatorSnapshot, len(bars))
	for i := range bars {
		out[i] = model.IndicatorSnapshot{
			Middle:     middle[i],
			Upper:      upper[i],
			Lower:      lower[i],
			RSI:        rsi[i],
			MACD:       line[i],
			SignalLine: signal[i],
			Histogram:  hist[i],
		}
	}
	return out
}

// Latest returns the snapshot of the most recent bar. It fails with
// ErrInsufficientHistory when the bands or the oscillator are undefined,
// so callers never score partial data.
func Latest(bars []model.OHLCV, p Params) (model.IndicatorSnapshot, error) {
	if len(bars) == 0 {
		return model.IndicatorSnapshot{}, ErrNoBars
	}
	snaps := Compute(bars, p)
	last := snaps[len(snaps)-1]
	if !last.Complete() {
		return last, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientHistory, len(bars), p.MinBars())
	}
	return last, nil
}
