package calculator

import (
	"errors"
	"math"

	"StockSignals/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingMean returns the trailing mean over period values for every index.
// Indexes with fewer than period values are NaN.
func RollingMean(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// RollingStdDev returns the trailing sample standard deviation (n-1
// denominator) over period values for every index. Indexes with fewer than
// period values, or a period below 2, are NaN.
func RollingStdDev(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period < 2 {
		return out
	}
	means := RollingMean(values, period)
	for i := period - 1; i < len(values); i++ {
		mean := means[i]
		sq := 0.0
		for _, v := range values[i-period+1 : i+1] {
			d := v - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(period-1))
	}
	return out
}

// BollingerBands returns the center line and the bands at factor standard
// deviations above and below it, for every index.
func BollingerBands(closes []float64, period int, factor float64) (middle, upper, lower []float64) {
	middle = RollingMean(closes, period)
	std := RollingStdDev(closes, period)
	upper = nanSeries(len(closes))
	lower = nanSeries(len(closes))
	for i := range closes {
		if math.IsNaN(middle[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = middle[i] + factor*std[i]
		lower[i] = middle[i] - factor*std[i]
	}
	return middle, upper, lower
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
