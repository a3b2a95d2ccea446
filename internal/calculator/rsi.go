package calculator

import "math"

// RollingRSI computes the momentum oscillator for every index from the simple
// mean of gains and of absolute losses over the trailing period
// close-to-close deltas. Index i needs period deltas, so the first defined
// value is at index period; earlier values are NaN.
//
// A window with no losses maps to 100, and a flat window (no gains and no
// losses) maps to 50, so a defined value is never NaN.
func RollingRSI(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	var gainSum, lossSum float64
	for i := 1; i < len(closes); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i >= period {
			out[i] = rsiFromAverages(gainSum/float64(period), lossSum/float64(period))
		}
	}
	return out
}

// CalculateRSI returns the latest oscillator value over the given period.
// Returns NaN if there are not enough closes.
func CalculateRSI(closes []float64, period int) float64 {
	series := RollingRSI(closes, period)
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	// Running sums can drift a hair below zero after subtraction.
	if avgGain < 1e-12 {
		avgGain = 0
	}
	if avgLoss < 1e-12 {
		avgLoss = 0
	}
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
