package strategy

import (
	"fmt"

	"StockSignals/internal/model"
)

// Factor names, also used as display labels.
const (
	FactorBollinger = "Bollinger"
	FactorRSI       = "RSI"
	FactorMACD      = "MACD"
)

// Thresholds shared by scoring and suggestions.
const (
	rsiOversold     = 30.0
	rsiOverbought   = 70.0
	divergenceLimit = 0.05
)

// scoreBollinger scores the close against the volatility bands.
// Weight: 3
func scoreBollinger(price float64, snap model.IndicatorSnapshot) model.FactorScore {
	var score int
	switch {
	case price < snap.Lower:
		score = 3
	case price > snap.Upper:
		score = -3
	}
	return model.FactorScore{
		Name:       FactorBollinger,
		Value:      price,
		Score:      score,
		Suggestion: bollingerSuggestion(price, snap.Lower, snap.Upper),
	}
}

// scoreRSI scores the momentum oscillator.
// Weight: 2
func scoreRSI(snap model.IndicatorSnapshot) model.FactorScore {
	var score int
	switch {
	case snap.RSI < rsiOversold:
		score = 2
	case snap.RSI > rsiOverbought:
		score = -2
	}
	return model.FactorScore{
		Name:       FactorRSI,
		Value:      snap.RSI,
		Score:      score,
		Suggestion: rsiSuggestion(snap.RSI),
	}
}

// scoreMACD scores the gap between the convergence line and its signal line.
// Weight: 1
func scoreMACD(snap model.IndicatorSnapshot) model.FactorScore {
	diff := snap.Divergence()
	var score int
	switch {
	case diff > divergenceLimit:
		score = 1
	case diff < -divergenceLimit:
		score = -1
	}
	return model.FactorScore{
		Name:       FactorMACD,
		Value:      diff,
		Score:      score,
		Suggestion: macdSuggestion(diff),
	}
}

// The suggestion helpers mirror the scoring thresholds but stay separate
// from the scores, they only feed display text.

func rsiSuggestion(v float64) string {
	switch {
	case v < rsiOversold:
		return suggestion(v, "Buy")
	case v > rsiOverbought:
		return suggestion(v, "Sell")
	default:
		return suggestion(v, "Neutral")
	}
}

func macdSuggestion(diff float64) string {
	switch {
	case diff > divergenceLimit:
		return suggestion(diff, "Buy")
	case diff < -divergenceLimit:
		return suggestion(diff, "Sell")
	default:
		return suggestion(diff, "Neutral")
	}
}

func bollingerSuggestion(price, lower, upper float64) string {
	switch {
	case price < lower:
		return suggestion(price, "Buy")
	case price > upper:
		return suggestion(price, "Sell")
	default:
		return suggestion(price, "Neutral")
	}
}

func suggestion(v float64, action string) string {
	return fmt.Sprintf("%.2f (%s)", v, action)
}
