package strategy

import "StockSignals/internal/model"

// Classes maps a total score to a classification. Entries are checked in
// order and the first one whose MinScore is reached wins.
var Classes = []struct {
	MinScore int
	Class    model.Classification
}{
	{5, model.StrongBuy},
	{3, model.MediumBuy},
	{1, model.LowBuy},
	{0, model.Neutral},
	{-2, model.LowSell},
	{-4, model.MediumSell},
}

// DefaultClass is the classification for totals below -4.
const DefaultClass = model.StrongSell

// Classify maps a total score in [-6, 6] to its classification.
func Classify(total int) model.Classification {
	for _, c := range Classes {
		if total >= c.MinScore {
			return c.Class
		}
	}
	return DefaultClass
}

// Evaluate scores the latest bar of a symbol against its indicators and
// returns the classified signal. It has no side effects; eligibility
// filtering happens in the caller.
func Evaluate(symbol string, bar model.OHLCV, snap model.IndicatorSnapshot) model.Signal {
	factors := []model.FactorScore{
		scoreBollinger(bar.Close, snap),
		scoreRSI(snap),
		scoreMACD(snap),
	}

	total := 0
	for _, f := range factors {
		total += f.Score
	}

	return model.Signal{
		Symbol:         symbol,
		Classification: Classify(total),
		Price:          bar.Close,
		Volume:         bar.Volume,
		Indicators:     snap,
		Factors:        factors,
		TotalScore:     total,
		Time:           bar.Time,
	}
}
