package model

import "time"

// Classification is the direction and strength of a signal.
type Classification string

const (
	StrongBuy  Classification = "STRONG BUY"
	MediumBuy  Classification = "MEDIUM BUY"
	LowBuy     Classification = "LOW BUY"
	Neutral    Classification = "NEUTRAL"
	LowSell    Classification = "LOW SELL"
	MediumSell Classification = "MEDIUM SELL"
	StrongSell Classification = "STRONG SELL"
)

// IsBuy reports whether c is one of the BUY variants.
func (c Classification) IsBuy() bool {
	return c == StrongBuy || c == MediumBuy || c == LowBuy
}

// IsSell reports whether c is one of the SELL variants.
func (c Classification) IsSell() bool {
	return c == StrongSell || c == MediumSell || c == LowSell
}

// Strength returns 3 for STRONG, 2 for MEDIUM, 1 for LOW and 0 for NEUTRAL.
func (c Classification) Strength() int {
	switch c {
	case StrongBuy, StrongSell:
		return 3
	case MediumBuy, MediumSell:
		return 2
	case LowBuy, LowSell:
		return 1
	default:
		return 0
	}
}

// FactorScore represents a single indicator's scoring result.
type FactorScore struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Score      int     `json:"score"`
	Suggestion string  `json:"suggestion"`
}

// Signal is the classified recommendation for a symbol at one bar.
// It is treated as an immutable value once created.
type Signal struct {
	Symbol         string            `json:"symbol"`
	Classification Classification    `json:"type"`
	Price          float64           `json:"price"`
	Volume         float64           `json:"volume"`
	Indicators     IndicatorSnapshot `json:"indicators"`
	Factors        []FactorScore     `json:"factors"`
	TotalScore     int               `json:"total_score"`
	Time           time.Time         `json:"timestamp"`
}

// Suggestion returns the display suggestion of the named factor.
func (s Signal) Suggestion(name string) string {
	for _, f := range s.Factors {
		if f.Name == name {
			return f.Suggestion
		}
	}
	return ""
}
