package calculator

// EMA returns the exponential moving average of values for the given span.
// The weight is 2/(span+1) and the series is seeded by the first value,
// without bias adjustment.
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	if span < 1 {
		span = 1
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
	return out
}

// MACD returns the convergence line (short EMA minus long EMA), its signal
// line and the histogram between them. All three are defined from the
// first value on.
func MACD(closes []float64, short, long, signal int) (line, signalLine, histogram []float64) {
	fast := EMA(closes, short)
	slow := EMA(closes, long)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signalLine = EMA(line, signal)
	histogram = make([]float64, len(closes))
	for i := range closes {
		histogram[i] = line[i] - signalLine[i]
	}
	return line, signalLine, histogram
}
