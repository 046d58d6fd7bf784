package indicator

import (
	"math"
)

// MACD computes the Moving Average Convergence Divergence columns:
// macd = EMA(close, short) - EMA(close, long), signal = EMA(macd, signalSpan),
// histogram = macd - signal. Because EMA is seeded with the first value,
// all three columns are defined from bar 0; they are numerically
// unreliable before ~long bars, which the sufficiency policy gates on
// separately.
func MACD(closes []float64, short, long, signalSpan int) (macd, signal, histogram Column) {
	fast := EMA(closes, short)
	slow := EMA(closes, long)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}

	sig := EMA(line, signalSpan)

	hist := make([]float64, len(closes))
	for i := range closes {
		if math.IsNaN(line[i]) || math.IsNaN(sig[i]) {
			hist[i] = math.NaN()
			continue
		}
		hist[i] = line[i] - sig[i]
	}

	macd = Column{Name: "macd", Values: line}
	signal = Column{Name: "macd_signal", Values: sig}
	histogram = Column{Name: "macd_hist", Values: hist}
	return macd, signal, histogram
}
