package indicator

import (
	"math"
)

// BollingerBands computes the volatility envelope around a simple
// moving average: mid = SMA(window), upper/lower = mid +/- k * sample
// standard deviation over the same window. No band emits a value until
// a full window of bars is available.
func BollingerBands(closes []float64, window int, mult float64) (upper, middle, lower Column) {
	mid := RollingMean(closes, window)
	std := RollingStd(closes, window)

	up := make([]float64, len(closes))
	lo := make([]float64, len(closes))
	for i := range closes {
		if math.IsNaN(mid[i]) || math.IsNaN(std[i]) {
			up[i] = math.NaN()
			lo[i] = math.NaN()
			continue
		}
		up[i] = mid[i] + mult*std[i]
		lo[i] = mid[i] - mult*std[i]
	}

	upper = Column{Name: "bb_upper", Values: up}
	middle = Column{Name: "bb_middle", Values: mid}
	lower = Column{Name: "bb_lower", Values: lo}
	return upper, middle, lower
}
