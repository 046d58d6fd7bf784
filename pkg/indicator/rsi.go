package indicator

import (
	"fmt"
	"math"
)

// RSI computes the Relative Strength Index column:
//
//	delta = close[i] - close[i-1]
//	avg_gain = RollingMean(gains, window), avg_loss = RollingMean(losses, window)
//	RSI = 100 - 100/(1 + avg_gain/avg_loss)
//
// The first `window` positions are NaN: one bar is consumed by the
// differencing step before the rolling window can start. Two degenerate
// cases are guarded explicitly rather than left to floating-point math:
// avg_loss == 0 with gains present saturates to exactly 100, and a flat
// window (both averages zero) stays NaN — never coerced to 0 or 100.
func RSI(closes []float64, window int) Column {
	col := Column{
		Name:   fmt.Sprintf("rsi_%d", window),
		Values: undefinedSlice(len(closes)),
	}
	if window < 1 || len(closes) < window+1 {
		return col
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	for i := window; i < len(closes); i++ {
		var avgGain, avgLoss float64
		for j := i - window + 1; j <= i; j++ {
			avgGain += gains[j]
			avgLoss += losses[j]
		}
		avgGain /= float64(window)
		avgLoss /= float64(window)

		switch {
		case avgLoss == 0 && avgGain > 0:
			col.Values[i] = 100
		case avgLoss == 0 && avgGain == 0:
			col.Values[i] = math.NaN()
		default:
			rs := avgGain / avgLoss
			col.Values[i] = 100 - 100/(1+rs)
		}
	}
	return col
}
