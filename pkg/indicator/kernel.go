// Package indicator implements the rolling statistics kernel and the
// full-series technical indicator columns built on top of it. Columns
// are aligned 1:1 with the input values; positions that cannot be
// computed yet are NaN, never zero.
package indicator

import (
	"math"
)

// Undefined marks a column position that has no computed value
func Undefined() float64 {
	return math.NaN()
}

// IsDefined reports whether a column value has been computed
func IsDefined(v float64) bool {
	return !math.IsNaN(v)
}

// undefinedSlice returns an all-NaN slice of the given length
func undefinedSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// RollingMean computes the windowed arithmetic mean. The first window-1
// outputs are NaN. A window of <= 0 or longer than the input degenerates
// to an all-NaN output; callers pass user-controlled window sizes against
// arbitrarily short series, so this never panics.
func RollingMean(values []float64, window int) []float64 {
	out := undefinedSlice(len(values))
	if window < 1 || window > len(values) {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// RollingStd computes the windowed sample standard deviation (ddof=1),
// the standard technical-analysis convention. Same NaN-prefix and
// degenerate-window rules as RollingMean. A window of 1 has no sample
// variance and yields all-NaN.
func RollingStd(values []float64, window int) []float64 {
	out := undefinedSlice(len(values))
	if window < 2 || window > len(values) {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		mean := sum / float64(window)

		var sq float64
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(window-1))
	}
	return out
}

// EMA computes recursive exponential smoothing with alpha = 2/(span+1),
// seeded with the first value: ema[0] = values[0]. There is no NaN
// prefix; the column is defined from index 0 onward. The seeding choice
// propagates into every EMA-derived indicator's early values. A NaN
// input position restarts the recursion at the next defined value,
// which lets EMA run over columns that themselves carry a NaN prefix.
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	if span < 1 {
		return undefinedSlice(len(values))
	}

	alpha := 2.0 / (float64(span) + 1.0)
	prev := math.NaN()
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case math.IsNaN(prev):
			out[i] = v
			prev = v
		default:
			prev = alpha*v + (1-alpha)*prev
			out[i] = prev
		}
	}
	return out
}
