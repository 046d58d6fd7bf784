package engine

import (
	"math"
	"sort"

	"github.com/mohamedkhairy/stocklens/pkg/indicator"
)

// ConfluenceLevels collects the latest defined value of every computed
// column plus the period's close maximum and minimum, rounds each to
// 2 decimal places, deduplicates by rounded value, and sorts ascending.
// With no computed columns at all there is nothing to confluence with,
// so the close extremes are not emitted on their own and the result is
// an empty list, not an error.
func ConfluenceLevels(columns []indicator.Column, closes []float64) []float64 {
	if len(columns) == 0 {
		return []float64{}
	}

	candidates := make([]float64, 0, len(columns)+2)
	for _, col := range columns {
		if v, ok := col.LastDefined(); ok {
			candidates = append(candidates, v)
		}
	}

	if len(closes) > 0 {
		maxClose := closes[0]
		minClose := closes[0]
		for _, c := range closes[1:] {
			if c > maxClose {
				maxClose = c
			}
			if c < minClose {
				minClose = c
			}
		}
		candidates = append(candidates, maxClose, minClose)
	}

	seen := make(map[int64]struct{}, len(candidates))
	levels := make([]float64, 0, len(candidates))
	for _, v := range candidates {
		rounded := math.Round(v*100) / 100
		key := int64(math.Round(v * 100))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		levels = append(levels, rounded)
	}

	sort.Float64s(levels)
	return levels
}
