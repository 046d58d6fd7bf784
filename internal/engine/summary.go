package engine

import (
	"math"

	"github.com/mohamedkhairy/stocklens/internal/models"
)

// Summarize computes summary statistics over the filtered series:
// first/last close and period high/low. Callers must not pass an
// empty series; that is reported as ErrEmptySeries.
func Summarize(series *models.Series) (models.SummaryMetrics, error) {
	first, ok := series.First()
	if !ok {
		return models.SummaryMetrics{}, models.ErrEmptySeries
	}
	last, _ := series.Last()

	high := math.Inf(-1)
	low := math.Inf(1)
	for _, bar := range series.Bars {
		if bar.High > high {
			high = bar.High
		}
		if bar.Low < low {
			low = bar.Low
		}
	}

	return models.SummaryMetrics{
		StartPrice:   first.Close,
		CurrentPrice: last.Close,
		PeriodHigh:   high,
		PeriodLow:    low,
	}, nil
}
