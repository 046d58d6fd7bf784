package engine

import (
	"context"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/stocklens/internal/models"
)

var seriesStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// dailySeries builds one bar per calendar day from the close prices
func dailySeries(t *testing.T, symbol string, closes []float64) *models.Series {
	t.Helper()
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: seriesStart.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	series, err := models.NewSeries(symbol, bars)
	require.NoError(t, err)
	return series
}

func flatCloses(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func waveCloses(n int, base float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base + 10*math.Sin(float64(i)/5)
	}
	return out
}

func fullRangeRequest(series *models.Series, kinds ...models.IndicatorKind) models.AnalysisRequest {
	first, _ := series.First()
	last, _ := series.Last()
	return models.AnalysisRequest{
		Symbol:     series.Symbol,
		Start:      first.Timestamp,
		End:        last.Timestamp,
		Indicators: kinds,
		Config:     models.DefaultIndicatorConfig(),
	}
}

func TestAnalyze_FlatSeries(t *testing.T) {
	series := dailySeries(t, "FLAT", flatCloses(30, 100))
	req := fullRangeRequest(series, models.IndicatorMA20, models.IndicatorRSI)

	analysis, err := New().Analyze(context.Background(), series, req)
	require.NoError(t, err)

	assert.False(t, analysis.MinimalView)
	assert.Empty(t, analysis.Insufficient)

	ma, ok := analysis.Columns["ma_20"]
	require.True(t, ok)
	require.Len(t, ma, 30)
	for i := 0; i < 19; i++ {
		assert.True(t, math.IsNaN(ma[i]), "ma_20[%d] should be undefined", i)
	}
	for i := 19; i < 30; i++ {
		assert.InDelta(t, 100.0, ma[i], 1e-9, "ma_20[%d]", i)
	}

	// Flat series: gains and losses are both zero, so RSI stays
	// undefined on every bar even past its warm-up
	rsi, ok := analysis.Columns["rsi_14"]
	require.True(t, ok)
	for i, v := range rsi {
		assert.True(t, math.IsNaN(v), "rsi_14[%d] should be undefined", i)
	}
}

func TestAnalyze_AllInsufficient(t *testing.T) {
	series := dailySeries(t, "SHORT", waveCloses(10, 100))
	req := fullRangeRequest(series, models.AllIndicators()...)

	analysis, err := New().Analyze(context.Background(), series, req)
	require.NoError(t, err)

	assert.False(t, analysis.MinimalView)
	assert.Empty(t, analysis.Columns)

	// No computed indicators means no confluence; the close extremes
	// alone do not form levels
	require.NotNil(t, analysis.Levels)
	assert.Empty(t, analysis.Levels)

	require.Len(t, analysis.Insufficient, len(models.AllIndicators()))
	for _, ins := range analysis.Insufficient {
		assert.Equal(t, 10, ins.Available)
		assert.Greater(t, ins.Required, ins.Available)
	}
}

func TestAnalyze_PartialSufficiency(t *testing.T) {
	// 25 bars: enough for ma20, bb and rsi but not ma50 or macd
	series := dailySeries(t, "PART", waveCloses(25, 100))
	req := fullRangeRequest(series, models.AllIndicators()...)

	analysis, err := New().Analyze(context.Background(), series, req)
	require.NoError(t, err)

	assert.Contains(t, analysis.Columns, "ma_20")
	assert.Contains(t, analysis.Columns, "bb_middle")
	assert.Contains(t, analysis.Columns, "rsi_14")
	assert.NotContains(t, analysis.Columns, "ma_50")
	assert.NotContains(t, analysis.Columns, "macd")

	skipped := make(map[string]bool)
	for _, ins := range analysis.Insufficient {
		skipped[ins.Indicator] = true
	}
	assert.True(t, skipped["ma50"])
	assert.True(t, skipped["macd"])
	assert.False(t, skipped["ma20"])
}

func TestAnalyze_MinimalView(t *testing.T) {
	series := dailySeries(t, "TINY", flatCloses(3, 50))
	req := fullRangeRequest(series, models.AllIndicators()...)

	analysis, err := New().Analyze(context.Background(), series, req)
	require.NoError(t, err)

	assert.True(t, analysis.MinimalView)
	assert.Empty(t, analysis.Columns)
	require.NotNil(t, analysis.Levels)
	assert.Empty(t, analysis.Levels)
	assert.Len(t, analysis.Insufficient, len(models.AllIndicators()))
	assert.Equal(t, 3, analysis.Series.Len())
	assert.Equal(t, 50.0, analysis.Summary.CurrentPrice)
}

func TestAnalyze_NoDataInRange(t *testing.T) {
	series := dailySeries(t, "GAP", flatCloses(30, 100))
	req := fullRangeRequest(series, models.IndicatorMA20)
	req.Start = seriesStart.AddDate(-1, 0, 0)
	req.End = seriesStart.AddDate(0, 0, -1)

	_, err := New().Analyze(context.Background(), series, req)
	assert.ErrorIs(t, err, models.ErrNoDataInRange)
}

func TestAnalyze_InvalidRange(t *testing.T) {
	series := dailySeries(t, "BAD", flatCloses(30, 100))
	req := fullRangeRequest(series, models.IndicatorMA20)
	req.Start, req.End = req.End, req.Start

	_, err := New().Analyze(context.Background(), series, req)
	assert.ErrorIs(t, err, models.ErrInvalidRange)
}

func TestAnalyze_UnknownIndicator(t *testing.T) {
	series := dailySeries(t, "UNK", flatCloses(30, 100))
	req := fullRangeRequest(series, models.IndicatorKind("bogus"))

	_, err := New().Analyze(context.Background(), series, req)
	assert.ErrorIs(t, err, models.ErrUnknownIndicator)
}

func TestAnalyze_FullRangeFilterIsNoOp(t *testing.T) {
	series := dailySeries(t, "FULL", waveCloses(60, 200))
	req := fullRangeRequest(series, models.IndicatorMA20)

	analysis, err := New().Analyze(context.Background(), series, req)
	require.NoError(t, err)

	require.Equal(t, series.Len(), analysis.Series.Len())
	for i := range series.Bars {
		assert.Equal(t, series.Bars[i], analysis.Series.Bars[i])
	}
}

func TestAnalyze_WindowFilterInclusive(t *testing.T) {
	series := dailySeries(t, "WIN", waveCloses(60, 200))
	req := fullRangeRequest(series, models.IndicatorMA20)
	req.Start = series.Bars[10].Timestamp
	req.End = series.Bars[49].Timestamp

	analysis, err := New().Analyze(context.Background(), series, req)
	require.NoError(t, err)

	require.Equal(t, 40, analysis.Series.Len())
	first, _ := analysis.Series.First()
	last, _ := analysis.Series.Last()
	assert.Equal(t, req.Start, first.Timestamp)
	assert.Equal(t, req.End, last.Timestamp)
}

func TestAnalyze_InputSeriesNotMutated(t *testing.T) {
	series := dailySeries(t, "IMMUT", waveCloses(60, 200))
	before := append([]models.Bar(nil), series.Bars...)

	req := fullRangeRequest(series, models.AllIndicators()...)
	analysis, err := New().Analyze(context.Background(), series, req)
	require.NoError(t, err)

	// Mutating the result must not leak back into the input
	analysis.Series.Bars[0].Close = -1
	assert.Equal(t, before, series.Bars)
}

func TestAnalyze_ConfluenceLevels(t *testing.T) {
	series := dailySeries(t, "CONF", waveCloses(120, 200))
	req := fullRangeRequest(series, models.AllIndicators()...)

	analysis, err := New().Analyze(context.Background(), series, req)
	require.NoError(t, err)

	require.NotEmpty(t, analysis.Levels)
	assert.True(t, sort.Float64sAreSorted(analysis.Levels))
	for i := 1; i < len(analysis.Levels); i++ {
		assert.Greater(t, analysis.Levels[i], analysis.Levels[i-1],
			"levels must be deduplicated")
	}
	for _, level := range analysis.Levels {
		assert.InDelta(t, level, math.Round(level*100)/100, 1e-9,
			"levels are rounded to 2 decimal places")
	}
}

func TestAnalyze_ColumnsAlignedWithSeries(t *testing.T) {
	series := dailySeries(t, "ALIGN", waveCloses(120, 200))
	req := fullRangeRequest(series, models.AllIndicators()...)

	analysis, err := New().Analyze(context.Background(), series, req)
	require.NoError(t, err)

	for name, values := range analysis.Columns {
		assert.Len(t, values, analysis.Series.Len(), "column %s", name)
	}
}
