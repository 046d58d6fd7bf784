package models

import (
	"errors"
	"math"
	"testing"
	"time"
)

func validBar(ts time.Time) Bar {
	return Bar{Timestamp: ts, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000}
}

func TestBarValidate(t *testing.T) {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*Bar)
		wantErr error
	}{
		{
			name:   "valid bar",
			mutate: func(b *Bar) {},
		},
		{
			name:    "zero timestamp",
			mutate:  func(b *Bar) { b.Timestamp = time.Time{} },
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "high below low",
			mutate:  func(b *Bar) { b.High, b.Low = b.Low, b.High },
			wantErr: ErrInvalidBar,
		},
		{
			name:    "negative volume",
			mutate:  func(b *Bar) { b.Volume = -1 },
			wantErr: ErrInvalidVolume,
		},
		{
			name:    "NaN close",
			mutate:  func(b *Bar) { b.Close = math.NaN() },
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "infinite open",
			mutate:  func(b *Bar) { b.Open = math.Inf(1) },
			wantErr: ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := validBar(ts)
			tt.mutate(&bar)
			err := bar.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func orderedBars(n int) []Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = validBar(start.AddDate(0, 0, i))
	}
	return bars
}

func TestSeriesValidate(t *testing.T) {
	tests := []struct {
		name    string
		series  Series
		wantErr error
	}{
		{
			name:   "valid series",
			series: Series{Symbol: "AAPL", Bars: orderedBars(5)},
		},
		{
			name:   "empty series is valid",
			series: Series{Symbol: "AAPL"},
		},
		{
			name:    "missing symbol",
			series:  Series{Bars: orderedBars(5)},
			wantErr: ErrInvalidSymbol,
		},
		{
			name: "duplicate timestamp",
			series: func() Series {
				bars := orderedBars(5)
				bars[3].Timestamp = bars[2].Timestamp
				return Series{Symbol: "AAPL", Bars: bars}
			}(),
			wantErr: ErrUnorderedBars,
		},
		{
			name: "decreasing timestamp",
			series: func() Series {
				bars := orderedBars(5)
				bars[1], bars[2] = bars[2], bars[1]
				return Series{Symbol: "AAPL", Bars: bars}
			}(),
			wantErr: ErrUnorderedBars,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSeriesSlice(t *testing.T) {
	series := Series{Symbol: "AAPL", Bars: orderedBars(10)}

	// Bounds are inclusive on both sides
	filtered := series.Slice(series.Bars[2].Timestamp, series.Bars[7].Timestamp)
	if filtered.Len() != 6 {
		t.Fatalf("Slice() len = %d, want 6", filtered.Len())
	}
	if !filtered.Bars[0].Timestamp.Equal(series.Bars[2].Timestamp) {
		t.Errorf("Slice() first = %v, want %v", filtered.Bars[0].Timestamp, series.Bars[2].Timestamp)
	}
	if !filtered.Bars[5].Timestamp.Equal(series.Bars[7].Timestamp) {
		t.Errorf("Slice() last = %v, want %v", filtered.Bars[5].Timestamp, series.Bars[7].Timestamp)
	}

	// The filtered bars are copies, not aliases
	filtered.Bars[0].Close = -1
	if series.Bars[2].Close == -1 {
		t.Error("Slice() aliases the input bars")
	}
}

func TestSeriesSlice_FullRangeRoundTrip(t *testing.T) {
	series := Series{Symbol: "AAPL", Bars: orderedBars(10)}
	first, _ := series.First()
	last, _ := series.Last()

	filtered := series.Slice(first.Timestamp, last.Timestamp)
	if filtered.Len() != series.Len() {
		t.Fatalf("full-range Slice() len = %d, want %d", filtered.Len(), series.Len())
	}
	for i := range series.Bars {
		if filtered.Bars[i] != series.Bars[i] {
			t.Errorf("bar %d differs after full-range slice", i)
		}
	}
}

func TestSeriesSlice_Empty(t *testing.T) {
	series := Series{Symbol: "AAPL", Bars: orderedBars(10)}
	end := series.Bars[0].Timestamp.AddDate(0, 0, -1)

	filtered := series.Slice(end.AddDate(0, 0, -10), end)
	if filtered.Len() != 0 {
		t.Errorf("out-of-range Slice() len = %d, want 0", filtered.Len())
	}
}

func TestNewSeries_RejectsUnordered(t *testing.T) {
	bars := orderedBars(3)
	bars[2].Timestamp = bars[0].Timestamp

	if _, err := NewSeries("AAPL", bars); !errors.Is(err, ErrUnorderedBars) {
		t.Errorf("NewSeries() = %v, want ErrUnorderedBars", err)
	}
}

func TestSeriesColumns(t *testing.T) {
	bars := orderedBars(3)
	bars[0].Close, bars[1].Close, bars[2].Close = 1, 2, 3
	series := Series{Symbol: "AAPL", Bars: bars}

	closes := series.Closes()
	if len(closes) != 3 || closes[0] != 1 || closes[2] != 3 {
		t.Errorf("Closes() = %v", closes)
	}
	if len(series.Highs()) != 3 || len(series.Lows()) != 3 {
		t.Error("Highs()/Lows() length mismatch")
	}
}
