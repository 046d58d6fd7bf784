package models

import (
	"math"
	"time"
)

// Bar represents a single OHLCV observation
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Validate validates a Bar
func (b *Bar) Validate() error {
	if b.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	if b.High < b.Low {
		return ErrInvalidBar
	}
	if b.Volume < 0 {
		return ErrInvalidVolume
	}
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidPrice
		}
	}
	return nil
}

// Series is a time-ordered sequence of bars for one symbol.
// Bars must be strictly increasing by timestamp; Validate enforces this.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// NewSeries creates a Series after validating bar ordering
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	s := &Series{Symbol: symbol, Bars: bars}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate validates the series: non-empty symbol, valid bars,
// strictly increasing unique timestamps
func (s *Series) Validate() error {
	if s.Symbol == "" {
		return ErrInvalidSymbol
	}
	for i := range s.Bars {
		if err := s.Bars[i].Validate(); err != nil {
			return err
		}
		if i > 0 && !s.Bars[i].Timestamp.After(s.Bars[i-1].Timestamp) {
			return ErrUnorderedBars
		}
	}
	return nil
}

// Len returns the number of bars
func (s *Series) Len() int {
	return len(s.Bars)
}

// Closes returns the close-price column
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i := range s.Bars {
		out[i] = s.Bars[i].Close
	}
	return out
}

// Highs returns the high-price column
func (s *Series) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i := range s.Bars {
		out[i] = s.Bars[i].High
	}
	return out
}

// Lows returns the low-price column
func (s *Series) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i := range s.Bars {
		out[i] = s.Bars[i].Low
	}
	return out
}

// Slice returns a new Series restricted to bars with start <= timestamp <= end.
// The bar slice is copied so the caller's retained series is never aliased.
func (s *Series) Slice(start, end time.Time) *Series {
	out := &Series{Symbol: s.Symbol}
	for _, bar := range s.Bars {
		if bar.Timestamp.Before(start) || bar.Timestamp.After(end) {
			continue
		}
		out.Bars = append(out.Bars, bar)
	}
	return out
}

// First returns the first bar; ok is false on an empty series
func (s *Series) First() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[0], true
}

// Last returns the last bar; ok is false on an empty series
func (s *Series) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
