package models

import (
	"math"
	"time"
)

// IndicatorKind identifies one selectable indicator
type IndicatorKind string

const (
	IndicatorMA20 IndicatorKind = "ma20"
	IndicatorMA50 IndicatorKind = "ma50"
	IndicatorBB   IndicatorKind = "bb"
	IndicatorRSI  IndicatorKind = "rsi"
	IndicatorMACD IndicatorKind = "macd"
	IndicatorATR  IndicatorKind = "atr"
)

// AllIndicators lists every supported indicator kind
func AllIndicators() []IndicatorKind {
	return []IndicatorKind{
		IndicatorMA20, IndicatorMA50, IndicatorBB,
		IndicatorRSI, IndicatorMACD, IndicatorATR,
	}
}

// ParseIndicatorKind parses a request token into an IndicatorKind
func ParseIndicatorKind(s string) (IndicatorKind, error) {
	for _, k := range AllIndicators() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrUnknownIndicator
}

// IndicatorConfig holds the window parameters for one computation pass.
// Immutable once handed to the engine.
type IndicatorConfig struct {
	ShortMAWindow int     `json:"short_ma_window" yaml:"short_ma_window"`
	LongMAWindow  int     `json:"long_ma_window" yaml:"long_ma_window"`
	BBWindow      int     `json:"bb_window" yaml:"bb_window"`
	BBStdMult     float64 `json:"bb_std_mult" yaml:"bb_std_mult"`
	RSIWindow     int     `json:"rsi_window" yaml:"rsi_window"`
	MACDShort     int     `json:"macd_short" yaml:"macd_short"`
	MACDLong      int     `json:"macd_long" yaml:"macd_long"`
	MACDSignal    int     `json:"macd_signal" yaml:"macd_signal"`
	ATRWindow     int     `json:"atr_window" yaml:"atr_window"`

	// MACDMinBars gates MACD availability. The raw computation never
	// faults, but values are unreliable before the long EMA has seen
	// this many bars. Kept configurable rather than hardcoded.
	MACDMinBars int `json:"macd_min_bars" yaml:"macd_min_bars"`

	// MinimalViewBars is the series length below which no indicator is
	// meaningful and only raw closes are exposed.
	MinimalViewBars int `json:"minimal_view_bars" yaml:"minimal_view_bars"`
}

// DefaultIndicatorConfig returns the standard parameter set
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		ShortMAWindow:   20,
		LongMAWindow:    50,
		BBWindow:        20,
		BBStdMult:       2,
		RSIWindow:       14,
		MACDShort:       12,
		MACDLong:        26,
		MACDSignal:      9,
		ATRWindow:       14,
		MACDMinBars:     26,
		MinimalViewBars: 5,
	}
}

// Validate validates the indicator configuration
func (c *IndicatorConfig) Validate() error {
	windows := []int{
		c.ShortMAWindow, c.LongMAWindow, c.BBWindow, c.RSIWindow,
		c.MACDShort, c.MACDLong, c.MACDSignal, c.ATRWindow,
	}
	for _, w := range windows {
		if w < 1 {
			return ErrInvalidWindow
		}
	}
	if c.BBStdMult <= 0 {
		return ErrInvalidWindow
	}
	return nil
}

// AnalysisRequest describes one engine invocation
type AnalysisRequest struct {
	Symbol     string          `json:"symbol"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Indicators []IndicatorKind `json:"indicators"`
	Config     IndicatorConfig `json:"config"`
}

// Validate validates the request boundary before any fetch is attempted
func (r *AnalysisRequest) Validate() error {
	if r.Symbol == "" {
		return ErrInvalidSymbol
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrInvalidRange
	}
	if r.Start.After(r.End) {
		return ErrInvalidRange
	}
	return r.Config.Validate()
}

// SummaryMetrics summarizes the filtered series
type SummaryMetrics struct {
	StartPrice   float64 `json:"start_price"`
	CurrentPrice float64 `json:"current_price"`
	PeriodHigh   float64 `json:"period_high"`
	PeriodLow    float64 `json:"period_low"`
}

// Analysis is the enriched dataset handed to the presentation layer:
// the filtered series, the computed indicator columns, confluence
// levels, summary metrics, and the per-indicator insufficiency report.
type Analysis struct {
	Symbol       string                   `json:"symbol"`
	Series       *Series                  `json:"series"`
	Columns      map[string][]float64     `json:"columns"`
	Levels       []float64                `json:"levels"`
	Summary      SummaryMetrics           `json:"summary"`
	Insufficient []*InsufficientDataError `json:"insufficient,omitempty"`

	// MinimalView is set when the filtered series is too short for any
	// indicator; only raw closes are meaningful in that mode.
	MinimalView bool      `json:"minimal_view"`
	ComputedAt  time.Time `json:"computed_at"`
}

// NaNToNull converts a column for JSON transport: undefined (NaN)
// positions become nil, which encoding/json emits as null.
func NaNToNull(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if !math.IsNaN(values[i]) {
			out[i] = &values[i]
		}
	}
	return out
}
