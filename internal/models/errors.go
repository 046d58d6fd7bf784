package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidBar       = errors.New("invalid bar (high < low)")
	ErrInvalidVolume    = errors.New("invalid volume")
	ErrUnorderedBars    = errors.New("bars are not strictly increasing by timestamp")
	ErrInvalidRange     = errors.New("invalid date range (start after end)")
	ErrNoDataInRange    = errors.New("no data in requested range")
	ErrEmptySeries      = errors.New("series has no bars")
	ErrProviderFailure  = errors.New("market data provider failure")
	ErrUnknownIndicator = errors.New("unknown indicator")
	ErrInvalidWindow    = errors.New("invalid indicator window")
)

// InsufficientDataError reports that one indicator could not be computed
// because the filtered series is shorter than its warm-up threshold.
// Other indicators are unaffected.
type InsufficientDataError struct {
	Indicator string `json:"indicator"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d bars, have %d",
		e.Indicator, e.Required, e.Available)
}
