package indicator

import (
	"math"
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"

	"github.com/mohamedkhairy/stocklens/internal/models"
)

// ATR computes an Average True Range column by delegating to techan.
// The bars are loaded into a techan TimeSeries once and the indicator
// is evaluated at every index. Positions before a full window are NaN
// to match the other columns' undefined-prefix convention.
func ATR(bars []models.Bar, window int) Column {
	col := Column{Name: "atr", Values: undefinedSlice(len(bars))}
	if window < 1 || len(bars) < window {
		return col
	}

	series := techan.NewTimeSeries()
	for _, bar := range bars {
		period := techan.NewTimePeriod(bar.Timestamp, 24*time.Hour)
		candle := techan.NewCandle(period)
		candle.OpenPrice = big.NewDecimal(bar.Open)
		candle.MaxPrice = big.NewDecimal(bar.High)
		candle.MinPrice = big.NewDecimal(bar.Low)
		candle.ClosePrice = big.NewDecimal(bar.Close)
		candle.Volume = big.NewDecimal(bar.Volume)
		series.AddCandle(candle)
	}

	atr := techan.NewAverageTrueRangeIndicator(series, window)
	for i := window - 1; i < len(bars); i++ {
		v := atr.Calculate(i).Float()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		col.Values[i] = v
	}
	return col
}
