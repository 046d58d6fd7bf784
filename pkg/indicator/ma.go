package indicator

import (
	"fmt"
)

// MovingAverage computes a simple moving average column over the
// close prices. The first window-1 positions are NaN.
func MovingAverage(closes []float64, window int) Column {
	return Column{
		Name:   fmt.Sprintf("ma_%d", window),
		Values: RollingMean(closes, window),
	}
}
