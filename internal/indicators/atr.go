package indicators

import (
	"errors"
	"math"
)

// ATR computes the Wilder-smoothed average true range. Inputs must be ordered
// oldest-to-newest, equal in length, and hold at least period+1 bars.
func ATR(highs, lows, closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	n := len(closes)
	if len(highs) != n || len(lows) != n {
		return 0, errors.New("mismatched series lengths")
	}
	if n < period+1 {
		return 0, errors.New("not enough data for ATR calculation")
	}

	trueRange := func(i int) float64 {
		tr := highs[i] - lows[i]
		if v := math.Abs(highs[i] - closes[i-1]); v > tr {
			tr = v
		}
		if v := math.Abs(lows[i] - closes[i-1]); v > tr {
			tr = v
		}
		return tr
	}

	// Seed with the simple mean of the first period true ranges
	var atr float64
	for i := 1; i <= period; i++ {
		atr += trueRange(i)
	}
	atr /= float64(period)

	// Wilder smoothing for the rest
	for i := period + 1; i < n; i++ {
		atr = (atr*float64(period-1) + trueRange(i)) / float64(period)
	}
	return atr, nil
}
