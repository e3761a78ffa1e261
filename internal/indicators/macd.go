package indicators

import "errors"

// emaSeries computes the exponential moving average over the values,
// seeded with the first value.
func emaSeries(values []float64, period int) []float64 {
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	for i, v := range values {
		if i == 0 {
			out[i] = v
			continue
		}
		out[i] = v*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// MACD computes the MACD line, signal line, and histogram at the most recent
// close. Closes must be ordered oldest-to-newest and cover the slow period.
func MACD(closes []float64, fast, slow, signal int) (line, signalLine, histogram float64, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 || fast >= slow {
		return 0, 0, 0, errors.New("invalid MACD periods")
	}
	if len(closes) < slow {
		return 0, 0, 0, errors.New("not enough data for MACD calculation")
	}

	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)

	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	sig := emaSeries(macd, signal)

	last := len(closes) - 1
	return macd[last], sig[last], macd[last] - sig[last], nil
}
