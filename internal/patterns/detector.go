package patterns

import "OptionSentinel/internal/model"

// Detector recognizes two-candle reversal/continuation patterns over the most
// recent window of a newest-first candle series.
type Detector struct{}

// NewDetector creates a new pattern detector.
func NewDetector() *Detector {
	return &Detector{}
}

// maxPairs limits how many recent two-candle pairs are examined per pass.
const maxPairs = 5

// Analyze scans the most recent candle pairs for known patterns.
// Requires at least 3 candles, else returns nothing.
func (d *Detector) Analyze(candles []model.Candle) []model.Pattern {
	if len(candles) < 3 {
		return nil
	}

	var found []model.Pattern
	pairs := len(candles) - 2
	if pairs > maxPairs {
		pairs = maxPairs
	}

	for i := 0; i < pairs; i++ {
		current, prev := candles[i], candles[i+1]
		found = append(found, d.detectPair(current, prev)...)
	}
	return found
}

// detectPair runs the two-candle pattern checks for one (current, previous) pair.
func (d *Detector) detectPair(cur, prev model.Candle) []model.Pattern {
	var detected []model.Pattern

	body := cur.Body()
	prevBody := prev.Body()

	switch {
	// Bullish engulfing: bearish candle followed by a larger bullish candle
	// whose body fully contains it.
	case prev.IsBearish() && cur.IsBullish() && body > 1.2*prevBody &&
		cur.Open < prev.Close && cur.Close > prev.Open:
		detected = append(detected, model.Pattern{
			Name:      "bullish_engulfing",
			Category:  model.Reversal,
			Signal:    model.Call,
			Strength:  0.85,
			Timestamp: cur.Timestamp,
		})

	// Bearish engulfing: the symmetric condition.
	case prev.IsBullish() && cur.IsBearish() && body > 1.2*prevBody &&
		cur.Open > prev.Close && cur.Close < prev.Open:
		detected = append(detected, model.Pattern{
			Name:      "bearish_engulfing",
			Category:  model.Reversal,
			Signal:    model.Put,
			Strength:  0.85,
			Timestamp: cur.Timestamp,
		})
	}

	// Doji: tiny body relative to the full range. The range floor avoids
	// division noise on near-zero ranges.
	if rng := cur.Range(); body < 0.1*rng && rng > 0.0001 {
		detected = append(detected, model.Pattern{
			Name:      "doji",
			Category:  model.Continuation,
			Signal:    model.Neutral,
			Strength:  0.5,
			Timestamp: cur.Timestamp,
		})
	}

	return detected
}

// Trend compares the mean close of the older half vs. the newer half of the
// last period candles. A 0.1% difference threshold separates the three states.
func (d *Detector) Trend(candles []model.Candle, period int) model.Trend {
	if len(candles) < period {
		return model.TrendNeutral
	}

	half := period / 2
	var newer, older float64
	for i := 0; i < half; i++ {
		newer += candles[i].Close
	}
	newer /= float64(half)
	for i := half; i < period; i++ {
		older += candles[i].Close
	}
	older /= float64(period - half)

	switch {
	case newer > older*1.001:
		return model.Uptrend
	case newer < older*0.999:
		return model.Downtrend
	default:
		return model.TrendNeutral
	}
}

// Strength returns the dominant directional share of the detected patterns:
// the larger of the CALL/PUT strength sums over their total, 0.5 if neither
// direction is present.
func (d *Detector) Strength(patterns []model.Pattern) float64 {
	var call, put float64
	for _, p := range patterns {
		switch p.Signal {
		case model.Call:
			call += p.Strength
		case model.Put:
			put += p.Strength
		}
	}

	total := call + put
	if total <= 0 {
		return 0.5
	}
	if call > put {
		return call / total
	}
	return put / total
}
