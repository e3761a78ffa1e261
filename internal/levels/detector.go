package levels

import (
	"math"
	"sort"

	"OptionSentinel/internal/model"
)

// DefaultTolerance is the price-proportional merge tolerance (0.05%).
const DefaultTolerance = 0.0005

// maxPerSide caps how many levels are reported per side.
const maxPerSide = 3

// Detector finds support/resistance levels from local price extrema.
type Detector struct {
	tolerance float64
}

// NewDetector creates a detector with the given merge tolerance.
// A non-positive tolerance falls back to the default.
func NewDetector(tolerance float64) *Detector {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Detector{tolerance: tolerance}
}

// FindSupportResistance identifies S/R levels from peaks and troughs.
// A candle is resistance if its high is >= every high within sensitivity
// candles on both sides; the symmetric rule on lows defines support.
// Requires at least 2*sensitivity+1 candles.
func (d *Detector) FindSupportResistance(candles []model.Candle, sensitivity int) model.LevelSet {
	if len(candles) < 2*sensitivity+1 {
		return model.LevelSet{}
	}

	currentPrice := candles[0].Close
	var resistance, support []float64

	for i := sensitivity; i < len(candles)-sensitivity; i++ {
		isResistance, isSupport := true, true
		for j := 1; j <= sensitivity; j++ {
			if candles[i].High < candles[i-j].High || candles[i].High < candles[i+j].High {
				isResistance = false
			}
			if candles[i].Low > candles[i-j].Low || candles[i].Low > candles[i+j].Low {
				isSupport = false
			}
		}
		if isResistance {
			resistance = append(resistance, candles[i].High)
		}
		if isSupport {
			support = append(support, candles[i].Low)
		}
	}

	return model.LevelSet{
		Support:    d.consolidate(support, currentPrice),
		Resistance: d.consolidate(resistance, currentPrice),
	}
}

// consolidate merges raw levels within tolerance of an accepted cluster,
// incrementing that cluster's touch count, then returns the clusters nearest
// to the current price annotated with absolute distance.
func (d *Detector) consolidate(prices []float64, currentPrice float64) []model.Level {
	if len(prices) == 0 {
		return nil
	}

	sort.Float64s(prices)

	var clusters []model.Level
	for _, price := range prices {
		merged := false
		for i := range clusters {
			if math.Abs(price-clusters[i].Price) < d.tolerance*currentPrice {
				clusters[i].Touches++
				merged = true
				break
			}
		}
		if !merged {
			clusters = append(clusters, model.Level{Price: price, Touches: 1, Strength: 0.6})
		}
	}

	for i := range clusters {
		clusters[i].Distance = math.Abs(clusters[i].Price - currentPrice)
	}
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].Distance < clusters[j].Distance
	})

	if len(clusters) > maxPerSide {
		clusters = clusters[:maxPerSide]
	}
	return clusters
}
