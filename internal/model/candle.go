package model

import "math"

// Candle is one OHLCV sample for an asset over a timeframe (seconds).
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Asset     string  `json:"asset"`
	Timeframe int     `json:"timeframe"`
}

// Body returns the absolute open-close distance.
func (c Candle) Body() float64 {
	return math.Abs(c.Close - c.Open)
}

// Range returns the high-low distance.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

func (c Candle) IsBullish() bool { return c.Close > c.Open }
func (c Candle) IsBearish() bool { return c.Close < c.Open }

// SeriesKey identifies one candle series.
type SeriesKey struct {
	Asset     string
	Timeframe int
}

// Key returns the series key for the candle.
func (c Candle) Key() SeriesKey {
	return SeriesKey{Asset: c.Asset, Timeframe: c.Timeframe}
}
