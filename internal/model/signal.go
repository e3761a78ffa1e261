package model

// Direction is a trade or pattern signal direction.
type Direction string

const (
	Call    Direction = "CALL"
	Put     Direction = "PUT"
	Hold    Direction = "HOLD"
	Neutral Direction = "neutral"
)

// PatternCategory classifies a candlestick pattern.
type PatternCategory string

const (
	Reversal     PatternCategory = "reversal"
	Continuation PatternCategory = "continuation"
)

// Pattern is a detected candlestick pattern, produced fresh on each analysis pass.
type Pattern struct {
	Name      string          `json:"name"`
	Category  PatternCategory `json:"category"`
	Signal    Direction       `json:"signal"`
	Strength  float64         `json:"strength"`
	Timestamp int64           `json:"timestamp"`
}

// Trend is a short-term market direction.
type Trend string

const (
	Uptrend      Trend = "uptrend"
	Downtrend    Trend = "downtrend"
	TrendNeutral Trend = "neutral"
)

// Level is a consolidated support or resistance cluster.
type Level struct {
	Price    float64 `json:"price"`
	Touches  int     `json:"touches"`
	Strength float64 `json:"strength"`
	Distance float64 `json:"distance"`
}

// LevelSet holds the nearest support and resistance levels around the current price.
type LevelSet struct {
	Support    []Level `json:"support"`
	Resistance []Level `json:"resistance"`
}

// TradeDirective is the agent's per-decision output.
type TradeDirective struct {
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
}

// DecisionContext carries everything the agent needs for one decision.
type DecisionContext struct {
	Asset      string
	Timeframe  int
	Candles    []Candle // newest-first
	Patterns   []Pattern
	Levels     LevelSet
	Indicators IndicatorSnapshot
	Balance    float64
}
