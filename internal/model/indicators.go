package model

// RSISignal classifies the RSI reading.
type RSISignal string

const (
	Overbought RSISignal = "overbought"
	Oversold   RSISignal = "oversold"
	RSINeutral RSISignal = "neutral"
)

// RSIResult holds the RSI value and its classification.
type RSIResult struct {
	Value  float64   `json:"value"`
	Signal RSISignal `json:"signal"`
}

// MACDTrend classifies the MACD reading.
type MACDTrend string

const (
	MACDBullish MACDTrend = "bullish"
	MACDBearish MACDTrend = "bearish"
	MACDNeutral MACDTrend = "neutral"
)

// MACDResult holds the MACD lines and their classification.
type MACDResult struct {
	Line       float64   `json:"macd_line"`
	SignalLine float64   `json:"signal_line"`
	Histogram  float64   `json:"histogram"`
	Trend      MACDTrend `json:"trend"`
}

// IndicatorSnapshot is one analysis pass over the visible candle window.
// A zero snapshot means no indicator signal and downstream must treat it so.
type IndicatorSnapshot struct {
	RSI  *RSIResult  `json:"rsi,omitempty"`
	MACD *MACDResult `json:"macd,omitempty"`
	ATR  float64     `json:"atr,omitempty"`
}

// Empty reports whether the snapshot carries no signal.
func (s IndicatorSnapshot) Empty() bool {
	return s.RSI == nil && s.MACD == nil
}
