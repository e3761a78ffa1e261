package indicators

import (
	"log"

	"OptionSentinel/internal/model"
)

// Engine computes momentum/trend/volatility indicators with signal
// classification. No incremental state is carried between passes.
type Engine struct{}

// NewEngine creates a new indicator engine.
func NewEngine() *Engine {
	return &Engine{}
}

// minCandles is the smallest window the engine will analyze.
const minCandles = 30

// Default periods.
const (
	rsiPeriod  = 14
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
	atrPeriod  = 14
)

// CalculateAll computes RSI(14), MACD, and ATR(14) over the visible window.
// Candles arrive newest-first; computation is oldest-to-newest internally.
// Any computation failure yields an empty snapshot rather than an error:
// downstream treats it as "no indicator signal".
func (e *Engine) CalculateAll(candles []model.Candle) model.IndicatorSnapshot {
	if len(candles) < minCandles {
		return model.IndicatorSnapshot{}
	}

	n := len(candles)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, c := range candles {
		closes[n-1-i] = c.Close
		highs[n-1-i] = c.High
		lows[n-1-i] = c.Low
	}

	rsi, err := RSI(closes, rsiPeriod)
	if err != nil {
		log.Printf("[WARN] RSI calculation failed: %v", err)
		return model.IndicatorSnapshot{}
	}

	macdLine, signalLine, histogram, err := MACD(closes, macdFast, macdSlow, macdSignal)
	if err != nil {
		log.Printf("[WARN] MACD calculation failed: %v", err)
		return model.IndicatorSnapshot{}
	}

	atr, err := ATR(highs, lows, closes, atrPeriod)
	if err != nil {
		log.Printf("[WARN] ATR calculation failed: %v", err)
		return model.IndicatorSnapshot{}
	}

	return model.IndicatorSnapshot{
		RSI:  &model.RSIResult{Value: rsi, Signal: classifyRSI(rsi)},
		MACD: &model.MACDResult{Line: macdLine, SignalLine: signalLine, Histogram: histogram, Trend: classifyMACD(macdLine, signalLine, histogram)},
		ATR:  atr,
	}
}

func classifyRSI(value float64) model.RSISignal {
	switch {
	case value > 70:
		return model.Overbought
	case value < 30:
		return model.Oversold
	default:
		return model.RSINeutral
	}
}

func classifyMACD(line, signalLine, histogram float64) model.MACDTrend {
	switch {
	case histogram > 0 && line > signalLine:
		return model.MACDBullish
	case histogram < 0 && line < signalLine:
		return model.MACDBearish
	default:
		return model.MACDNeutral
	}
}
