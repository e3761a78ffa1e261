package patterns

import (
	"testing"

	"OptionSentinel/internal/model"
)

// filler is a quiet candle that triggers no pattern when examined as the
// current candle of a pair.
var filler = model.Candle{Open: 1.102, High: 1.104, Low: 1.100, Close: 1.101}

func TestAnalyze_BullishEngulfing(t *testing.T) {
	d := NewDetector()
	candles := []model.Candle{
		// Bullish candle whose body engulfs the previous bearish one.
		{Open: 1.095, High: 1.103, Low: 1.094, Close: 1.102, Timestamp: 300},
		{Open: 1.101, High: 1.103, Low: 1.095, Close: 1.096, Timestamp: 240},
		filler,
	}

	found := d.Analyze(candles)
	if len(found) != 1 {
		t.Fatalf("expected 1 pattern, got %d: %+v", len(found), found)
	}
	p := found[0]
	if p.Name != "bullish_engulfing" {
		t.Errorf("expected bullish_engulfing, got %s", p.Name)
	}
	if p.Signal != model.Call {
		t.Errorf("expected CALL signal, got %s", p.Signal)
	}
	if p.Strength != 0.85 {
		t.Errorf("expected strength 0.85, got %.2f", p.Strength)
	}
	if p.Category != model.Reversal {
		t.Errorf("expected reversal category, got %s", p.Category)
	}
	if p.Timestamp != 300 {
		t.Errorf("expected pattern stamped with current candle time, got %d", p.Timestamp)
	}
}

func TestAnalyze_BearishEngulfing(t *testing.T) {
	d := NewDetector()
	candles := []model.Candle{
		{Open: 1.102, High: 1.103, Low: 1.094, Close: 1.095, Timestamp: 300},
		{Open: 1.096, High: 1.102, Low: 1.094, Close: 1.101, Timestamp: 240},
		filler,
	}

	found := d.Analyze(candles)
	if len(found) != 1 {
		t.Fatalf("expected 1 pattern, got %d: %+v", len(found), found)
	}
	if found[0].Name != "bearish_engulfing" || found[0].Signal != model.Put {
		t.Errorf("expected bearish_engulfing/PUT, got %s/%s", found[0].Name, found[0].Signal)
	}
}

func TestAnalyze_SmallBodyIsNotEngulfing(t *testing.T) {
	d := NewDetector()
	// Contains the previous body but is only 1.1x its size.
	candles := []model.Candle{
		{Open: 1.0945, High: 1.102, Low: 1.094, Close: 1.1000, Timestamp: 300},
		{Open: 1.0995, High: 1.101, Low: 1.094, Close: 1.0945, Timestamp: 240},
		filler,
	}

	for _, p := range d.Analyze(candles) {
		if p.Name == "bullish_engulfing" {
			t.Fatal("1.1x body must not qualify as engulfing")
		}
	}
}

func TestAnalyze_Doji(t *testing.T) {
	d := NewDetector()
	candles := []model.Candle{
		{Open: 1.1000, High: 1.1010, Low: 1.0990, Close: 1.1001, Timestamp: 300},
		filler,
		filler,
	}

	found := d.Analyze(candles)
	if len(found) != 1 {
		t.Fatalf("expected 1 pattern, got %d: %+v", len(found), found)
	}
	p := found[0]
	if p.Name != "doji" || p.Signal != model.Neutral || p.Strength != 0.5 {
		t.Errorf("unexpected doji pattern: %+v", p)
	}
	if p.Category != model.Continuation {
		t.Errorf("expected continuation category, got %s", p.Category)
	}
}

func TestAnalyze_DojiNeedsRange(t *testing.T) {
	d := NewDetector()
	// Flat candle: tiny body but range below the floor.
	candles := []model.Candle{
		{Open: 1.10000, High: 1.10005, Low: 1.10000, Close: 1.10000, Timestamp: 300},
		filler,
		filler,
	}

	if found := d.Analyze(candles); len(found) != 0 {
		t.Fatalf("expected no pattern on near-zero range, got %+v", found)
	}
}

func TestAnalyze_TooFewCandles(t *testing.T) {
	d := NewDetector()
	candles := []model.Candle{
		{Open: 1.095, High: 1.103, Low: 1.094, Close: 1.102},
		{Open: 1.101, High: 1.103, Low: 1.095, Close: 1.096},
	}
	if found := d.Analyze(candles); found != nil {
		t.Fatalf("expected nil for 2 candles, got %+v", found)
	}
}

func TestTrend(t *testing.T) {
	d := NewDetector()

	mkSeries := func(step float64) []model.Candle {
		// Newest-first: index 0 is the most recent close.
		out := make([]model.Candle, 20)
		for i := range out {
			out[i] = model.Candle{Close: 1.2 - float64(i)*step}
		}
		return out
	}

	tests := []struct {
		name string
		step float64
		want model.Trend
	}{
		{"rising", 0.01, model.Uptrend},
		{"falling", -0.01, model.Downtrend},
		{"flat", 0, model.TrendNeutral},
	}
	for _, tt := range tests {
		if got := d.Trend(mkSeries(tt.step), 20); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}

	if got := d.Trend(mkSeries(0.01)[:10], 20); got != model.TrendNeutral {
		t.Errorf("short series: expected neutral, got %s", got)
	}
}

func TestStrength(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name     string
		patterns []model.Pattern
		want     float64
	}{
		{"empty", nil, 0.5},
		{"neutral only", []model.Pattern{{Signal: model.Neutral, Strength: 0.5}}, 0.5},
		{"single call", []model.Pattern{{Signal: model.Call, Strength: 0.85}}, 1.0},
		{"dominant put", []model.Pattern{
			{Signal: model.Put, Strength: 0.85},
			{Signal: model.Put, Strength: 0.85},
			{Signal: model.Call, Strength: 0.85},
		}, 2.0 / 3.0},
	}
	for _, tt := range tests {
		got := d.Strength(tt.patterns)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s: expected %.4f, got %.4f", tt.name, tt.want, got)
		}
	}
}
