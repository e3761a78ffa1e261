package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionSentinel/internal/model"
	"OptionSentinel/internal/storage"
)

// memStore captures model persistence for assertions.
type memStore struct {
	storage.NoopStore
	blob    []byte
	version int
}

func (m *memStore) SaveModel(_ string, blob []byte, version int) error {
	m.blob = blob
	m.version = version
	return nil
}

func (m *memStore) LoadModel(_ string) ([]byte, int, error) {
	return m.blob, m.version, nil
}

func strongCallContext() model.DecisionContext {
	rsi := &model.RSIResult{Value: 25, Signal: model.Oversold}
	return model.DecisionContext{
		Asset:     "EURUSD_otc",
		Timeframe: 60,
		Candles:   []model.Candle{{Open: 1.095, High: 1.103, Low: 1.094, Close: 1.102}},
		Patterns: []model.Pattern{
			{Name: "bullish_engulfing", Signal: model.Call, Strength: 0.85},
		},
		Indicators: model.IndicatorSnapshot{RSI: rsi, ATR: 0.0015},
		Balance:    10000,
	}
}

func TestDecide_HoldOnWeakSignals(t *testing.T) {
	a := New(nil, 0)

	// Indicators alone contribute at most 0.5, which never clears the bar.
	ctx := model.DecisionContext{
		Candles: []model.Candle{{Open: 1.1, High: 1.101, Low: 1.099, Close: 1.1005}},
		Indicators: model.IndicatorSnapshot{
			RSI: &model.RSIResult{Value: 25, Signal: model.Oversold},
			ATR: 0.001,
		},
	}
	d := a.Decide(ctx)
	assert.Equal(t, model.Hold, d.Direction)
	assert.Equal(t, 0.5, d.Confidence)

	// No signals at all.
	d = a.Decide(model.DecisionContext{})
	assert.Equal(t, model.Hold, d.Direction)
}

func TestDecide_UntrainedFusion(t *testing.T) {
	a := New(nil, 0)

	d := a.Decide(strongCallContext())
	assert.Equal(t, model.Call, d.Direction)
	// Heuristic share is 1.0, untrained win probability sits at 0.5:
	// 0.4*1.0 + 0.6*0.5 = 0.7.
	assert.InDelta(t, 0.7, d.Confidence, 1e-9)
}

func TestDecide_ConfidenceBounds(t *testing.T) {
	a := New(nil, 0)

	contexts := []model.DecisionContext{
		strongCallContext(),
		{
			Candles: []model.Candle{{Open: 1.1, High: 1.11, Low: 1.09, Close: 1.095}},
			Patterns: []model.Pattern{
				{Signal: model.Put, Strength: 0.85},
				{Signal: model.Put, Strength: 0.85},
				{Signal: model.Put, Strength: 0.85},
				{Signal: model.Put, Strength: 0.85},
			},
			Indicators: model.IndicatorSnapshot{
				RSI: &model.RSIResult{Value: 80, Signal: model.Overbought},
				ATR: 0.002,
			},
		},
	}
	for _, ctx := range contexts {
		d := a.Decide(ctx)
		assert.GreaterOrEqual(t, d.Confidence, 0.5)
		assert.LessOrEqual(t, d.Confidence, 0.95)
	}
}

func TestExtractFeatures(t *testing.T) {
	a := New(nil, 0)

	ctx := strongCallContext()
	features := a.ExtractFeatures(ctx)
	require.Len(t, features, 6)
	assert.Equal(t, 25.0, features[0])                         // RSI
	assert.Equal(t, 0.0, features[1])                          // MACD histogram absent
	assert.Equal(t, 0.0015, features[2])                       // ATR
	assert.InDelta(t, ctx.Candles[0].Body()/0.0015, features[3], 1e-9)
	assert.Equal(t, 0.85, features[4]) // call strength sum
	assert.Equal(t, 0.0, features[5])  // put strength sum

	// Missing indicators or candles yield no features.
	assert.Nil(t, a.ExtractFeatures(model.DecisionContext{Candles: ctx.Candles}))
	assert.Nil(t, a.ExtractFeatures(model.DecisionContext{Indicators: ctx.Indicators}))
}

func TestDetermineExpiration(t *testing.T) {
	a := New(nil, 0)

	tests := []struct {
		volatility float64
		strength   float64
		want       int
	}{
		{0.0025, 0.9, 60},
		{0.0025, 0.5, 120},
		{0.0015, 0.9, 120},
		{0.0015, 0.5, 240},
		{0.0005, 0.9, 300},
		{0.0005, 0.5, 600},
	}
	for _, tt := range tests {
		got := a.DetermineExpiration(tt.volatility, tt.strength)
		assert.Equal(t, tt.want, got, "vol=%.4f strength=%.1f", tt.volatility, tt.strength)
	}
}

func TestTradeAmount(t *testing.T) {
	a := New(nil, 0.02)

	assert.InDelta(t, 10.0, a.TradeAmount(1000, 0.60), 1e-9) // half risk below 0.65
	assert.InDelta(t, 20.0, a.TradeAmount(1000, 0.70), 1e-9) // base risk below 0.75
	assert.InDelta(t, 30.0, a.TradeAmount(1000, 0.80), 1e-9) // 1.5x above

	// Floor at $1.
	assert.Equal(t, 1.0, a.TradeAmount(10, 0.60))

	// Cap at 5% of balance.
	aggressive := New(nil, 0.04)
	assert.InDelta(t, 50.0, aggressive.TradeAmount(1000, 0.90), 1e-9)
}

func TestRetrain_ClearsBufferAndPersists(t *testing.T) {
	store := &memStore{}
	a := New(store, 0.02)

	for i := 0; i < minTrainingSamples; i++ {
		outcome := model.Win
		if i%3 == 0 {
			outcome = model.Loss
		}
		features := []float64{50 + float64(i%20), float64(i%5) * 0.0001, 0.001, 0.5, 0.85, 0}
		a.AddExperience(features, outcome, 0.75)
	}

	a.RetrainIfNeeded()

	assert.True(t, a.IsTrained())
	assert.Equal(t, 0, a.GetStats().TotalExperiences, "buffer must clear on success")
	require.NotNil(t, store.blob, "model must be persisted")
	assert.Equal(t, 1, store.version)

	// A fresh agent rehydrates the trained model from the store.
	reloaded := New(store, 0.02)
	assert.True(t, reloaded.IsTrained())
}

func TestRetrain_BelowThresholdIsNoop(t *testing.T) {
	a := New(nil, 0.02)
	for i := 0; i < minTrainingSamples-1; i++ {
		a.AddExperience([]float64{50, 0, 0.001, 0.5, 0.85, 0}, model.Win, 0.75)
	}
	a.RetrainIfNeeded()
	assert.False(t, a.IsTrained())
	assert.Equal(t, minTrainingSamples-1, a.GetStats().TotalExperiences)
}

func TestRetrain_FailurePreservesBuffer(t *testing.T) {
	store := &memStore{}
	a := New(store, 0.02)

	// Experiences without feature vectors cannot train anything.
	for i := 0; i < minTrainingSamples; i++ {
		a.AddExperience(nil, model.Win, 0.75)
	}
	a.RetrainIfNeeded()

	assert.False(t, a.IsTrained())
	assert.Equal(t, minTrainingSamples, a.GetStats().TotalExperiences,
		"failed retraining must leave the buffer intact")
	assert.Nil(t, store.blob)
}

func TestGetStats_WinRate(t *testing.T) {
	a := New(nil, 0.02)
	a.AddExperience([]float64{50, 0, 0.001, 0.5, 0.85, 0}, model.Win, 0.75)
	a.AddExperience([]float64{50, 0, 0.001, 0.5, 0.85, 0}, model.Win, 0.75)
	a.AddExperience([]float64{50, 0, 0.001, 0.5, 0.85, 0}, model.Loss, 0.75)

	stats := a.GetStats()
	assert.Equal(t, 3, stats.TotalExperiences)
	assert.InDelta(t, 2.0/3.0, stats.WinRate, 1e-9)
}
