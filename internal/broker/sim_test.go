package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionSentinel/internal/model"
)

func connectedSim(t *testing.T) *SimGateway {
	t.Helper()
	g := NewSimGateway(true)
	g.settleDelay = func(int) time.Duration { return 0 }
	require.NoError(t, g.Connect(context.Background()))
	t.Cleanup(g.Disconnect)
	return g
}

func TestConnect_Balances(t *testing.T) {
	demo := NewSimGateway(true)
	require.NoError(t, demo.Connect(context.Background()))
	assert.Equal(t, demoStartBalance, demo.Balance())
	assert.True(t, demo.IsConnected())
	assert.True(t, demo.IsSimulation())
	demo.Disconnect()
	assert.False(t, demo.IsConnected())
	assert.Equal(t, 0.0, demo.Balance())

	real := NewSimGateway(false)
	require.NoError(t, real.Connect(context.Background()))
	assert.Equal(t, realStartBalance, real.Balance())
	real.Disconnect()
}

func TestPlaceTrade_RequiresConnection(t *testing.T) {
	g := NewSimGateway(true)
	_, err := g.PlaceTrade("EURUSD_otc", model.Call, 10, 60)
	assert.ErrorIs(t, err, errNotConnected)
}

func TestPlaceTrade_SettlesBalance(t *testing.T) {
	g := connectedSim(t)

	before := g.Balance()
	result, err := g.PlaceTrade("EURUSD_otc", model.Call, 20, 60)
	require.NoError(t, err)
	require.NotEmpty(t, result.ID)

	after := g.Balance()
	switch result.Outcome {
	case model.Win:
		assert.InDelta(t, before+20*simPayoutRatio, after, 1e-9)
	case model.Loss:
		assert.InDelta(t, before-20, after, 1e-9)
	default:
		t.Fatalf("simulated trade must settle to WIN or LOSS, got %s", result.Outcome)
	}
}

func TestGenerateAt_DeliversAlignedCandles(t *testing.T) {
	g := connectedSim(t)

	received := make(chan model.Candle, 8)
	require.NoError(t, g.Subscribe("EURUSD_otc", 60, func(c model.Candle) {
		received <- c
	}))

	// Off-period second: no candle for a 60s series.
	g.generateAt(61)
	select {
	case c := <-received:
		t.Fatalf("unexpected candle at off-period second: %+v", c)
	case <-time.After(50 * time.Millisecond):
	}

	g.generateAt(120)
	select {
	case c := <-received:
		assert.Equal(t, int64(60), c.Timestamp, "candle is stamped with its open time")
		assert.Equal(t, "EURUSD_otc", c.Asset)
		assert.Equal(t, 60, c.Timeframe)
		assert.GreaterOrEqual(t, c.High, c.Open)
		assert.GreaterOrEqual(t, c.High, c.Close)
		assert.LessOrEqual(t, c.Low, c.Open)
		assert.LessOrEqual(t, c.Low, c.Close)
		assert.Positive(t, c.Volume)
	case <-time.After(time.Second):
		t.Fatal("expected a candle at an aligned second")
	}
}

func TestGenerateAt_PerSeriesOrder(t *testing.T) {
	g := connectedSim(t)

	received := make(chan model.Candle, 16)
	require.NoError(t, g.Subscribe("EURUSD_otc", 60, func(c model.Candle) {
		received <- c
	}))

	for i := 1; i <= 5; i++ {
		g.generateAt(int64(i * 60))
	}

	var last int64 = -1
	for i := 0; i < 5; i++ {
		select {
		case c := <-received:
			assert.Greater(t, c.Timestamp, last, "candles must arrive in series order")
			last = c.Timestamp
		case <-time.After(time.Second):
			t.Fatalf("missing candle %d", i)
		}
	}
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	g := connectedSim(t)

	received := make(chan model.Candle, 8)
	require.NoError(t, g.Subscribe("EURUSD_otc", 60, func(c model.Candle) {
		received <- c
	}))
	g.Unsubscribe("EURUSD_otc", 60)

	g.generateAt(60)
	select {
	case c := <-received:
		t.Fatalf("unexpected candle after unsubscribe: %+v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTournaments_StaticList(t *testing.T) {
	g := connectedSim(t)

	list, err := g.Tournaments()
	require.NoError(t, err)
	assert.Len(t, list, 4)

	free := 0
	for _, tour := range list {
		if tour.EntryFee == 0 && tour.Status == "active" {
			free++
		}
	}
	assert.Equal(t, 2, free)
}
