package broker

import (
	"context"
	"errors"

	"OptionSentinel/internal/model"
)

// errNotConnected is returned when an operation requires a live connection.
var errNotConnected = errors.New("gateway not connected")

// CandleCallback receives one generated candle per subscription. The gateway
// invokes it to completion before delivering the next candle of the same
// series; across series no ordering is guaranteed.
type CandleCallback func(candle model.Candle)

// Gateway abstracts a binary-options venue: balance, candle subscriptions,
// order placement/settlement, and tournament enrollment.
type Gateway interface {
	Connect(ctx context.Context) error
	Disconnect()
	Subscribe(asset string, timeframe int, cb CandleCallback) error
	Unsubscribe(asset string, timeframe int)
	// PlaceTrade debits the stake and returns the trade result. A simulated
	// venue settles before returning; a real venue returns PENDING.
	PlaceTrade(asset string, direction model.Direction, amount float64, duration int) (model.TradeResult, error)
	Balance() float64
	IsConnected() bool
	IsSimulation() bool
	Tournaments() ([]model.Tournament, error)
	JoinTournament(id string) error
}
