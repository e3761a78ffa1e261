package broker

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"OptionSentinel/internal/model"
)

// Simulation parameters.
const (
	simWinRate     = 0.65
	simPayoutRatio = 0.85

	demoStartBalance = 10000.0
	realStartBalance = 100.0

	dispatchBuffer = 64
)

// DefaultAssets are the synthetic OTC pairs the simulator quotes.
var DefaultAssets = []string{
	"EURUSD_otc", "GBPUSD_otc", "USDJPY_otc", "AUDUSD_otc",
	"EURJPY_otc", "GBPJPY_otc", "EURGBP_otc", "USDCAD_otc",
}

// subscription fans one candle series out to its callbacks. A dedicated
// drain goroutine preserves per-series delivery order while different series
// stay independent.
type subscription struct {
	ch        chan model.Candle
	done      chan struct{}
	mu        sync.Mutex
	callbacks []CandleCallback
}

func (s *subscription) dispatch() {
	for {
		select {
		case c := <-s.ch:
			s.mu.Lock()
			cbs := make([]CandleCallback, len(s.callbacks))
			copy(cbs, s.callbacks)
			s.mu.Unlock()
			for _, cb := range cbs {
				cb(c)
			}
		case <-s.done:
			return
		}
	}
}

// SimGateway synthesizes a market and trade outcomes in place of a real venue.
type SimGateway struct {
	mu sync.Mutex

	demo      bool
	connected bool
	balance   float64

	prices map[string]float64
	subs   map[model.SeriesKey]*subscription

	genCancel context.CancelFunc

	// settleDelay emulates settlement latency as a fraction of trade duration.
	settleDelay func(duration int) time.Duration
}

// NewSimGateway creates a disconnected simulated gateway.
func NewSimGateway(demo bool) *SimGateway {
	g := &SimGateway{
		demo:   demo,
		prices: make(map[string]float64),
		subs:   make(map[model.SeriesKey]*subscription),
		settleDelay: func(duration int) time.Duration {
			return time.Duration(duration) * time.Second / 10
		},
	}
	for _, asset := range DefaultAssets {
		g.prices[asset] = 1.0 + (rand.Float64()-0.5)*0.02
	}
	return g
}

// Connect initializes the balance and marks the gateway connected.
func (g *SimGateway) Connect(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.connected {
		return nil
	}
	g.connected = true
	if g.demo {
		g.balance = demoStartBalance
	} else {
		g.balance = realStartBalance
	}
	log.Printf("[INFO] simulated gateway connected, balance: $%.2f", g.balance)
	return nil
}

// Disconnect stops candle generation, drops all subscriptions, and zeroes the
// balance. Trade settlements already in flight still complete.
func (g *SimGateway) Disconnect() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.genCancel != nil {
		g.genCancel()
		g.genCancel = nil
	}
	for key, sub := range g.subs {
		close(sub.done)
		delete(g.subs, key)
	}
	g.connected = false
	g.balance = 0
	log.Println("[INFO] simulated gateway disconnected")
}

// Subscribe registers a callback for the series and, on the first
// subscription, starts the market generator.
func (g *SimGateway) Subscribe(asset string, timeframe int, cb CandleCallback) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := model.SeriesKey{Asset: asset, Timeframe: timeframe}
	sub, ok := g.subs[key]
	if !ok {
		sub = &subscription{
			ch:   make(chan model.Candle, dispatchBuffer),
			done: make(chan struct{}),
		}
		g.subs[key] = sub
		go sub.dispatch()
	}
	sub.mu.Lock()
	sub.callbacks = append(sub.callbacks, cb)
	sub.mu.Unlock()

	if g.genCancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		g.genCancel = cancel
		go g.generate(ctx)
	}
	return nil
}

// Unsubscribe drops the whole series: pending deliveries are cancelled, but a
// notification already handed to a callback runs to completion.
func (g *SimGateway) Unsubscribe(asset string, timeframe int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := model.SeriesKey{Asset: asset, Timeframe: timeframe}
	if sub, ok := g.subs[key]; ok {
		close(sub.done)
		delete(g.subs, key)
	}
}

// generate ticks once per wall-clock second and emits a candle for every
// series whose period divides the current epoch second.
func (g *SimGateway) generate(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			g.generateAt(t.Unix())
		}
	}
}

// generateAt synthesizes and dispatches candles for the given epoch second.
func (g *SimGateway) generateAt(now int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for key, sub := range g.subs {
		if now%int64(key.Timeframe) != 0 {
			continue
		}

		base, ok := g.prices[key.Asset]
		if !ok {
			base = 1.0
		}

		// Small random walk around the last close.
		closePrice := base * (1 + (rand.Float64()-0.5)*0.001)
		openPrice := base * (1 + (rand.Float64()-0.5)*0.0002)
		high := maxf(openPrice, closePrice) * (1 + 0.0001 + rand.Float64()*0.0002)
		low := minf(openPrice, closePrice) * (1 - 0.0001 - rand.Float64()*0.0002)

		candle := model.Candle{
			Timestamp: now - int64(key.Timeframe),
			Open:      round5(openPrice),
			High:      round5(high),
			Low:       round5(low),
			Close:     round5(closePrice),
			Volume:    float64(100 + rand.Intn(900)),
			Asset:     key.Asset,
			Timeframe: key.Timeframe,
		}
		g.prices[key.Asset] = closePrice

		select {
		case sub.ch <- candle:
		default:
			log.Printf("[WARN] dropping candle for %s/%ds: subscriber too slow", key.Asset, key.Timeframe)
		}
	}
}

// PlaceTrade debits the stake, waits out the settlement latency, then draws
// the outcome and credits the payout on a win. The outcome is always resolved
// before returning.
func (g *SimGateway) PlaceTrade(asset string, direction model.Direction, amount float64, duration int) (model.TradeResult, error) {
	g.mu.Lock()
	if !g.connected {
		g.mu.Unlock()
		return model.TradeResult{}, errNotConnected
	}
	g.balance -= amount
	log.Printf("[INFO] [SIM] trade placed: %s %s $%.2f for %ds, balance: $%.2f",
		direction, asset, amount, duration, g.balance)
	g.mu.Unlock()

	time.Sleep(g.settleDelay(duration))

	result := model.TradeResult{ID: uuid.NewString(), Outcome: model.Loss}
	if rand.Float64() < simWinRate {
		result.Outcome = model.Win
		g.mu.Lock()
		g.balance += amount + amount*simPayoutRatio
		g.mu.Unlock()
	}

	log.Printf("[INFO] [SIM] trade %s settled: %s, balance: $%.2f", result.ID, result.Outcome, g.Balance())
	return result, nil
}

func (g *SimGateway) Balance() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balance
}

func (g *SimGateway) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

func (g *SimGateway) IsSimulation() bool { return true }

// Tournaments returns a static set of synthetic tournaments.
func (g *SimGateway) Tournaments() ([]model.Tournament, error) {
	return []model.Tournament{
		{ID: "sim-free-weekly", Name: "Weekly Free Roll", EntryFee: 0, Status: "active"},
		{ID: "sim-free-daily", Name: "Daily Sprint", EntryFee: 0, Status: "active"},
		{ID: "sim-paid-masters", Name: "Masters Cup", EntryFee: 20, Status: "active"},
		{ID: "sim-free-closed", Name: "Last Month Special", EntryFee: 0, Status: "finished"},
	}, nil
}

func (g *SimGateway) JoinTournament(id string) error {
	log.Printf("[INFO] [SIM] joined tournament %s", id)
	return nil
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func round5(v float64) float64 {
	return float64(int64(v*100000+0.5)) / 100000
}
