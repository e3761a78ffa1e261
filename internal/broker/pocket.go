package broker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"OptionSentinel/internal/model"
)

// PocketGateway proxies a real venue over a websocket session. Orders are
// submitted asynchronously: PlaceTrade returns PENDING and settlement arrives
// out of band, outside the scope of this client.
type PocketGateway struct {
	url  string
	ssid string

	mu        sync.Mutex
	connected bool
	balance   float64
	subs      map[model.SeriesKey][]CandleCallback

	conn    *websocket.Conn
	writeMu sync.Mutex
	done    chan struct{}
}

// wsMessage is the venue's envelope for both directions.
type wsMessage struct {
	Action string  `json:"action,omitempty"`
	Type   string  `json:"type,omitempty"`
	SSID   string  `json:"ssid,omitempty"`
	Asset  string  `json:"asset,omitempty"`
	Period int     `json:"period,omitempty"`
	Amount float64 `json:"amount,omitempty"`

	Direction string  `json:"direction,omitempty"`
	Duration  int     `json:"duration,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
	Balance   float64 `json:"balance,omitempty"`

	Candle *model.Candle `json:"candle,omitempty"`

	Tournaments []model.Tournament `json:"tournaments,omitempty"`
}

// NewPocketGateway creates a disconnected real-venue gateway.
func NewPocketGateway(url, ssid string) *PocketGateway {
	return &PocketGateway{
		url:  url,
		ssid: ssid,
		subs: make(map[model.SeriesKey][]CandleCallback),
	}
}

// Connect dials the venue, authenticates with the session id, and starts the
// read pump.
func (g *PocketGateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.connected {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, g.url, nil)
	if err != nil {
		return fmt.Errorf("dial venue: %w", err)
	}
	g.conn = conn

	if err := g.write(wsMessage{Action: "auth", SSID: g.ssid}); err != nil {
		conn.Close()
		return fmt.Errorf("authenticate: %w", err)
	}

	var hello wsMessage
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return fmt.Errorf("read auth response: %w", err)
	}
	if hello.Type != "authenticated" {
		conn.Close()
		return fmt.Errorf("authentication rejected: %q", hello.Type)
	}

	g.balance = hello.Balance
	g.connected = true
	g.done = make(chan struct{})
	go g.readPump(conn)

	log.Printf("[INFO] venue connected, balance: $%.2f", g.balance)
	return nil
}

// Disconnect tears down the session and drops all subscriptions.
func (g *PocketGateway) Disconnect() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.connected {
		return
	}
	close(g.done)
	g.conn.Close()
	g.connected = false
	g.balance = 0
	g.subs = make(map[model.SeriesKey][]CandleCallback)
	log.Println("[INFO] venue disconnected")
}

func (g *PocketGateway) readPump(conn *websocket.Conn) {
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			select {
			case <-g.done:
			default:
				log.Printf("[ERROR] venue read: %v", err)
			}
			return
		}

		switch msg.Type {
		case "candle":
			if msg.Candle != nil {
				g.dispatch(*msg.Candle)
			}
		case "balance":
			g.mu.Lock()
			g.balance = msg.Balance
			g.mu.Unlock()
		}
	}
}

func (g *PocketGateway) dispatch(c model.Candle) {
	g.mu.Lock()
	cbs := make([]CandleCallback, len(g.subs[c.Key()]))
	copy(cbs, g.subs[c.Key()])
	g.mu.Unlock()

	for _, cb := range cbs {
		cb(c)
	}
}

func (g *PocketGateway) write(msg wsMessage) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	return g.conn.WriteJSON(msg)
}

// Subscribe registers a callback and asks the venue for the candle stream.
func (g *PocketGateway) Subscribe(asset string, timeframe int, cb CandleCallback) error {
	g.mu.Lock()
	if !g.connected {
		g.mu.Unlock()
		return errNotConnected
	}
	key := model.SeriesKey{Asset: asset, Timeframe: timeframe}
	first := len(g.subs[key]) == 0
	g.subs[key] = append(g.subs[key], cb)
	g.mu.Unlock()

	if !first {
		return nil
	}
	return g.write(wsMessage{Action: "subscribe", Asset: asset, Period: timeframe})
}

// Unsubscribe drops the series and tells the venue to stop the stream.
func (g *PocketGateway) Unsubscribe(asset string, timeframe int) {
	g.mu.Lock()
	if !g.connected {
		g.mu.Unlock()
		return
	}
	delete(g.subs, model.SeriesKey{Asset: asset, Timeframe: timeframe})
	g.mu.Unlock()

	if err := g.write(wsMessage{Action: "unsubscribe", Asset: asset, Period: timeframe}); err != nil {
		log.Printf("[WARN] unsubscribe %s/%ds: %v", asset, timeframe, err)
	}
}

// PlaceTrade submits the order and returns PENDING; settlement is resolved by
// the venue asynchronously.
func (g *PocketGateway) PlaceTrade(asset string, direction model.Direction, amount float64, duration int) (model.TradeResult, error) {
	g.mu.Lock()
	if !g.connected {
		g.mu.Unlock()
		return model.TradeResult{}, errNotConnected
	}
	g.mu.Unlock()

	requestID := uuid.NewString()
	err := g.write(wsMessage{
		Action:    "order",
		Asset:     asset,
		Direction: string(direction),
		Amount:    amount,
		Duration:  duration,
		RequestID: requestID,
	})
	if err != nil {
		return model.TradeResult{ID: requestID, Outcome: model.Failed}, fmt.Errorf("submit order: %w", err)
	}
	return model.TradeResult{ID: requestID, Outcome: model.Pending}, nil
}

func (g *PocketGateway) Balance() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balance
}

func (g *PocketGateway) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

func (g *PocketGateway) IsSimulation() bool { return false }

// Tournaments is not part of the streaming session this client maintains.
func (g *PocketGateway) Tournaments() ([]model.Tournament, error) {
	return nil, fmt.Errorf("tournament listing not supported by the live session")
}

func (g *PocketGateway) JoinTournament(id string) error {
	if !g.IsConnected() {
		return errNotConnected
	}
	return g.write(wsMessage{Action: "join_tournament", RequestID: id})
}
