package bot

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"OptionSentinel/internal/agent"
	"OptionSentinel/internal/broker"
	"OptionSentinel/internal/candles"
	"OptionSentinel/internal/indicators"
	"OptionSentinel/internal/knowledge"
	"OptionSentinel/internal/levels"
	"OptionSentinel/internal/model"
	"OptionSentinel/internal/patterns"
	"OptionSentinel/internal/storage"
)

// levelSensitivity is the extrema window used for S/R detection.
const levelSensitivity = 3

// Notifier pushes human-readable trade events to an external channel.
type Notifier interface {
	Send(text string) error
}

// Options configures a Bot at composition time.
type Options struct {
	Asset         string
	Timeframes    []int // seconds; the first entry is the active analysis timeframe
	MinConfidence float64
}

// Bot is the orchestration state machine: it owns the active asset/timeframe,
// the trading-enabled flag, dispatches the per-candle pipeline, records trade
// history, and feeds settled outcomes back into the agent.
type Bot struct {
	mu sync.Mutex

	gateway broker.Gateway
	agent   *agent.Agent
	store   storage.Store

	candles   *candles.Store
	patterns  *patterns.Detector
	levels    *levels.Detector
	indEngine *indicators.Engine

	running bool
	trading bool

	asset         string
	timeframe     int
	timeframes    []int
	minConfidence float64

	lastPatterns   []model.Pattern
	lastLevels     model.LevelSet
	lastIndicators model.IndicatorSnapshot

	history        []model.TradeRecord
	tradesThisHour int

	notifier Notifier
	learner  *knowledge.Learner
	stopCh   chan struct{}
}

// New assembles a bot from its collaborators.
func New(gw broker.Gateway, ag *agent.Agent, store storage.Store, opts Options) *Bot {
	if store == nil {
		store = storage.NewNoopStore()
	}
	if len(opts.Timeframes) == 0 {
		opts.Timeframes = []int{60, 300, 900}
	}
	if opts.Asset == "" {
		opts.Asset = "EURUSD_otc"
	}
	if opts.MinConfidence == 0 {
		opts.MinConfidence = 0.75
	}
	return &Bot{
		gateway:       gw,
		agent:         ag,
		store:         store,
		candles:       candles.NewStore(),
		patterns:      patterns.NewDetector(),
		levels:        levels.NewDetector(levels.DefaultTolerance),
		indEngine:     indicators.NewEngine(),
		asset:         opts.Asset,
		timeframe:     opts.Timeframes[0],
		timeframes:    opts.Timeframes,
		minConfidence: clamp(opts.MinConfidence, 0.5, 0.95),
	}
}

// SetNotifier attaches an optional trade-event notifier.
func (b *Bot) SetNotifier(n Notifier) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifier = n
}

// SetLearner attaches an optional knowledge learner so its stats show up in
// the status view.
func (b *Bot) SetLearner(l *knowledge.Learner) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.learner = l
}

// Start connects the gateway and subscribes the active asset across all
// configured timeframes. A connect failure aborts the transition and the bot
// stays idle. Starting an already-running bot is a no-op.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}

	if err := b.gateway.Connect(ctx); err != nil {
		return fmt.Errorf("connect gateway: %w", err)
	}

	for _, tf := range b.timeframes {
		if err := b.gateway.Subscribe(b.asset, tf, b.HandleCandle); err != nil {
			b.gateway.Disconnect()
			return fmt.Errorf("subscribe %s/%ds: %w", b.asset, tf, err)
		}
		log.Printf("[INFO] subscribed to %s at %ds", b.asset, tf)
	}

	b.running = true
	b.stopCh = make(chan struct{})
	go b.idleLoop(b.stopCh)

	log.Printf("[INFO] bot started (simulation=%v, balance=$%.2f)",
		b.gateway.IsSimulation(), b.gateway.Balance())
	return nil
}

// idleLoop keeps a periodic tick while running; the work itself is driven by
// candle events.
func (b *Bot) idleLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		case <-stop:
			return
		}
	}
}

// Stop unsubscribes everything and disconnects. Stopping an idle bot is a
// no-op. Settlements already in flight are not cancelled.
func (b *Bot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}

	for _, tf := range b.timeframes {
		b.gateway.Unsubscribe(b.asset, tf)
	}
	b.gateway.Disconnect()
	b.running = false
	close(b.stopCh)
	log.Println("[INFO] bot stopped")
}

// StartTrading enables trade placement; the connection state is unaffected.
func (b *Bot) StartTrading() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trading = true
	log.Println("[INFO] trading ENABLED")
}

// StopTrading disables trade placement without touching market data flow.
func (b *Bot) StopTrading() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trading = false
	log.Println("[WARN] trading DISABLED")
}

// SetAsset switches the active asset. While running, the old subscriptions
// are dropped and the new asset is subscribed atomically with the update.
func (b *Bot) SetAsset(asset string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		b.asset = asset
		log.Printf("[INFO] active asset set to %s, will subscribe on start", asset)
		return nil
	}

	for _, tf := range b.timeframes {
		b.gateway.Unsubscribe(b.asset, tf)
	}
	b.asset = asset
	for _, tf := range b.timeframes {
		if err := b.gateway.Subscribe(asset, tf, b.HandleCandle); err != nil {
			return fmt.Errorf("resubscribe %s/%ds: %w", asset, tf, err)
		}
	}
	log.Printf("[INFO] active asset changed to %s, resubscribed", asset)
	return nil
}

// SetTimeframe switches the active analysis timeframe. Values outside the
// configured set are rejected and the current timeframe is unchanged.
func (b *Bot) SetTimeframe(tf int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, known := range b.timeframes {
		if tf == known {
			b.timeframe = tf
			log.Printf("[INFO] active timeframe changed to %ds", tf)
			return nil
		}
	}
	return fmt.Errorf("timeframe %ds not in configured set %v", tf, b.timeframes)
}

// SetMinConfidence clamps and applies the trade threshold.
func (b *Bot) SetMinConfidence(c float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minConfidence = clamp(c, 0.5, 0.95)
	log.Printf("[INFO] minimum confidence set to %.2f", b.minConfidence)
}

// HandleCandle ingests one candle and, for the active series, reruns the
// analysis pipeline and possibly places a trade. It is the gateway's
// subscription callback.
func (b *Bot) HandleCandle(c model.Candle) {
	b.candles.Ingest(c)

	b.mu.Lock()
	if c.Asset != b.asset || c.Timeframe != b.timeframe {
		b.mu.Unlock()
		return
	}

	series := b.candles.Series(c.Key())
	b.lastPatterns = b.patterns.Analyze(series)
	b.lastLevels = b.levels.FindSupportResistance(series, levelSensitivity)
	b.lastIndicators = b.indEngine.CalculateAll(series)

	if !b.trading || !b.running {
		b.mu.Unlock()
		return
	}

	dctx := model.DecisionContext{
		Asset:      c.Asset,
		Timeframe:  c.Timeframe,
		Candles:    series,
		Patterns:   b.lastPatterns,
		Levels:     b.lastLevels,
		Indicators: b.lastIndicators,
		Balance:    b.gateway.Balance(),
	}
	minConfidence := b.minConfidence
	patternStrength := b.patterns.Strength(b.lastPatterns)
	b.mu.Unlock()

	directive := b.agent.Decide(dctx)
	log.Printf("[INFO] agent suggestion: %s at %.0f%% confidence", directive.Direction, directive.Confidence*100)

	if directive.Direction == model.Hold || directive.Confidence < minConfidence {
		return
	}

	volatility := dctx.Indicators.ATR
	if volatility == 0 {
		volatility = 0.001
	}
	expiration := b.agent.DetermineExpiration(volatility, patternStrength)
	amount := b.agent.TradeAmount(dctx.Balance, directive.Confidence)
	features := b.agent.ExtractFeatures(dctx)

	b.mu.Lock()
	b.tradesThisHour++
	b.mu.Unlock()

	log.Printf("[INFO] PLACING TRADE: %s %s $%.2f at %.0f%% confidence, exp %ds",
		directive.Direction, c.Asset, amount, directive.Confidence*100, expiration)

	// Settlement can outlast candle delivery and even a Stop; run it on its
	// own goroutine so the series dispatcher is never blocked.
	go b.placeTrade(c.Asset, directive, amount, expiration, features)
}

// placeTrade executes the order, records the result, and feeds resolved
// outcomes back into the agent.
func (b *Bot) placeTrade(asset string, directive model.TradeDirective, amount float64, expiration int, features []float64) {
	result, err := b.gateway.PlaceTrade(asset, directive.Direction, amount, expiration)
	if err != nil {
		log.Printf("[ERROR] trade placement failed: %v", err)
		result.Outcome = model.Failed
	}

	rec := model.TradeRecord{
		ID:         result.ID,
		Asset:      asset,
		Direction:  directive.Direction,
		Amount:     amount,
		Confidence: directive.Confidence,
		Outcome:    result.Outcome,
		CreatedAt:  time.Now(),
	}

	b.mu.Lock()
	b.history = append(b.history, rec)
	notifier := b.notifier
	b.mu.Unlock()

	if err := b.store.SaveTrade(rec); err != nil {
		log.Printf("[ERROR] save trade: %v", err)
	}
	if notifier != nil {
		if err := notifier.Send(FormatTradeResult(rec)); err != nil {
			log.Printf("[ERROR] notify trade: %v", err)
		}
	}

	// PENDING means the venue settles asynchronously; only resolved outcomes
	// become training experience.
	if result.Outcome == model.Win || result.Outcome == model.Loss {
		b.agent.AddExperience(features, result.Outcome, directive.Confidence)
		b.agent.RetrainIfNeeded()
	}
}

// ResetHourlyCounter zeroes the trades-this-hour counter; wired to an hourly
// schedule by the composition root.
func (b *Bot) ResetHourlyCounter() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tradesThisHour = 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
