package bot

import (
	"fmt"
	"strings"

	"OptionSentinel/internal/agent"
	"OptionSentinel/internal/knowledge"
	"OptionSentinel/internal/model"
)

// Status is a point-in-time snapshot of the bot for operators.
type Status struct {
	IsRunning        bool        `json:"is_running"`
	IsTrading        bool        `json:"is_trading"`
	Connected        bool        `json:"connected"`
	SimulationMode   bool        `json:"simulation_mode"`
	Balance          float64     `json:"balance"`
	CurrentAsset     string      `json:"current_asset"`
	CurrentTimeframe int         `json:"current_timeframe"`
	MinConfidence    float64     `json:"min_confidence"`
	PatternsDetected int         `json:"patterns_detected"`
	TradesThisHour   int         `json:"trades_this_hour"`
	TotalTrades      int         `json:"total_trades"`
	CandleCount      int             `json:"candle_count"`
	AgentStats       agent.Stats     `json:"agent_stats"`
	KnowledgeStats   knowledge.Stats `json:"knowledge_stats"`
}

// MarketAnalysis is the latest pipeline output for the active series.
type MarketAnalysis struct {
	Asset      string                 `json:"asset"`
	Timeframe  int                    `json:"timeframe"`
	Candles    int                    `json:"candles"`
	Patterns   []model.Pattern        `json:"patterns"`
	Levels     model.LevelSet         `json:"levels"`
	Indicators model.IndicatorSnapshot `json:"indicators"`
	Trend      model.Trend            `json:"trend"`
}

// TradeStats aggregates the session's trade history.
type TradeStats struct {
	History []model.TradeRecord `json:"history"`
	Wins    int                 `json:"wins"`
	Losses  int                 `json:"losses"`
	WinRate float64             `json:"win_rate"`
}

// trendPeriod matches the window the pattern detector uses for trend calls.
const trendPeriod = 20

// maxHistoryView caps how much trade history the stats view returns.
const maxHistoryView = 50

// Status reports the bot's current operational state.
func (b *Bot) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := model.SeriesKey{Asset: b.asset, Timeframe: b.timeframe}
	var ks knowledge.Stats
	if b.learner != nil {
		ks = b.learner.Stats()
	}
	return Status{
		IsRunning:        b.running,
		IsTrading:        b.trading,
		Connected:        b.gateway.IsConnected(),
		SimulationMode:   b.gateway.IsSimulation(),
		Balance:          b.gateway.Balance(),
		CurrentAsset:     b.asset,
		CurrentTimeframe: b.timeframe,
		MinConfidence:    b.minConfidence,
		PatternsDetected: len(b.lastPatterns),
		TradesThisHour:   b.tradesThisHour,
		TotalTrades:      len(b.history),
		CandleCount:      b.candles.Len(key),
		AgentStats:       b.agent.GetStats(),
		KnowledgeStats:   ks,
	}
}

// MarketAnalysis returns the most recent analysis of the active series.
func (b *Bot) MarketAnalysis() MarketAnalysis {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := model.SeriesKey{Asset: b.asset, Timeframe: b.timeframe}
	series := b.candles.Series(key)

	pats := b.lastPatterns
	if len(pats) > 10 {
		pats = pats[:10]
	}

	return MarketAnalysis{
		Asset:      b.asset,
		Timeframe:  b.timeframe,
		Candles:    len(series),
		Patterns:   pats,
		Levels:     b.lastLevels,
		Indicators: b.lastIndicators,
		Trend:      b.patterns.Trend(series, trendPeriod),
	}
}

// TradeStats summarizes the session history, newest trade first.
func (b *Bot) TradeStats() TradeStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.history)
	limit := n
	if limit > maxHistoryView {
		limit = maxHistoryView
	}

	stats := TradeStats{History: make([]model.TradeRecord, 0, limit)}
	for i := n - 1; i >= n-limit; i-- {
		stats.History = append(stats.History, b.history[i])
	}
	for _, rec := range b.history {
		switch rec.Outcome {
		case model.Win:
			stats.Wins++
		case model.Loss:
			stats.Losses++
		}
	}
	if settled := stats.Wins + stats.Losses; settled > 0 {
		stats.WinRate = float64(stats.Wins) / float64(settled)
	}
	return stats
}

// FormatTradeResult renders one settled (or pending) trade as a message.
func FormatTradeResult(rec model.TradeRecord) string {
	var icon string
	switch rec.Outcome {
	case model.Win:
		icon = "✅ WIN"
	case model.Loss:
		icon = "❌ LOSS"
	case model.Pending:
		icon = "⏳ PENDING"
	default:
		icon = "⚠️ FAILED"
	}
	return fmt.Sprintf("%s | %s %s $%.2f (%.0f%% confidence)",
		icon, rec.Direction, rec.Asset, rec.Amount, rec.Confidence*100)
}

// FormatStatus renders the status snapshot as a multi-line message.
func FormatStatus(s Status) string {
	var sb strings.Builder
	sb.WriteString("📊 Bot Status\n")
	fmt.Fprintf(&sb, "Running: %v | Trading: %v\n", s.IsRunning, s.IsTrading)
	fmt.Fprintf(&sb, "Connected: %v (simulation: %v)\n", s.Connected, s.SimulationMode)
	fmt.Fprintf(&sb, "Balance: $%.2f\n", s.Balance)
	fmt.Fprintf(&sb, "Asset: %s @ %ds (%d candles)\n", s.CurrentAsset, s.CurrentTimeframe, s.CandleCount)
	fmt.Fprintf(&sb, "Min confidence: %.2f\n", s.MinConfidence)
	fmt.Fprintf(&sb, "Patterns: %d | Trades this hour: %d | Total: %d\n",
		s.PatternsDetected, s.TradesThisHour, s.TotalTrades)
	fmt.Fprintf(&sb, "Agent: trained=%v, experiences=%d, win rate %.0f%%",
		s.AgentStats.IsTrained, s.AgentStats.TotalExperiences, s.AgentStats.WinRate*100)
	return sb.String()
}

// FormatStats renders the trade statistics as a multi-line message.
func FormatStats(s TradeStats) string {
	var sb strings.Builder
	sb.WriteString("📈 Trade Stats\n")
	fmt.Fprintf(&sb, "Wins: %d | Losses: %d | Win rate: %.0f%%\n", s.Wins, s.Losses, s.WinRate*100)
	limit := len(s.History)
	if limit > 5 {
		limit = 5
	}
	for _, rec := range s.History[:limit] {
		sb.WriteString(FormatTradeResult(rec))
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}
