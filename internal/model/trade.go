package model

import "time"

// Outcome is the settlement state of a placed trade.
type Outcome string

const (
	Win     Outcome = "WIN"
	Loss    Outcome = "LOSS"
	Pending Outcome = "PENDING"
	Failed  Outcome = "FAILED"
)

// TradeRecord is one entry in the orchestrator's append-only trade history.
type TradeRecord struct {
	ID         string    `json:"id"`
	Asset      string    `json:"asset"`
	Direction  Direction `json:"direction"`
	Amount     float64   `json:"amount"`
	Confidence float64   `json:"confidence"`
	Outcome    Outcome   `json:"outcome"`
	CreatedAt  time.Time `json:"created_at"`
}

// TradeResult is the gateway's response to a trade placement.
type TradeResult struct {
	ID      string  `json:"id"`
	Outcome Outcome `json:"outcome"`
}

// Experience is a settled trade fed back into the agent for retraining.
type Experience struct {
	Features   []float64 `json:"features"`
	Outcome    Outcome   `json:"outcome"`
	Confidence float64   `json:"confidence"`
}

// Tournament describes a venue tournament as reported by the gateway.
type Tournament struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	EntryFee float64 `json:"entry_fee"`
	Status   string  `json:"status"`
}
