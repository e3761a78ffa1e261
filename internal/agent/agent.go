package agent

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"OptionSentinel/internal/model"
	"OptionSentinel/internal/storage"
)

// DefaultModelName is the persistence key for the direction model.
const DefaultModelName = "direction"

// minTrainingSamples is how much buffered experience triggers a retrain.
const minTrainingSamples = 50

// Stats is a read-only snapshot of the agent's learning state.
type Stats struct {
	TotalExperiences int     `json:"total_experiences"`
	IsTrained        bool    `json:"is_trained"`
	WinRate          float64 `json:"win_rate"`
}

// Agent fuses pattern, level, and indicator signals with a trained
// classifier's win-probability estimate into a trade directive, and owns the
// experience buffer, retraining trigger, and money-management rules.
type Agent struct {
	mu sync.Mutex

	store     storage.Store
	modelName string

	trained    bool
	scaler     standardScaler
	classifier logisticClassifier
	version    int

	experiences []model.Experience
	minSamples  int
	basePct     float64
}

// New creates an agent, loading any persisted model from the store.
// An absent model is not an error: the agent starts untrained and operates
// on heuristics only.
func New(store storage.Store, basePct float64) *Agent {
	if store == nil {
		store = storage.NewNoopStore()
	}
	if basePct <= 0 {
		basePct = 0.02
	}
	a := &Agent{
		store:      store,
		modelName:  DefaultModelName,
		minSamples: minTrainingSamples,
		basePct:    basePct,
	}
	a.loadModel()
	return a
}

func (a *Agent) loadModel() {
	blob, version, err := a.store.LoadModel(a.modelName)
	if err != nil {
		log.Printf("[WARN] failed to load model: %v, starting untrained", err)
		return
	}
	if blob == nil {
		return
	}
	var state modelState
	if err := json.Unmarshal(blob, &state); err != nil {
		log.Printf("[WARN] failed to decode model blob: %v, starting untrained", err)
		return
	}
	a.scaler = state.Scaler
	a.classifier = state.Classifier
	a.version = version
	a.trained = true
	log.Printf("[INFO] direction model v%d loaded (%d training samples)", version, state.Samples)
}

func (a *Agent) saveModel(samples int) {
	state := modelState{
		Version:    a.version,
		Scaler:     a.scaler,
		Classifier: a.classifier,
		Samples:    samples,
		TrainedAt:  time.Now(),
	}
	blob, err := json.Marshal(state)
	if err != nil {
		log.Printf("[ERROR] failed to encode model: %v", err)
		return
	}
	if err := a.store.SaveModel(a.modelName, blob, a.version); err != nil {
		log.Printf("[ERROR] failed to persist model: %v", err)
	}
}

// IsTrained reports whether a fitted classifier is in use.
func (a *Agent) IsTrained() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trained
}

// ExtractFeatures builds the classifier feature vector from the decision
// context. Returns nil when indicators or candles are missing.
func (a *Agent) ExtractFeatures(ctx model.DecisionContext) []float64 {
	if ctx.Indicators.Empty() || len(ctx.Candles) == 0 {
		return nil
	}

	rsi := 50.0
	if ctx.Indicators.RSI != nil {
		rsi = ctx.Indicators.RSI.Value
	}
	macdHist := 0.0
	if ctx.Indicators.MACD != nil {
		macdHist = ctx.Indicators.MACD.Histogram
	}
	atr := ctx.Indicators.ATR
	if atr == 0 {
		atr = 0.001
	}

	bodyToATR := ctx.Candles[0].Body() / atr

	var callStrength, putStrength float64
	for _, p := range ctx.Patterns {
		switch p.Signal {
		case model.Call:
			callStrength += p.Strength
		case model.Put:
			putStrength += p.Strength
		}
	}

	return []float64{rsi, macdHist, atr, bodyToATR, callStrength, putStrength}
}

// heuristicScore accumulates directional scores from the top patterns and RSI
// extremes. Indicators alone never dominate: they only add 0.5 at the edges.
func (a *Agent) heuristicScore(ctx model.DecisionContext) (callScore, putScore float64) {
	patterns := ctx.Patterns
	if len(patterns) > 3 {
		patterns = patterns[:3]
	}
	for _, p := range patterns {
		switch p.Signal {
		case model.Call:
			callScore += p.Strength * 1.5
		case model.Put:
			putScore += p.Strength * 1.5
		}
	}

	if ctx.Indicators.RSI != nil {
		switch ctx.Indicators.RSI.Signal {
		case model.Oversold:
			callScore += 0.5
		case model.Overbought:
			putScore += 0.5
		}
	}
	return callScore, putScore
}

// Decide fuses heuristic scores with the classifier's win probability into a
// directive. Confidence is always within [0.5, 0.95].
func (a *Agent) Decide(ctx model.DecisionContext) model.TradeDirective {
	a.mu.Lock()
	defer a.mu.Unlock()

	callScore, putScore := a.heuristicScore(ctx)
	total := callScore + putScore
	if total <= 0.5 {
		return model.TradeDirective{Direction: model.Hold, Confidence: 0.5}
	}

	direction := model.Call
	heuristicConf := callScore / total
	if putScore > callScore {
		direction = model.Put
		heuristicConf = putScore / total
	}

	winProba := 0.5
	if a.trained {
		if features := a.ExtractFeatures(ctx); features != nil {
			p, err := a.predict(features)
			if err != nil {
				log.Printf("[WARN] classifier inference failed: %v, using heuristics only", err)
			} else {
				winProba = p
			}
		}
	}

	confidence := clamp(heuristicConf*0.4+winProba*0.6, 0.5, 0.95)
	return model.TradeDirective{Direction: direction, Confidence: confidence}
}

func (a *Agent) predict(features []float64) (float64, error) {
	scaled, err := a.scaler.transform(features)
	if err != nil {
		return 0, err
	}
	return a.classifier.predictProba(scaled)
}

// AddExperience appends a settled trade to the experience buffer.
func (a *Agent) AddExperience(features []float64, outcome model.Outcome, confidence float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.experiences = append(a.experiences, model.Experience{
		Features:   features,
		Outcome:    outcome,
		Confidence: confidence,
	})
}

// RetrainIfNeeded refits the scaler and classifier once enough experience has
// accumulated. The buffer is cleared only on a successful fit; a failed
// attempt leaves buffer and current model untouched.
func (a *Agent) RetrainIfNeeded() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.experiences) < a.minSamples {
		return
	}

	log.Printf("[INFO] retraining direction model with %d samples", len(a.experiences))

	var x [][]float64
	var y []float64
	for _, exp := range a.experiences {
		if exp.Features == nil {
			continue
		}
		x = append(x, exp.Features)
		label := 0.0
		if exp.Outcome == model.Win {
			label = 1.0
		}
		y = append(y, label)
	}

	if len(x) == 0 || len(x) != len(y) {
		log.Println("[WARN] inconsistent or missing feature data, retraining aborted")
		return
	}

	scaler := standardScaler{}
	scaler.fit(x)
	scaled := make([][]float64, len(x))
	for i, row := range x {
		s, err := scaler.transform(row)
		if err != nil {
			log.Printf("[WARN] retraining failed: %v", err)
			return
		}
		scaled[i] = s
	}

	classifier := logisticClassifier{}
	if err := classifier.fit(scaled, y); err != nil {
		log.Printf("[WARN] retraining failed: %v", err)
		return
	}

	a.scaler = scaler
	a.classifier = classifier
	a.trained = true
	a.version++
	a.saveModel(len(x))
	a.experiences = nil
	log.Printf("[INFO] direction model retrained, now at v%d", a.version)
}

// DetermineExpiration picks a trade duration in seconds from current
// volatility and pattern strength.
func (a *Agent) DetermineExpiration(volatility, patternStrength float64) int {
	var base int
	switch {
	case volatility > 0.002:
		base = 60
	case volatility > 0.001:
		base = 120
	default:
		base = 300
	}

	if patternStrength > 0.8 {
		return base
	}
	return base * 2
}

// TradeAmount sizes the stake from balance and confidence. Output is bounded
// by a $1 floor and 5% of balance.
func (a *Agent) TradeAmount(balance, confidence float64) float64 {
	pct := a.basePct
	switch {
	case confidence < 0.65:
		pct = a.basePct * 0.5
	case confidence < 0.75:
		pct = a.basePct
	default:
		pct = a.basePct * 1.5
	}

	amount := balance * pct
	if limit := balance * 0.05; amount > limit {
		amount = limit
	}
	if amount < 1 {
		amount = 1
	}
	return amount
}

// GetStats returns a snapshot of the agent's learning state. Win rate is
// computed over the current experience buffer.
func (a *Agent) GetStats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := Stats{
		TotalExperiences: len(a.experiences),
		IsTrained:        a.trained,
	}
	if len(a.experiences) > 0 {
		wins := 0
		for _, exp := range a.experiences {
			if exp.Outcome == model.Win {
				wins++
			}
		}
		stats.WinRate = float64(wins) / float64(len(a.experiences))
	}
	return stats
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
