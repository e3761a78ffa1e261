package candles

import (
	"sync"

	"OptionSentinel/internal/model"
)

// MaxSeriesLen caps the number of candles retained per series.
const MaxSeriesLen = 200

// Store keeps a rolling, newest-first candle buffer per (asset, timeframe).
type Store struct {
	mu     sync.RWMutex
	series map[model.SeriesKey][]model.Candle
	maxLen int
}

// NewStore creates an empty store with the default series cap.
func NewStore() *Store {
	return &Store{
		series: make(map[model.SeriesKey][]model.Candle),
		maxLen: MaxSeriesLen,
	}
}

// Ingest adds a candle to its series. A candle whose timestamp equals the
// current head replaces it in place (partial candle update); otherwise it is
// prepended. The series never grows beyond the cap.
func (s *Store) Ingest(c model.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := c.Key()
	buf := s.series[key]

	if len(buf) > 0 && buf[0].Timestamp == c.Timestamp {
		buf[0] = c
		return
	}

	buf = append([]model.Candle{c}, buf...)
	if len(buf) > s.maxLen {
		buf = buf[:s.maxLen]
	}
	s.series[key] = buf
}

// Series returns a copy of the stored candles for the key, newest-first.
func (s *Store) Series(key model.SeriesKey) []model.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.series[key]
	out := make([]model.Candle, len(buf))
	copy(out, buf)
	return out
}

// Len returns the number of candles stored for the key.
func (s *Store) Len(key model.SeriesKey) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series[key])
}
