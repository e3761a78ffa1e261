package candles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"OptionSentinel/internal/model"
)

func mkCandle(ts int64, close float64) model.Candle {
	return model.Candle{
		Timestamp: ts,
		Open:      close - 0.001,
		High:      close + 0.001,
		Low:       close - 0.002,
		Close:     close,
		Asset:     "EURUSD_otc",
		Timeframe: 60,
	}
}

func TestIngest_NewestFirst(t *testing.T) {
	s := NewStore()
	key := model.SeriesKey{Asset: "EURUSD_otc", Timeframe: 60}

	s.Ingest(mkCandle(100, 1.10))
	s.Ingest(mkCandle(160, 1.11))
	s.Ingest(mkCandle(220, 1.12))

	series := s.Series(key)
	assert.Len(t, series, 3)
	assert.Equal(t, int64(220), series[0].Timestamp)
	assert.Equal(t, int64(100), series[2].Timestamp)
}

func TestIngest_HeadReplace(t *testing.T) {
	s := NewStore()
	key := model.SeriesKey{Asset: "EURUSD_otc", Timeframe: 60}

	s.Ingest(mkCandle(100, 1.10))
	s.Ingest(mkCandle(160, 1.11))
	// Partial candle update: same timestamp as the head replaces it.
	s.Ingest(mkCandle(160, 1.15))

	series := s.Series(key)
	assert.Len(t, series, 2)
	assert.Equal(t, 1.15, series[0].Close)
	assert.Equal(t, 1.10, series[1].Close)
}

func TestIngest_Cap(t *testing.T) {
	s := NewStore()
	key := model.SeriesKey{Asset: "EURUSD_otc", Timeframe: 60}

	for i := 0; i < MaxSeriesLen+50; i++ {
		s.Ingest(mkCandle(int64(i*60), 1.10))
	}

	assert.Equal(t, MaxSeriesLen, s.Len(key))
	series := s.Series(key)
	// Newest survives the trim, oldest entries fall off the tail.
	assert.Equal(t, int64((MaxSeriesLen+49)*60), series[0].Timestamp)
}

func TestSeries_IsolatedPerKey(t *testing.T) {
	s := NewStore()
	c := mkCandle(100, 1.10)
	s.Ingest(c)

	c5m := c
	c5m.Timeframe = 300
	s.Ingest(c5m)

	assert.Equal(t, 1, s.Len(model.SeriesKey{Asset: "EURUSD_otc", Timeframe: 60}))
	assert.Equal(t, 1, s.Len(model.SeriesKey{Asset: "EURUSD_otc", Timeframe: 300}))
	assert.Equal(t, 0, s.Len(model.SeriesKey{Asset: "GBPUSD_otc", Timeframe: 60}))
}

func TestSeries_ReturnsCopy(t *testing.T) {
	s := NewStore()
	key := model.SeriesKey{Asset: "EURUSD_otc", Timeframe: 60}
	s.Ingest(mkCandle(100, 1.10))

	out := s.Series(key)
	out[0].Close = 9.99

	assert.Equal(t, 1.10, s.Series(key)[0].Close)
}
