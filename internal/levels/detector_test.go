package levels

import (
	"math"
	"testing"

	"OptionSentinel/internal/model"
)

// flat is a baseline candle with no extreme.
func flat() model.Candle {
	return model.Candle{Open: 1.000, High: 1.002, Low: 0.998, Close: 1.000}
}

func TestFindSupportResistance_SinglePivot(t *testing.T) {
	d := NewDetector(DefaultTolerance)

	candles := make([]model.Candle, 9)
	for i := range candles {
		candles[i] = flat()
	}
	// One candle is both the highest high and the lowest low of its window.
	candles[4].High = 1.010
	candles[4].Low = 0.985

	set := d.FindSupportResistance(candles, 3)

	if len(set.Resistance) != 1 {
		t.Fatalf("expected 1 resistance, got %d", len(set.Resistance))
	}
	r := set.Resistance[0]
	if r.Price != 1.010 || r.Touches != 1 || r.Strength != 0.6 {
		t.Errorf("unexpected resistance level: %+v", r)
	}
	if math.Abs(r.Distance-0.010) > 1e-9 {
		t.Errorf("expected distance 0.010 from close 1.000, got %.5f", r.Distance)
	}

	if len(set.Support) != 1 {
		t.Fatalf("expected 1 support, got %d", len(set.Support))
	}
	if set.Support[0].Price != 0.985 {
		t.Errorf("expected support at 0.985, got %.5f", set.Support[0].Price)
	}
}

func TestFindSupportResistance_MergesNearbyLevels(t *testing.T) {
	d := NewDetector(DefaultTolerance)

	candles := make([]model.Candle, 13)
	for i := range candles {
		candles[i] = flat()
	}
	// Two pivots within merge tolerance of each other (0.05% of price).
	candles[4].High = 1.0100
	candles[8].High = 1.01004

	set := d.FindSupportResistance(candles, 3)

	if len(set.Resistance) != 1 {
		t.Fatalf("expected the two pivots to merge into 1 level, got %d", len(set.Resistance))
	}
	if set.Resistance[0].Touches != 2 {
		t.Errorf("expected 2 touches on merged level, got %d", set.Resistance[0].Touches)
	}
}

func TestFindSupportResistance_CapsPerSide(t *testing.T) {
	d := NewDetector(DefaultTolerance)

	candles := make([]model.Candle, 40)
	for i := range candles {
		candles[i] = flat()
	}
	// Five well-separated resistance pivots; only the 3 nearest survive.
	for n, i := range []int{5, 12, 19, 26, 33} {
		candles[i].High = 1.02 + float64(n)*0.01
	}

	set := d.FindSupportResistance(candles, 3)

	if len(set.Resistance) != 3 {
		t.Fatalf("expected 3 resistance levels, got %d", len(set.Resistance))
	}
	// Sorted nearest-first relative to the current close.
	for i := 1; i < len(set.Resistance); i++ {
		if set.Resistance[i].Distance < set.Resistance[i-1].Distance {
			t.Errorf("levels not sorted by distance: %+v", set.Resistance)
		}
	}
	if set.Resistance[0].Price != 1.02 {
		t.Errorf("expected nearest level 1.02 first, got %.4f", set.Resistance[0].Price)
	}
}

func TestFindSupportResistance_TooFewCandles(t *testing.T) {
	d := NewDetector(DefaultTolerance)

	candles := make([]model.Candle, 6)
	for i := range candles {
		candles[i] = flat()
	}

	set := d.FindSupportResistance(candles, 3)
	if len(set.Support) != 0 || len(set.Resistance) != 0 {
		t.Fatalf("expected empty set below 2*sensitivity+1 candles, got %+v", set)
	}
}
