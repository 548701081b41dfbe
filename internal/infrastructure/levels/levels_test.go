package levels

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screener-engine/internal/domain"
)

func newTestCalculator() *Calculator {
	return NewCalculator(domain.DefaultEngineConfig().Levels)
}

func assertOrdered(t *testing.T, set domain.LevelSet, price float64) {
	t.Helper()
	assert.Less(t, set.Support3, set.Support2)
	assert.Less(t, set.Support2, set.Support1)
	assert.Less(t, set.Support1, price)
	assert.Less(t, price, set.Resistance1)
	assert.Less(t, set.Resistance1, set.Resistance2)
	assert.Less(t, set.Resistance2, set.Resistance3)
}

func TestClassicPivotLevels(t *testing.T) {
	set := newTestCalculator().Calculate(100, 110, 90, nil)

	assert.InDelta(t, 100, set.Pivot, 1e-9)
	assert.InDelta(t, 90, set.Support1, 1e-9)
	assert.InDelta(t, 80, set.Support2, 1e-9)
	assert.InDelta(t, 70, set.Support3, 1e-9)
	assert.InDelta(t, 110, set.Resistance1, 1e-9)
	assert.InDelta(t, 120, set.Resistance2, 1e-9)
	assert.InDelta(t, 130, set.Resistance3, 1e-9)
	assert.Empty(t, set.DynamicSupports)
}

func TestFallbackWithoutRange(t *testing.T) {
	set := newTestCalculator().Calculate(200, 0, 0, nil)

	assert.InDelta(t, 190, set.Support1, 1e-9)
	assert.InDelta(t, 180, set.Support2, 1e-9)
	assert.InDelta(t, 210, set.Resistance1, 1e-9)
	assert.InDelta(t, 220, set.Resistance2, 1e-9)
	assert.Equal(t, 200.0, set.Fibonacci.Level618)
	assert.Equal(t, 200.0, set.Fibonacci.Ext1618)
}

func TestFibonacci(t *testing.T) {
	fib := Fibonacci(105, 110, 90)
	assert.InDelta(t, 110-20*0.236, fib.Level236, 1e-9)
	assert.InDelta(t, 100, fib.Level500, 1e-9)
	assert.InDelta(t, 110-20*0.618, fib.Level618, 1e-9)
	assert.InDelta(t, 105+20*1.272, fib.Ext1272, 1e-9)
	assert.InDelta(t, 105+20*2.618, fib.Ext2618, 1e-9)
}

func TestSanitizeRepairsBrokenLevels(t *testing.T) {
	set := domain.LevelSet{
		Support1: 120, Support2: 130, Support3: math.NaN(),
		Resistance1: 90, Resistance2: 80, Resistance3: 200,
	}
	Sanitize(&set, 100)

	assert.InDelta(t, 95, set.Support1, 1e-9)
	assert.InDelta(t, 90.25, set.Support2, 1e-9)
	assert.InDelta(t, 85.7375, set.Support3, 1e-9)
	assert.InDelta(t, 105, set.Resistance1, 1e-9)
	assert.InDelta(t, 110.25, set.Resistance2, 1e-9)
	assert.Equal(t, 200.0, set.Resistance3)
}

func TestSanitizeHoldsForRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	calc := newTestCalculator()

	for trial := 0; trial < 1000; trial++ {
		price := math.Pow(10, rng.Float64()*8-4)
		high := price * (0.5 + rng.Float64()*1.5)
		low := price * (rng.Float64()*2 - 0.5)

		set := calc.Calculate(price, high, low, nil)
		assertOrdered(t, set, price)

		again := set
		Sanitize(&again, price)
		require.Equal(t, set, again, "sanitize must be idempotent")
	}
}

func TestExtremaRefinement(t *testing.T) {
	// Sawtooth with troughs at 95 and 90 and peaks at 105 and 110.
	pattern := []float64{100, 97, 95, 97, 100, 103, 105, 103, 100, 96, 90, 96, 100, 104, 110, 104}
	candles := make([]domain.Candle, 0, 64)
	for len(candles) < 64 {
		for _, p := range pattern {
			candles = append(candles, domain.Candle{Open: p, High: p, Low: p, Close: p, Volume: 1000})
		}
	}
	candles = candles[:64]

	set := newTestCalculator().Calculate(100, 112, 88, candles)

	assert.Equal(t, 95.0, set.Support1)
	assert.Equal(t, 90.0, set.Support2)
	assert.InDelta(t, 88.0, set.Support3, 1e-9)
	assert.Equal(t, 105.0, set.Resistance1)
	assert.Equal(t, 110.0, set.Resistance2)
	assert.InDelta(t, 112.0, set.Resistance3, 1e-9)
	assertOrdered(t, set, 100)

	// Touches are counted over the last 50 candles only, not all 64.
	require.Len(t, set.DynamicSupports, 2)
	assert.Equal(t, domain.DynamicLevel{Price: 95, Touches: 3}, set.DynamicSupports[0])
	assert.Equal(t, domain.DynamicLevel{Price: 90, Touches: 3}, set.DynamicSupports[1])
	require.Len(t, set.DynamicResistances, 2)
	assert.Equal(t, domain.DynamicLevel{Price: 105, Touches: 10}, set.DynamicResistances[0])
	assert.LessOrEqual(t, len(set.DynamicSupports), 3)
	for _, lvl := range set.DynamicSupports {
		assert.Less(t, lvl.Price, 100.0)
		assert.Positive(t, lvl.Touches)
	}
	for _, lvl := range set.DynamicResistances {
		assert.Greater(t, lvl.Price, 100.0)
	}
}

func TestFindLocalExtremaNonStrict(t *testing.T) {
	lows := []float64{5, 4, 3, 3, 4, 5}
	got := FindLocalLows(lows, 2)
	assert.Equal(t, []Extremum{{Index: 2, Price: 3}, {Index: 3, Price: 3}}, got)

	highs := []float64{1, 2, 5, 2, 1}
	assert.Equal(t, []Extremum{{Index: 2, Price: 5}}, FindLocalHighs(highs, 2))
}

func TestFibonacciOverflowCollapses(t *testing.T) {
	fib := Fibonacci(1e300, 1.5e308, 0)
	assert.Equal(t, 1e300, fib.Ext2618)
	assert.Equal(t, 1e300, fib.Level236)
	assert.False(t, math.IsInf(fib.Ext1272, 0))
}
