package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"screener-engine/internal/domain"
)

// stepped builds closes from a list of fractional moves.
func stepped(start float64, moves []float64) []float64 {
	closes := []float64{start}
	for _, m := range moves {
		closes = append(closes, closes[len(closes)-1]*(1+m))
	}
	return closes
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestTrendStrength(t *testing.T) {
	mixed := stepped(100, append(repeat(0.01, 12), repeat(-0.01, 7)...))

	t.Run("too few candles", func(t *testing.T) {
		got := TrendStrength(candlesFromCloses(linear(19, 100, 1), 1000), 20)
		assert.Equal(t, domain.TrendResult{Direction: domain.TrendNeutral}, got)
	})

	t.Run("steady rise", func(t *testing.T) {
		got := TrendStrength(candlesFromCloses(stepped(100, repeat(0.01, 24)), 1000), 20)
		assert.Equal(t, domain.TrendUp, got.Direction)
		assert.InDelta(t, 100, got.Strength, 1e-9)
	})

	t.Run("noise is ignored", func(t *testing.T) {
		got := TrendStrength(candlesFromCloses(stepped(100, repeat(0.0005, 24)), 1000), 20)
		assert.Equal(t, domain.TrendNeutral, got.Direction)
		assert.Zero(t, got.Strength)
	})

	t.Run("dominant share", func(t *testing.T) {
		got := TrendStrength(candlesFromCloses(mixed, 1000), 20)
		assert.Equal(t, domain.TrendUp, got.Direction)
		assert.InDelta(t, 12.0/19.0*100, got.Strength, 1e-9)
	})

	t.Run("volume boost", func(t *testing.T) {
		candles := candlesFromCloses(mixed, 1000)
		for i := len(candles) - 5; i < len(candles); i++ {
			candles[i].Volume = 2000
		}
		got := TrendStrength(candles, 20)
		assert.InDelta(t, 12.0/19.0*100*1.2, got.Strength, 1e-9)
	})

	t.Run("boost is capped", func(t *testing.T) {
		candles := candlesFromCloses(stepped(100, repeat(-0.01, 19)), 1000)
		for i := len(candles) - 5; i < len(candles); i++ {
			candles[i].Volume = 2000
		}
		got := TrendStrength(candles, 20)
		assert.Equal(t, domain.TrendDown, got.Direction)
		assert.Equal(t, 100.0, got.Strength)
	})
}
