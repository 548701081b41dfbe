package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"screener-engine/internal/domain"
)

func TestMACDInsufficientData(t *testing.T) {
	got := MACD(candlesFromCloses(linear(34, 100, 1), 1000), 12, 26, 9)
	assert.Equal(t, domain.MACDResult{Signal: domain.MACDNeutral}, got)
}

func TestMACDSign(t *testing.T) {
	rising := make([]float64, 60)
	falling := make([]float64, 60)
	for i := range rising {
		rising[i] = 100 * math.Pow(1.02, float64(i))
		falling[i] = 200 - 0.05*float64(i*i)
	}

	up := MACD(candlesFromCloses(rising, 1000), 12, 26, 9)
	assert.Greater(t, up.Value, 0.0)
	assert.Greater(t, up.Histogram, 0.0)
	assert.Equal(t, domain.MACDBullish, up.Signal)

	down := MACD(candlesFromCloses(falling, 1000), 12, 26, 9)
	assert.Less(t, down.Value, 0.0)
	assert.Equal(t, domain.MACDBearish, down.Signal)
}

func TestMACDBullishCrossover(t *testing.T) {
	closes := make([]float64, 60)
	for i := 0; i < 59; i++ {
		closes[i] = 200 - 0.05*float64(i*i)
	}
	closes[59] = 200

	got := MACD(candlesFromCloses(closes, 1000), 12, 26, 9)
	assert.Equal(t, domain.MACDBullish, got.Signal)
	assert.True(t, got.Crossover)
	assert.InDelta(t, got.Value-got.SignalLine, got.Histogram, 1e-12)
}
