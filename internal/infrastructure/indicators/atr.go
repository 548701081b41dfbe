package indicators

import (
	"math"

	"screener-engine/internal/domain"
)

// trueRange of candle i; the first candle only has its own range.
func trueRange(candles []domain.Candle, i int) float64 {
	hl := candles[i].High - candles[i].Low
	if i == 0 {
		return hl
	}
	prevClose := candles[i-1].Close
	return math.Max(hl, math.Max(math.Abs(candles[i].High-prevClose), math.Abs(candles[i].Low-prevClose)))
}

// ATR computes the last Wilder-smoothed Average True Range value.
func ATR(candles []domain.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}

	sumTR := 0.0
	for i := 0; i < period; i++ {
		sumTR += trueRange(candles, i)
	}
	atr := sumTR / float64(period)

	for i := period; i < len(candles); i++ {
		atr = (atr*float64(period-1) + trueRange(candles, i)) / float64(period)
	}
	return atr
}
