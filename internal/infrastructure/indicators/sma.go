package indicators

import (
	"gonum.org/v1/gonum/stat"

	"screener-engine/internal/domain"
)

// SMA is the mean close over the last period candles. With fewer candles it
// falls back to the last close.
func SMA(candles []domain.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	if period <= 0 || len(candles) < period {
		return candles[len(candles)-1].Close
	}
	return stat.Mean(Closes(tail(candles, period)), nil)
}
