package indicators

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"screener-engine/internal/domain"
)

// RecentResistance is the mean of the top highs within the lookback.
func RecentResistance(candles []domain.Candle, lookback, top int) float64 {
	if len(candles) == 0 || top <= 0 {
		return 0
	}
	highs := Highs(tail(candles, lookback))
	sort.Sort(sort.Reverse(sort.Float64Slice(highs)))
	if len(highs) > top {
		highs = highs[:top]
	}
	return stat.Mean(highs, nil)
}
