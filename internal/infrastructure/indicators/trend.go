package indicators

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"screener-engine/internal/domain"
)

const (
	// Close-to-close moves at or below this fraction are noise.
	trendNoiseFraction = 0.001
	trendVolumeWindow  = 5
	trendVolumeBoost   = 1.2
)

// TrendStrength measures how one-sided the recent close-to-close moves are.
// Strength is the dominant share of qualifying moves, boosted by 20% when the
// last 5 volumes run above the window average, and capped at 100.
func TrendStrength(candles []domain.Candle, lookback int) domain.TrendResult {
	neutral := domain.TrendResult{Direction: domain.TrendNeutral}
	if lookback < 2 || len(candles) < lookback {
		return neutral
	}
	window := tail(candles, lookback)

	up, down := 0, 0
	for i := 1; i < len(window); i++ {
		prev := window[i-1].Close
		if prev <= 0 {
			continue
		}
		change := (window[i].Close - prev) / prev
		switch {
		case change > trendNoiseFraction:
			up++
		case change < -trendNoiseFraction:
			down++
		}
	}
	total := up + down
	if total == 0 {
		return neutral
	}

	dir, dominant := domain.TrendNeutral, up
	switch {
	case up > down:
		dir = domain.TrendUp
	case down > up:
		dir, dominant = domain.TrendDown, down
	}
	strength := float64(dominant) / float64(total) * 100

	vols := Volumes(window)
	if stat.Mean(vols[len(vols)-trendVolumeWindow:], nil) > stat.Mean(vols, nil) {
		strength *= trendVolumeBoost
	}

	return domain.TrendResult{Direction: dir, Strength: math.Min(strength, 100)}
}
