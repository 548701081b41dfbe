package indicators

import (
	"gonum.org/v1/gonum/floats"

	"screener-engine/internal/domain"
)

// VolumeChange compares the summed volume of the last window candles with
// the window before it, in percent.
func VolumeChange(candles []domain.Candle, window int) domain.VolumeResult {
	res := domain.VolumeResult{Trend: "flat"}
	if window <= 0 || len(candles) < 2*window {
		return res
	}
	vols := Volumes(tail(candles, 2*window))
	previous := floats.Sum(vols[:window])
	recent := floats.Sum(vols[window:])
	if previous <= 0 {
		return res
	}

	res.Increase = (recent - previous) / previous * 100
	switch {
	case res.Increase > 0:
		res.Trend = "increasing"
	case res.Increase < 0:
		res.Trend = "decreasing"
	}
	return res
}

// Liquidity scores price/volume agreement over the lookback in [-1, 1].
// A bar counts +1 when price rises on non-declining volume and -1 when it
// falls on non-declining volume.
func Liquidity(candles []domain.Candle, lookback int) float64 {
	if lookback < 2 || len(candles) < lookback {
		return 0
	}
	window := tail(candles, lookback)

	score := 0.0
	for i := 1; i < len(window); i++ {
		if window[i].Volume < window[i-1].Volume {
			continue
		}
		switch {
		case window[i].Close > window[i-1].Close:
			score++
		case window[i].Close < window[i-1].Close:
			score--
		}
	}
	return score / float64(lookback-1)
}
