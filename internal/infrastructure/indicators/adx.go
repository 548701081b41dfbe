package indicators

import (
	"math"

	"screener-engine/internal/domain"
)

// DefaultADX is returned when the directional index cannot be computed.
const DefaultADX = 25.0

// SimplifiedADX derives DX from directional-movement sums over the trailing
// period candles, without the second smoothing pass of the full ADX.
func SimplifiedADX(candles []domain.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return DefaultADX
	}

	plusDM, minusDM, sumTR := 0.0, 0.0, 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low
		if upMove > downMove && upMove > 0 {
			plusDM += upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM += downMove
		}
		sumTR += trueRange(candles, i)
	}
	if sumTR <= 0 {
		return DefaultADX
	}

	plusDI := plusDM / sumTR * 100
	minusDI := minusDM / sumTR * 100
	if plusDI+minusDI == 0 {
		return 0
	}
	return math.Abs(plusDI-minusDI) / (plusDI + minusDI) * 100
}
