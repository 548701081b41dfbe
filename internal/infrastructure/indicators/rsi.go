package indicators

import "screener-engine/internal/domain"

// NeutralRSI is returned when there is not enough data.
const NeutralRSI = 50.0

// RSI computes the last Wilder-smoothed Relative Strength Index value.
func RSI(candles []domain.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return NeutralRSI
	}
	closes := Closes(candles)

	sumGain, sumLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			sumGain += change
		} else {
			sumLoss -= change
		}
	}
	avgGain := sumGain / float64(period)
	avgLoss := sumLoss / float64(period)

	for i := period + 1; i < len(closes); i++ {
		gain, loss := 0.0, 0.0
		change := closes[i] - closes[i-1]
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
