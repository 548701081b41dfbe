package indicators

// EMA computes the exponential moving average of a series.
// It is seeded at index period-1 with the simple mean of the first period
// values; earlier indices stay 0. Shorter series return all zeros.
func EMA(data []float64, period int) []float64 {
	ema := make([]float64, len(data))
	if period <= 0 || len(data) < period {
		return ema
	}

	k := 2.0 / (float64(period) + 1.0)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	ema[period-1] = sum / float64(period)

	for i := period; i < len(data); i++ {
		ema[i] = (data[i]-ema[i-1])*k + ema[i-1]
	}

	return ema
}
