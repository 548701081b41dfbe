package levels

// Extremum is a local high or low in a price series.
type Extremum struct {
	Index int
	Price float64
}

// FindLocalLows returns every point that is at or below all neighbors within
// window bars on each side. Flat stretches yield one extremum per bar.
func FindLocalLows(lows []float64, window int) []Extremum {
	var out []Extremum
	for i := window; i < len(lows)-window; i++ {
		isLow := true
		for j := 1; j <= window; j++ {
			if lows[i] > lows[i-j] || lows[i] > lows[i+j] {
				isLow = false
				break
			}
		}
		if isLow {
			out = append(out, Extremum{Index: i, Price: lows[i]})
		}
	}
	return out
}

// FindLocalHighs mirrors FindLocalLows for highs.
func FindLocalHighs(highs []float64, window int) []Extremum {
	var out []Extremum
	for i := window; i < len(highs)-window; i++ {
		isHigh := true
		for j := 1; j <= window; j++ {
			if highs[i] < highs[i-j] || highs[i] < highs[i+j] {
				isHigh = false
				break
			}
		}
		if isHigh {
			out = append(out, Extremum{Index: i, Price: highs[i]})
		}
	}
	return out
}
