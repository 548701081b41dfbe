package indicators

import "math"

// Volatility blends the absolute 24h change with half the 24h range, both in
// percent of price.
func Volatility(change24h, high24h, low24h, price float64) float64 {
	if price <= 0 {
		return 0
	}
	rangePct := (high24h - low24h) / price * 100
	if rangePct < 0 {
		rangePct = 0
	}
	return math.Abs(change24h) + 0.5*rangePct
}
