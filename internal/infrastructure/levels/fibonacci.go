package levels

import "screener-engine/internal/domain"

// Fibonacci computes retracements down from high and extensions up from price.
// A non-positive range, or one whose extensions overflow, collapses every
// level onto price.
func Fibonacci(price, high, low float64) domain.FibonacciLevels {
	rng := high - low
	if rng <= 0 || !finite(rng) || !finite(price+rng*2.618) {
		return domain.FibonacciLevels{
			Level236: price, Level382: price, Level500: price, Level618: price, Level786: price,
			Ext1272: price, Ext1618: price, Ext2000: price, Ext2618: price,
		}
	}
	return domain.FibonacciLevels{
		Level236: high - rng*0.236,
		Level382: high - rng*0.382,
		Level500: high - rng*0.5,
		Level618: high - rng*0.618,
		Level786: high - rng*0.786,
		Ext1272:  price + rng*1.272,
		Ext1618:  price + rng*1.618,
		Ext2000:  price + rng*2.0,
		Ext2618:  price + rng*2.618,
	}
}
