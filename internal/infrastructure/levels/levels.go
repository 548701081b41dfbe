package levels

import (
	"math"
	"sort"

	"screener-engine/internal/domain"
	"screener-engine/internal/infrastructure/indicators"
)

const (
	supportStep    = 0.95
	resistanceStep = 1.05
)

// Calculator derives support and resistance levels.
type Calculator struct {
	lookback   int
	window     int
	tolerance  float64
	maxDynamic int
}

func NewCalculator(cfg domain.LevelSettings) *Calculator {
	return &Calculator{
		lookback:   cfg.Lookback,
		window:     cfg.ExtremaWindow,
		tolerance:  cfg.TouchTolerancePct / 100,
		maxDynamic: cfg.MaxDynamicLevels,
	}
}

// Calculate returns sanitized levels for price. Classic pivot levels come
// from the 24h range; with a full lookback of candles the nearest local
// extrema replace them.
func (c *Calculator) Calculate(price, high24h, low24h float64, candles []domain.Candle) domain.LevelSet {
	var set domain.LevelSet
	supports, resistances := c.classic(&set, price, high24h, low24h)

	if len(candles) > 2*c.window {
		window := candles
		if len(window) > c.lookback {
			window = window[len(window)-c.lookback:]
		}
		lowCands := below(FindLocalLows(indicators.Lows(window), c.window), price)
		highCands := above(FindLocalHighs(indicators.Highs(window), c.window), price)

		if len(candles) >= c.lookback {
			supports = refine(lowCands, supports, price, true)
			resistances = refine(highCands, resistances, price, false)
		}
		set.DynamicSupports = rankByTouches(window, lowCands, price, c.tolerance, c.maxDynamic)
		set.DynamicResistances = rankByTouches(window, highCands, price, c.tolerance, c.maxDynamic)
	}

	set.Support1, set.Support2, set.Support3 = supports[0], supports[1], supports[2]
	set.Resistance1, set.Resistance2, set.Resistance3 = resistances[0], resistances[1], resistances[2]
	set.Fibonacci = Fibonacci(price, high24h, low24h)

	Sanitize(&set, price)
	return set
}

// classic fills the pivot and returns the S1-S3 and R1-R3 pivot levels.
func (c *Calculator) classic(set *domain.LevelSet, price, high, low float64) ([3]float64, [3]float64) {
	if !finite(high) || !finite(low) || high <= low {
		set.Pivot = price
		return [3]float64{price * 0.95, price * 0.90, price * 0.85},
			[3]float64{price * 1.05, price * 1.10, price * 1.15}
	}
	p := (high + low + price) / 3
	set.Pivot = p
	return [3]float64{2*p - high, p - (high - low), low - 2*(high-p)},
		[3]float64{2*p - low, p + (high - low), high + 2*(p-low)}
}

// refine puts the nearest distinct extrema ahead of the classic levels.
func refine(cands []Extremum, classic [3]float64, price float64, isSupport bool) [3]float64 {
	prices := make([]float64, 0, len(cands))
	for _, e := range cands {
		prices = append(prices, e.Price)
	}
	if isSupport {
		sort.Sort(sort.Reverse(sort.Float64Slice(prices)))
	} else {
		sort.Float64s(prices)
	}

	var out [3]float64
	n := 0
	for _, p := range prices {
		if n > 0 && p == out[n-1] {
			continue
		}
		out[n] = p
		n++
		if n == len(out) {
			return out
		}
	}
	for _, p := range classic {
		if n == len(out) {
			break
		}
		if n > 0 && ((isSupport && p >= out[n-1]) || (!isSupport && p <= out[n-1])) {
			continue
		}
		out[n] = p
		n++
	}
	return out
}

// Sanitize enforces Support3 < Support2 < Support1 < price < Resistance1 <
// Resistance2 < Resistance3 by stepping offending levels 5% away from their
// neighbor. It is idempotent.
func Sanitize(set *domain.LevelSet, price float64) {
	supports := []*float64{&set.Support1, &set.Support2, &set.Support3}
	resistances := []*float64{&set.Resistance1, &set.Resistance2, &set.Resistance3}

	ref := price
	for _, s := range supports {
		if !finite(*s) || *s >= ref || *s <= 0 {
			*s = ref * supportStep
		}
		ref = *s
	}
	ref = price
	for _, r := range resistances {
		if !finite(*r) || *r <= ref {
			*r = ref * resistanceStep
		}
		ref = *r
	}
}

func below(ext []Extremum, price float64) []Extremum {
	var out []Extremum
	for _, e := range ext {
		if e.Price < price {
			out = append(out, e)
		}
	}
	return out
}

func above(ext []Extremum, price float64) []Extremum {
	var out []Extremum
	for _, e := range ext {
		if e.Price > price {
			out = append(out, e)
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
