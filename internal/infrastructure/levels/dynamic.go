package levels

import (
	"math"
	"sort"

	"screener-engine/internal/domain"
)

// countTouches counts candles whose high or low falls within tol of level.
func countTouches(candles []domain.Candle, level, tol float64) int {
	band := level * tol
	n := 0
	for _, c := range candles {
		if math.Abs(c.High-level) <= band || math.Abs(c.Low-level) <= band {
			n++
		}
	}
	return n
}

// rankByTouches orders candidates by touch count, merges those within
// tolerance of a better-ranked one and keeps at most limit levels. Ties go to
// the candidate closest to price.
func rankByTouches(candles []domain.Candle, candidates []Extremum, price, tol float64, limit int) []domain.DynamicLevel {
	if limit <= 0 || len(candidates) == 0 {
		return nil
	}

	ranked := make([]domain.DynamicLevel, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, domain.DynamicLevel{Price: c.Price, Touches: countTouches(candles, c.Price, tol)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Touches != ranked[j].Touches {
			return ranked[i].Touches > ranked[j].Touches
		}
		return math.Abs(ranked[i].Price-price) < math.Abs(ranked[j].Price-price)
	})

	var kept []domain.DynamicLevel
	for _, lvl := range ranked {
		merged := false
		for _, k := range kept {
			if math.Abs(lvl.Price-k.Price) <= k.Price*tol {
				merged = true
				break
			}
		}
		if merged {
			continue
		}
		kept = append(kept, lvl)
		if len(kept) == limit {
			break
		}
	}
	return kept
}
