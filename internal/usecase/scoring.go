package usecase

import (
	"fmt"
	"math"

	"screener-engine/internal/domain"
)

// signalRuleCount is the number of additive scoring rules.
const signalRuleCount = 7

// ScoreResult is the clamped score plus every rule that fired.
type ScoreResult struct {
	Score   float64
	Signals []domain.Signal
}

// Scorer turns an indicator set into a 0-100 opportunity score.
type Scorer struct {
	weights    domain.ScoringWeights
	thresholds domain.SignalThresholds
}

func NewScorer(cfg domain.EngineConfig) *Scorer {
	return &Scorer{weights: cfg.Weights, thresholds: cfg.Thresholds}
}

// Score adds the weight of every firing rule and clamps the total to [0,100].
func (s *Scorer) Score(snap domain.TickerSnapshot, ind domain.IndicatorSet) ScoreResult {
	w, th := s.weights, s.thresholds
	price := snap.Price
	var signals []domain.Signal

	fire := func(kind domain.SignalKind, points float64, detail string) {
		signals = append(signals, domain.Signal{Kind: kind, Points: points, Detail: detail})
	}

	// RSI in the bullish band, not yet overbought
	if ind.RSI > th.RSIBreakout && ind.RSI < th.RSIOverbought {
		fire(domain.SignalRSIBreakout, w.RSIBreakout, fmt.Sprintf("RSI %.1f in bullish zone", ind.RSI))
	}

	if ind.MACD.Signal == domain.MACDBullish || ind.MACD.Histogram > 0 {
		detail := "MACD histogram positive"
		if ind.MACD.Crossover {
			detail = "MACD bullish crossover"
		}
		fire(domain.SignalMACD, w.MACDSignal, detail)
	}

	if price > 0 && price > ind.SMA {
		fire(domain.SignalSMABreakout, w.SMABreakout, fmt.Sprintf("price above SMA %.6g", ind.SMA))
	}

	// Within proximity of (or through) recent resistance
	if price > 0 && ind.Resistance > 0 && price >= ind.Resistance*(1-th.ResistanceProximityPct/100) {
		fire(domain.SignalResistanceBreak, w.ResistanceBreak, fmt.Sprintf("testing resistance %.6g", ind.Resistance))
	}

	if ind.Liquidity > 0 {
		fire(domain.SignalLiquidityCross, w.LiquidityCross, fmt.Sprintf("volume confirms price (%.2f)", ind.Liquidity))
	}

	if ind.Volume.Increase > th.VolumeIncreasePct {
		fire(domain.SignalVolumeIncrease, w.VolumeIncrease, fmt.Sprintf("volume up %.1f%%", ind.Volume.Increase))
	}

	if ind.Trend.Strength > th.TrendStrength {
		fire(domain.SignalTrendStrength, w.TrendStrength, fmt.Sprintf("%s trend strength %.0f", ind.Trend.Direction, ind.Trend.Strength))
	}

	total := 0.0
	for _, sig := range signals {
		total += sig.Points
	}
	return ScoreResult{Score: clamp(total, 0, 100), Signals: signals}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
