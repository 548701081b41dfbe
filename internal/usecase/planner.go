package usecase

import (
	"math"

	"screener-engine/internal/domain"
)

// Stop-loss tiers, as maximum loss from entry.
const (
	conservativeMaxLoss = 0.08
	moderateMaxLoss     = 0.12
	aggressiveMaxLoss   = 0.15
)

// Volatility gates for tier selection and risk rating.
const (
	lowVolatility    = 5.0
	mediumVolatility = 10.0
)

var takeProfitLadder = []struct {
	gain       float64
	allocation string
}{
	{0.05, "25% of position"},
	{0.10, "25% of position"},
	{0.15, "25% of position"},
	{0.25, "remaining 25%"},
}

// Planner builds price targets and an entry/exit plan.
type Planner struct {
	thresholds       domain.SignalThresholds
	riskRewardTarget float64
}

func NewPlanner(cfg domain.EngineConfig) *Planner {
	return &Planner{thresholds: cfg.Thresholds, riskRewardTarget: cfg.RiskRewardTarget}
}

// Targets returns a strictly increasing target ladder above price.
func (p *Planner) Targets(price float64, lv domain.LevelSet) domain.TargetSet {
	fib := lv.Fibonacci
	exts := []float64{fib.Ext1272, fib.Ext1618, fib.Ext2000}
	pcts := []float64{0.05, 0.10, 0.15}

	ts := domain.TargetSet{Immediate: lv.Resistance1, Targets: make([]float64, len(pcts))}
	if ts.Immediate <= price {
		ts.Immediate = price * 1.02
	}

	prev := ts.Immediate
	for i, pct := range pcts {
		t := math.Max(price*(1+pct), exts[i])
		if t <= prev {
			t = prev * 1.05
		}
		ts.Targets[i] = t
		prev = t
	}

	last := ts.Targets[len(ts.Targets)-1]
	ts.LongTerm = math.Max(math.Max(price*1.35, last*1.2), math.Max(lv.Resistance2, fib.Ext2618))
	if ts.LongTerm <= last {
		ts.LongTerm = last * 1.2
	}
	return ts
}

// Plan derives entry, stop tiers, take profits and risk/reward.
func (p *Planner) Plan(snap domain.TickerSnapshot, ind domain.IndicatorSet, lv domain.LevelSet) domain.EntryExitPlan {
	price := snap.Price

	// Pay closer to market when momentum is soft, wait for a dip when overbought
	entry := price * 0.995
	switch {
	case ind.RSI < p.thresholds.RSIBreakout:
		entry = price * 0.998
	case ind.RSI > p.thresholds.RSIOverbought:
		entry = price * 0.985
	}

	tiers := domain.StopLossTiers{
		Conservative: stopFor(entry, lv.Support1, conservativeMaxLoss),
		Moderate:     stopFor(entry, lv.Support2, moderateMaxLoss),
		Aggressive:   stopFor(entry, lv.Support3, aggressiveMaxLoss),
	}

	plan := domain.EntryExitPlan{EntryPoint: entry, StopLossTiers: tiers}
	switch {
	case ind.Volatility < lowVolatility:
		plan.StopLoss, plan.RiskRating = tiers.Conservative, domain.RiskLow
		plan.PositionSizeAdvice = "standard position, up to 5% of portfolio"
	case ind.Volatility < mediumVolatility:
		plan.StopLoss, plan.RiskRating = tiers.Moderate, domain.RiskMedium
		plan.PositionSizeAdvice = "reduced position, 2-3% of portfolio"
	default:
		plan.StopLoss, plan.RiskRating = tiers.Aggressive, domain.RiskHigh
		plan.PositionSizeAdvice = "small position, at most 1% of portfolio"
	}

	for _, tp := range takeProfitLadder {
		plan.TakeProfits = append(plan.TakeProfits, domain.TakeProfitLevel{
			Price:      entry * (1 + tp.gain),
			GainPct:    tp.gain * 100,
			Allocation: tp.allocation,
		})
	}

	risk := entry - plan.StopLoss
	if risk > 0 {
		plan.RiskRewardRatio = (plan.TakeProfits[1].Price - entry) / risk
	}
	plan.MeetsTargetRatio = plan.RiskRewardRatio >= p.riskRewardTarget
	plan.Strategy = strategyFor(plan.RiskRewardRatio)
	return plan
}

// stopFor bounds the loss at maxLoss but prefers a tighter support.
func stopFor(entry, support, maxLoss float64) float64 {
	floor := entry * (1 - maxLoss)
	stop := math.Max(support, floor)
	if stop >= entry {
		return floor
	}
	return stop
}

func strategyFor(ratio float64) string {
	switch {
	case ratio >= 3:
		return "excellent: strong buy setup"
	case ratio >= 2:
		return "good: buy on pullback"
	case ratio >= 1.5:
		return "fair: small position"
	default:
		return "avoid: poor risk/reward"
	}
}

// Confidence blends signal breadth, score, RSI/MACD agreement and volume
// into a percentage clamped to [5,95].
func (p *Planner) Confidence(ind domain.IndicatorSet, sc ScoreResult) float64 {
	conf := 40 * float64(len(sc.Signals)) / signalRuleCount
	conf += 35 * sc.Score / 100

	agree := (ind.RSI > 50 && ind.MACD.Signal == domain.MACDBullish) ||
		(ind.RSI < 50 && ind.MACD.Signal == domain.MACDBearish)
	if agree {
		conf += 15
	}
	if ind.Volume.Increase > p.thresholds.VolumeIncreasePct {
		conf += 10
	}
	return clamp(conf, 5, 95)
}
