package usecase

import (
	"math"
	"math/rand"
	"sync"

	"screener-engine/internal/domain"
	"screener-engine/internal/infrastructure/indicators"
	"screener-engine/internal/infrastructure/levels"
)

// snapshotWindow is the number of hourly candles that make up 24h.
const snapshotWindow = 24

// maxPrice leaves headroom for the level and target ladders, which reach
// a few multiples of the price and range.
const maxPrice = math.MaxFloat64 / 16

// Engine evaluates single assets. It is safe for concurrent use.
type Engine struct {
	cfg     domain.EngineConfig
	levels  *levels.Calculator
	scorer  *Scorer
	planner *Planner

	rngMu sync.Mutex
	rng   *rand.Rand
}

type EngineOption func(*Engine)

// WithRandSource sets the source used by simulated mode.
func WithRandSource(src rand.Source) EngineOption {
	return func(e *Engine) {
		e.rng = rand.New(src)
	}
}

// NewEngine validates cfg and builds an engine. Simulated mode needs a
// random source, either injected or seeded from cfg.SimulationSeed.
func NewEngine(cfg domain.EngineConfig, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		levels:  levels.NewCalculator(cfg.Levels),
		scorer:  NewScorer(cfg),
		planner: NewPlanner(cfg),
	}
	for _, opt := range opts {
		opt(e)
	}
	if cfg.SimulatedMode && e.rng == nil {
		e.rng = rand.New(rand.NewSource(cfg.SimulationSeed))
	}
	return e, nil
}

func (e *Engine) Config() domain.EngineConfig {
	return e.cfg
}

// Evaluate runs the full analysis for one asset. It never fails: unusable
// input yields a minimal record scored 0.
func (e *Engine) Evaluate(snap domain.TickerSnapshot, candles []domain.Candle) domain.AnalysisRecord {
	candles = usableCandles(candles)
	snap = sanitizeSnapshot(snap, candles)
	if snap.Price <= 0 {
		return minimalRecord(snap)
	}

	var ind domain.IndicatorSet
	simulated := len(candles) == 0 && e.cfg.SimulatedMode && e.rng != nil
	if simulated {
		ind = e.simulatedIndicators(snap)
	} else {
		ind = e.indicators(snap, candles)
	}

	lv := e.levels.Calculate(snap.Price, snap.High24h, snap.Low24h, candles)
	sc := e.scorer.Score(snap, ind)
	targets := e.planner.Targets(snap.Price, lv)
	plan := e.planner.Plan(snap, ind, lv)

	rec := domain.AnalysisRecord{
		Symbol:     snap.Symbol,
		Snapshot:   snap,
		Indicators: ind,
		Levels:     lv,
		Score:      sc.Score,
		Status:     statusFor(sc.Score),
		Signals:    sc.Signals,
		Targets:    &targets,
		Plan:       &plan,
		Confidence: e.planner.Confidence(ind, sc),
		State:      domain.StateEvaluated,
		Simulated:  simulated,
	}
	rec.Analysis = summarize(rec)
	return rec
}

func (e *Engine) indicators(snap domain.TickerSnapshot, candles []domain.Candle) domain.IndicatorSet {
	p := e.cfg.Periods
	ind := domain.IndicatorSet{
		RSI:        indicators.RSI(candles, p.RSI),
		MACD:       indicators.MACD(candles, p.MACDFast, p.MACDSlow, p.MACDSignal),
		SMA:        indicators.SMA(candles, p.SMA),
		Trend:      indicators.TrendStrength(candles, p.TrendLookback),
		Volume:     indicators.VolumeChange(candles, p.VolumeWindow),
		Liquidity:  indicators.Liquidity(candles, p.LiquidityLookback),
		Resistance: indicators.RecentResistance(candles, p.ResistanceLookback, p.ResistanceTop),
		Volatility: indicators.Volatility(snap.Change24h, snap.High24h, snap.Low24h, snap.Price),
	}
	if len(candles) == 0 {
		ind.SMA = snap.Price
		ind.Resistance = snap.High24h
	}
	if e.cfg.AdvancedIndicators {
		atr := indicators.ATR(candles, p.ATR)
		ind.Advanced = &domain.AdvancedIndicators{
			ADX:        indicators.SimplifiedADX(candles, p.ADX),
			ATR:        atr,
			ATRPercent: atr / snap.Price * 100,
		}
	}
	return ind
}

// minimalRecord is the neutral record used when an asset cannot be analyzed.
func minimalRecord(snap domain.TickerSnapshot) domain.AnalysisRecord {
	var lv domain.LevelSet
	levels.Sanitize(&lv, snap.Price)
	rec := domain.AnalysisRecord{
		Symbol:   snap.Symbol,
		Snapshot: snap,
		Indicators: domain.IndicatorSet{
			RSI:    indicators.NeutralRSI,
			MACD:   domain.MACDResult{Signal: domain.MACDNeutral},
			SMA:    snap.Price,
			Trend:  domain.TrendResult{Direction: domain.TrendNeutral},
			Volume: domain.VolumeResult{Trend: "flat"},
		},
		Levels:     lv,
		Status:     statusFor(0),
		Confidence: 5,
		State:      domain.StateEvaluated,
	}
	rec.Analysis = summarize(rec)
	return rec
}

// usableCandles drops candles with non-finite or non-positive prices and
// returns the input unchanged when every candle is usable.
func usableCandles(candles []domain.Candle) []domain.Candle {
	ok := func(c domain.Candle) bool {
		return finite(c.Open) && finite(c.High) && finite(c.Low) && finite(c.Close) && finite(c.Volume) &&
			c.Close > 0 && c.High >= c.Low && c.Volume >= 0 && c.High <= maxPrice
	}
	for i, c := range candles {
		if ok(c) {
			continue
		}
		out := append([]domain.Candle(nil), candles[:i]...)
		for _, rest := range candles[i+1:] {
			if ok(rest) {
				out = append(out, rest)
			}
		}
		return out
	}
	return candles
}

// sanitizeSnapshot zeroes invalid fields and derives missing ones from the
// last 24 candles.
func sanitizeSnapshot(snap domain.TickerSnapshot, candles []domain.Candle) domain.TickerSnapshot {
	clean := func(v float64) float64 {
		if !finite(v) || v < 0 {
			return 0
		}
		return v
	}
	cleanPrice := func(v float64) float64 {
		if v = clean(v); v > maxPrice {
			return 0
		}
		return v
	}
	snap.Price = cleanPrice(snap.Price)
	snap.Volume24h = clean(snap.Volume24h)
	snap.High24h = cleanPrice(snap.High24h)
	snap.Low24h = cleanPrice(snap.Low24h)
	if !finite(snap.Change24h) {
		snap.Change24h = 0
	}
	if len(candles) == 0 {
		return snap
	}

	day := candles
	if len(day) > snapshotWindow {
		day = day[len(day)-snapshotWindow:]
	}
	last := day[len(day)-1]
	if snap.Price == 0 {
		snap.Price = last.Close
	}
	if snap.High24h == 0 || snap.Low24h == 0 {
		hi, lo := day[0].High, day[0].Low
		for _, c := range day[1:] {
			hi = math.Max(hi, c.High)
			lo = math.Min(lo, c.Low)
		}
		snap.High24h, snap.Low24h = hi, lo
	}
	if snap.Volume24h == 0 {
		for _, c := range day {
			snap.Volume24h += c.Volume * c.Close
		}
		snap.Volume24h = clean(snap.Volume24h)
	}
	if snap.Change24h == 0 && day[0].Open > 0 {
		snap.Change24h = (last.Close - day[0].Open) / day[0].Open * 100
	}
	return snap
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
