package domain

import (
	"fmt"
	"math"
	"strings"
)

// IndicatorPeriods configures indicator lookbacks.
type IndicatorPeriods struct {
	RSI                int `yaml:"rsi"`
	MACDFast           int `yaml:"macd_fast"`
	MACDSlow           int `yaml:"macd_slow"`
	MACDSignal         int `yaml:"macd_signal"`
	SMA                int `yaml:"sma"`
	ADX                int `yaml:"adx"`
	ATR                int `yaml:"atr"`
	VolumeWindow       int `yaml:"volume_window"`
	TrendLookback      int `yaml:"trend_lookback"`
	LiquidityLookback  int `yaml:"liquidity_lookback"`
	ResistanceLookback int `yaml:"resistance_lookback"`
	ResistanceTop      int `yaml:"resistance_top"`
}

// SignalThresholds decide when a scoring rule fires.
type SignalThresholds struct {
	RSIBreakout            float64 `yaml:"rsi_breakout"`
	RSIOverbought          float64 `yaml:"rsi_overbought"`
	ResistanceProximityPct float64 `yaml:"resistance_proximity_pct"`
	VolumeIncreasePct      float64 `yaml:"volume_increase_pct"`
	TrendStrength          float64 `yaml:"trend_strength"`
}

// ScoringWeights are the points each rule adds when it fires.
type ScoringWeights struct {
	RSIBreakout     float64 `yaml:"rsi_breakout"`
	MACDSignal      float64 `yaml:"macd_signal"`
	SMABreakout     float64 `yaml:"sma_breakout"`
	ResistanceBreak float64 `yaml:"resistance_break"`
	LiquidityCross  float64 `yaml:"liquidity_cross"`
	VolumeIncrease  float64 `yaml:"volume_increase"`
	TrendStrength   float64 `yaml:"trend_strength"`
}

type LevelSettings struct {
	Lookback          int     `yaml:"lookback"`
	ExtremaWindow     int     `yaml:"extrema_window"`
	TouchTolerancePct float64 `yaml:"touch_tolerance_pct"`
	MaxDynamicLevels  int     `yaml:"max_dynamic_levels"`
}

type FilterSettings struct {
	MinVolume       float64  `yaml:"min_volume"`
	QuoteCurrency   string   `yaml:"quote_currency"`
	ExcludedSymbols []string `yaml:"excluded_symbols"`
}

type RankingSettings struct {
	MinScore   float64 `yaml:"min_score"`
	MaxResults int     `yaml:"max_results"` // 0 means no cap
	Workers    int     `yaml:"workers"`
}

// EngineConfig is the full tuning surface of the scoring engine.
type EngineConfig struct {
	Periods            IndicatorPeriods `yaml:"periods"`
	Thresholds         SignalThresholds `yaml:"thresholds"`
	Weights            ScoringWeights   `yaml:"weights"`
	Levels             LevelSettings    `yaml:"levels"`
	Filters            FilterSettings   `yaml:"filters"`
	Ranking            RankingSettings  `yaml:"ranking"`
	RiskRewardTarget   float64          `yaml:"risk_reward_target"`
	AdvancedIndicators bool             `yaml:"advanced_indicators"`
	SimulatedMode      bool             `yaml:"simulated_mode"`
	SimulationSeed     int64            `yaml:"simulation_seed"`
}

// Minimum scores for the two screening modes.
const (
	PermissiveMinScore = 10
	StrictMinScore     = 50
)

// DefaultEngineConfig returns the production defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Periods: IndicatorPeriods{
			RSI:                14,
			MACDFast:           12,
			MACDSlow:           26,
			MACDSignal:         9,
			SMA:                20,
			ADX:                14,
			ATR:                14,
			VolumeWindow:       4,
			TrendLookback:      20,
			LiquidityLookback:  10,
			ResistanceLookback: 50,
			ResistanceTop:      5,
		},
		Thresholds: SignalThresholds{
			RSIBreakout:            50,
			RSIOverbought:          70,
			ResistanceProximityPct: 2,
			VolumeIncreasePct:      20,
			TrendStrength:          60,
		},
		Weights: ScoringWeights{
			RSIBreakout:     20,
			MACDSignal:      20,
			SMABreakout:     15,
			ResistanceBreak: 15,
			LiquidityCross:  10,
			VolumeIncrease:  10,
			TrendStrength:   10,
		},
		Levels: LevelSettings{
			Lookback:          50,
			ExtremaWindow:     2,
			TouchTolerancePct: 1,
			MaxDynamicLevels:  3,
		},
		Filters: FilterSettings{
			MinVolume:       500000,
			QuoteCurrency:   "USDT",
			ExcludedSymbols: []string{"USDT", "USDC", "BUSD", "DAI", "TUSD", "USDP", "USDD", "FRAX"},
		},
		Ranking: RankingSettings{
			MinScore:   StrictMinScore,
			MaxResults: 100,
			Workers:    8,
		},
		RiskRewardTarget: 2,
	}
}

// Validate checks the config and wraps every problem in ErrInvalidConfig.
func (c EngineConfig) Validate() error {
	p := c.Periods
	periods := []struct {
		name string
		v    int
	}{
		{"rsi", p.RSI}, {"macd_fast", p.MACDFast}, {"macd_slow", p.MACDSlow}, {"macd_signal", p.MACDSignal},
		{"sma", p.SMA}, {"adx", p.ADX}, {"atr", p.ATR}, {"volume_window", p.VolumeWindow},
		{"trend_lookback", p.TrendLookback}, {"resistance_lookback", p.ResistanceLookback},
		{"resistance_top", p.ResistanceTop},
	}
	for _, f := range periods {
		if f.v <= 0 {
			return fmt.Errorf("%w: period %s must be positive, got %d", ErrInvalidConfig, f.name, f.v)
		}
	}
	if p.LiquidityLookback < 2 {
		return fmt.Errorf("%w: liquidity_lookback must be at least 2", ErrInvalidConfig)
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("%w: macd_fast (%d) must be below macd_slow (%d)", ErrInvalidConfig, p.MACDFast, p.MACDSlow)
	}

	t := c.Thresholds
	if anyNaN(t.RSIBreakout, t.RSIOverbought, t.ResistanceProximityPct, t.VolumeIncreasePct, t.TrendStrength) {
		return fmt.Errorf("%w: signal thresholds must be numbers", ErrInvalidConfig)
	}
	if t.RSIBreakout < 0 || t.RSIOverbought > 100 || t.RSIBreakout >= t.RSIOverbought {
		return fmt.Errorf("%w: rsi band [%.1f, %.1f] is invalid", ErrInvalidConfig, t.RSIBreakout, t.RSIOverbought)
	}
	if t.ResistanceProximityPct < 0 || t.ResistanceProximityPct >= 100 {
		return fmt.Errorf("%w: resistance_proximity_pct must be in [0,100)", ErrInvalidConfig)
	}

	w := c.Weights
	for _, v := range []float64{w.RSIBreakout, w.MACDSignal, w.SMABreakout, w.ResistanceBreak, w.LiquidityCross, w.VolumeIncrease, w.TrendStrength} {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("%w: scoring weights must not be negative", ErrInvalidConfig)
		}
	}

	l := c.Levels
	if l.Lookback <= 0 || l.ExtremaWindow <= 0 || l.MaxDynamicLevels < 0 {
		return fmt.Errorf("%w: level lookback and window must be positive", ErrInvalidConfig)
	}
	if math.IsNaN(l.TouchTolerancePct) || l.TouchTolerancePct <= 0 {
		return fmt.Errorf("%w: touch_tolerance_pct must be positive", ErrInvalidConfig)
	}

	if math.IsNaN(c.Filters.MinVolume) || c.Filters.MinVolume < 0 {
		return fmt.Errorf("%w: min_volume must not be negative", ErrInvalidConfig)
	}
	if err := ValidateRanking(c.Ranking.MinScore, c.Ranking.MaxResults); err != nil {
		return err
	}
	if c.Ranking.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if math.IsNaN(c.RiskRewardTarget) || c.RiskRewardTarget <= 0 {
		return fmt.Errorf("%w: risk_reward_target must be positive", ErrInvalidConfig)
	}
	return nil
}

// ValidateRanking checks per-call ranking parameters.
func ValidateRanking(minScore float64, maxResults int) error {
	if math.IsNaN(minScore) || minScore < 0 || minScore > 100 {
		return fmt.Errorf("%w: min_score must be in [0,100], got %.2f", ErrInvalidConfig, minScore)
	}
	if maxResults < 0 {
		return fmt.Errorf("%w: max_results must not be negative, got %d", ErrInvalidConfig, maxResults)
	}
	return nil
}

func anyNaN(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// IsExcluded reports whether the symbol's base asset is filtered out.
func (f FilterSettings) IsExcluded(symbol string) bool {
	base := BaseAsset(symbol)
	for _, s := range f.ExcludedSymbols {
		if strings.EqualFold(base, s) {
			return true
		}
	}
	return false
}

// BaseAsset returns "BTC" for "BTC-USDT" and "BTC/USDT".
func BaseAsset(symbol string) string {
	if i := strings.IndexAny(symbol, "-/"); i >= 0 {
		return symbol[:i]
	}
	return symbol
}
