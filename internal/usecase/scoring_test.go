package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"screener-engine/internal/domain"
)

// bullishIndicators fires every scoring rule for a price of 100.
func bullishIndicators() domain.IndicatorSet {
	return domain.IndicatorSet{
		RSI:        60,
		MACD:       domain.MACDResult{Value: 1, SignalLine: 0.5, Histogram: 0.5, Signal: domain.MACDBullish},
		SMA:        95,
		Trend:      domain.TrendResult{Direction: domain.TrendUp, Strength: 80},
		Volume:     domain.VolumeResult{Increase: 35, Trend: "increasing"},
		Liquidity:  0.4,
		Resistance: 101,
	}
}

func TestScoreAllSignals(t *testing.T) {
	s := NewScorer(domain.DefaultEngineConfig())
	res := s.Score(domain.TickerSnapshot{Price: 100}, bullishIndicators())

	assert.Equal(t, 100.0, res.Score)
	assert.Len(t, res.Signals, signalRuleCount)
}

func TestScoreNoSignals(t *testing.T) {
	s := NewScorer(domain.DefaultEngineConfig())
	ind := domain.IndicatorSet{
		RSI:  50,
		MACD: domain.MACDResult{Signal: domain.MACDNeutral},
		SMA:  100,
	}
	res := s.Score(domain.TickerSnapshot{Price: 100}, ind)

	assert.Zero(t, res.Score)
	assert.Empty(t, res.Signals)
}

func TestScoreIsClamped(t *testing.T) {
	cfg := domain.DefaultEngineConfig()
	cfg.Weights = domain.ScoringWeights{
		RSIBreakout: 40, MACDSignal: 40, SMABreakout: 40, ResistanceBreak: 40,
		LiquidityCross: 40, VolumeIncrease: 40, TrendStrength: 40,
	}
	res := NewScorer(cfg).Score(domain.TickerSnapshot{Price: 100}, bullishIndicators())
	assert.Equal(t, 100.0, res.Score)
}

func TestScoreRules(t *testing.T) {
	s := NewScorer(domain.DefaultEngineConfig())

	tests := []struct {
		name   string
		mutate func(*domain.IndicatorSet)
		price  float64
		kind   domain.SignalKind
		fires  bool
	}{
		{"rsi at breakout threshold", func(i *domain.IndicatorSet) { i.RSI = 50 }, 100, domain.SignalRSIBreakout, false},
		{"rsi overbought", func(i *domain.IndicatorSet) { i.RSI = 70 }, 100, domain.SignalRSIBreakout, false},
		{"rsi in band", func(i *domain.IndicatorSet) { i.RSI = 69.9 }, 100, domain.SignalRSIBreakout, true},
		{"macd histogram positive but neutral label", func(i *domain.IndicatorSet) {
			i.MACD = domain.MACDResult{Histogram: 0.1, Signal: domain.MACDNeutral}
		}, 100, domain.SignalMACD, true},
		{"macd bearish", func(i *domain.IndicatorSet) {
			i.MACD = domain.MACDResult{Histogram: -0.1, Signal: domain.MACDBearish}
		}, 100, domain.SignalMACD, false},
		{"price equals sma", func(i *domain.IndicatorSet) { i.SMA = 100 }, 100, domain.SignalSMABreakout, false},
		{"resistance within 2%", func(i *domain.IndicatorSet) { i.Resistance = 102 }, 100, domain.SignalResistanceBreak, true},
		{"resistance far away", func(i *domain.IndicatorSet) { i.Resistance = 110 }, 100, domain.SignalResistanceBreak, false},
		{"resistance unknown", func(i *domain.IndicatorSet) { i.Resistance = 0 }, 100, domain.SignalResistanceBreak, false},
		{"liquidity negative", func(i *domain.IndicatorSet) { i.Liquidity = -0.2 }, 100, domain.SignalLiquidityCross, false},
		{"volume at threshold", func(i *domain.IndicatorSet) { i.Volume.Increase = 20 }, 100, domain.SignalVolumeIncrease, false},
		{"trend at threshold", func(i *domain.IndicatorSet) { i.Trend.Strength = 60 }, 100, domain.SignalTrendStrength, false},
		{"zero price never breaks out", func(i *domain.IndicatorSet) { i.SMA = 0; i.Resistance = 0 }, 0, domain.SignalSMABreakout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := bullishIndicators()
			tt.mutate(&ind)
			res := s.Score(domain.TickerSnapshot{Price: tt.price}, ind)

			found := false
			for _, sig := range res.Signals {
				if sig.Kind == tt.kind {
					found = true
				}
			}
			assert.Equal(t, tt.fires, found)
			assert.GreaterOrEqual(t, res.Score, 0.0)
			assert.LessOrEqual(t, res.Score, 100.0)
		})
	}
}
