package usecase

import (
	"screener-engine/internal/domain"
	"screener-engine/internal/infrastructure/indicators"
)

// simulatedIndicators fabricates a plausible indicator set for assets with no
// candle history. Records built from it are flagged Simulated.
func (e *Engine) simulatedIndicators(snap domain.TickerSnapshot) domain.IndicatorSet {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	r := e.rng

	price := snap.Price
	ind := domain.IndicatorSet{
		RSI:        30 + r.Float64()*50,
		SMA:        price * (0.95 + r.Float64()*0.1),
		Liquidity:  r.Float64()*2 - 1,
		Resistance: price * (1 + r.Float64()*0.1),
		Volatility: indicators.Volatility(snap.Change24h, snap.High24h, snap.Low24h, price),
	}

	hist := (r.Float64() - 0.5) * price * 0.01
	ind.MACD = domain.MACDResult{Value: hist * 2, SignalLine: hist, Histogram: hist, Signal: domain.MACDNeutral}
	switch {
	case hist > 0:
		ind.MACD.Signal = domain.MACDBullish
	case hist < 0:
		ind.MACD.Signal = domain.MACDBearish
	}

	strength := r.Float64() * 100
	dir := domain.TrendUp
	if r.Float64() < 0.5 {
		dir = domain.TrendDown
	}
	ind.Trend = domain.TrendResult{Direction: dir, Strength: strength}

	inc := (r.Float64() - 0.3) * 100
	ind.Volume = domain.VolumeResult{Increase: inc, Trend: "increasing"}
	if inc < 0 {
		ind.Volume.Trend = "decreasing"
	}
	return ind
}
