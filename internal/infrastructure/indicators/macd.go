package indicators

import "screener-engine/internal/domain"

// MACD computes the MACD line, its signal line and histogram on the last bar.
// A fresh crossover on the last bar takes precedence; otherwise the sign of
// the histogram decides the signal.
func MACD(candles []domain.Candle, fast, slow, signal int) domain.MACDResult {
	neutral := domain.MACDResult{Signal: domain.MACDNeutral}
	if fast <= 0 || slow <= 0 || signal <= 0 || len(candles) < slow+signal {
		return neutral
	}

	closes := Closes(candles)
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	// Defined from index slow-1 onward.
	line := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		line = append(line, fastEMA[i]-slowEMA[i])
	}
	signalLine := EMA(line, signal)

	last := len(line) - 1
	macd, sig := line[last], signalLine[last]
	prevMacd, prevSig := line[last-1], signalLine[last-1]
	hist := macd - sig

	res := domain.MACDResult{Value: macd, SignalLine: sig, Histogram: hist, Signal: domain.MACDNeutral}
	switch {
	case hist > 0 && prevMacd <= prevSig:
		res.Signal, res.Crossover = domain.MACDBullish, true
	case hist < 0 && prevMacd >= prevSig:
		res.Signal, res.Crossover = domain.MACDBearish, true
	case hist > 0:
		res.Signal = domain.MACDBullish
	case hist < 0:
		res.Signal = domain.MACDBearish
	}
	return res
}
