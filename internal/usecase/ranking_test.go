package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screener-engine/internal/domain"
)

// fixedEvaluator scores each symbol from a table and panics on "PANIC-USDT".
type fixedEvaluator map[string]float64

func (f fixedEvaluator) Evaluate(snap domain.TickerSnapshot, _ []domain.Candle) domain.AnalysisRecord {
	if snap.Symbol == "PANIC-USDT" {
		panic("boom")
	}
	return domain.AnalysisRecord{Symbol: snap.Symbol, Snapshot: snap, Score: f[snap.Symbol]}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rankingConfig(minScore float64, maxResults int) domain.EngineConfig {
	cfg := domain.DefaultEngineConfig()
	cfg.Ranking.MinScore = minScore
	cfg.Ranking.MaxResults = maxResults
	cfg.Ranking.Workers = 3
	return cfg
}

func inputsFor(symbols ...string) []AssetInput {
	out := make([]AssetInput, len(symbols))
	for i, s := range symbols {
		out[i] = AssetInput{Snapshot: domain.TickerSnapshot{Symbol: s, Price: 1, Volume24h: 1e6}}
	}
	return out
}

func symbolsOf(records []domain.AnalysisRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Symbol
	}
	return out
}

func TestRankFiltersSortsAndTruncates(t *testing.T) {
	eval := fixedEvaluator{"A-USDT": 90, "B-USDT": 10, "C-USDT": 70, "D-USDT": 70, "E-USDT": 40}
	p, err := NewRankingPipeline(eval, rankingConfig(50, 3), discardLogger())
	require.NoError(t, err)

	res := p.Rank(context.Background(), inputsFor("A-USDT", "B-USDT", "C-USDT", "D-USDT", "E-USDT"))

	assert.Equal(t, []string{"A-USDT", "C-USDT", "D-USDT"}, symbolsOf(res.Records))
	for _, r := range res.Records {
		assert.Equal(t, domain.StateAccepted, r.State)
	}
	assert.Equal(t, RankStats{Total: 5, Evaluated: 5, Accepted: 3, Rejected: 2}, res.Stats)
}

func TestRankStableForEqualScores(t *testing.T) {
	eval := fixedEvaluator{}
	symbols := []string{"Z-USDT", "Y-USDT", "X-USDT", "W-USDT", "V-USDT", "U-USDT"}
	for _, s := range symbols {
		eval[s] = 60
	}
	p, err := NewRankingPipeline(eval, rankingConfig(50, 0), discardLogger())
	require.NoError(t, err)

	res := p.Rank(context.Background(), inputsFor(symbols...))
	assert.Equal(t, symbols, symbolsOf(res.Records))
}

func TestRankAppliesFilters(t *testing.T) {
	eval := fixedEvaluator{"USDC-USDT": 95, "THIN-USDT": 95, "OK-USDT": 95}
	p, err := NewRankingPipeline(eval, rankingConfig(50, 10), discardLogger())
	require.NoError(t, err)

	inputs := inputsFor("USDC-USDT", "THIN-USDT", "OK-USDT")
	inputs[1].Snapshot.Volume24h = 1000

	res := p.Rank(context.Background(), inputs)
	assert.Equal(t, []string{"OK-USDT"}, symbolsOf(res.Records))
	assert.Equal(t, 2, res.Stats.Rejected)
}

func TestRankRecoversFromPanics(t *testing.T) {
	eval := fixedEvaluator{"A-USDT": 80}
	p, err := NewRankingPipeline(eval, rankingConfig(0, 10), discardLogger())
	require.NoError(t, err)

	res := p.Rank(context.Background(), inputsFor("PANIC-USDT", "A-USDT"))

	assert.Equal(t, 1, res.Stats.Failed)
	assert.Equal(t, 2, res.Stats.Evaluated)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "A-USDT", res.Records[0].Symbol)

	failed := res.Records[1]
	assert.Equal(t, "PANIC-USDT", failed.Symbol)
	assert.Zero(t, failed.Score)
	assert.Equal(t, "WEAK", failed.Status)
	assert.Equal(t, 50.0, failed.Indicators.RSI)
	assert.Equal(t, domain.MACDNeutral, failed.Indicators.MACD.Signal)
	assert.Equal(t, domain.TrendNeutral, failed.Indicators.Trend.Direction)
	assert.Equal(t, 5.0, failed.Confidence)
	assert.NotEmpty(t, failed.Analysis)
	assert.InDelta(t, 0.95, failed.Levels.Support1, 1e-9)
	assert.InDelta(t, 1.05, failed.Levels.Resistance1, 1e-9)
	assert.Less(t, failed.Levels.Support3, failed.Levels.Support2)
	assert.Greater(t, failed.Levels.Resistance3, failed.Levels.Resistance2)
}

func TestRankCancelledContext(t *testing.T) {
	p, err := NewRankingPipeline(fixedEvaluator{"A-USDT": 80}, rankingConfig(0, 10), discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := p.Rank(ctx, inputsFor("A-USDT", "B-USDT"))

	assert.Empty(t, res.Records)
	assert.Equal(t, 2, res.Stats.Skipped)
}

func TestNewRankingPipelineValidation(t *testing.T) {
	tests := []struct {
		name string
		eval Evaluator
		cfg  domain.EngineConfig
	}{
		{"negative max results", fixedEvaluator{}, rankingConfig(50, -1)},
		{"min score above 100", fixedEvaluator{}, rankingConfig(120, 10)},
		{"negative min score", fixedEvaluator{}, rankingConfig(-1, 10)},
		{"missing evaluator", nil, rankingConfig(50, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRankingPipeline(tt.eval, tt.cfg, discardLogger())
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}
