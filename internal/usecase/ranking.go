package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"screener-engine/internal/domain"
)

// AssetInput is one asset to rank.
type AssetInput struct {
	Snapshot domain.TickerSnapshot `json:"snapshot"`
	Candles  []domain.Candle       `json:"candles"`
}

// Evaluator scores a single asset.
type Evaluator interface {
	Evaluate(snap domain.TickerSnapshot, candles []domain.Candle) domain.AnalysisRecord
}

// RankStats counts assets by their final state.
type RankStats struct {
	Total     int `json:"total"`
	Evaluated int `json:"evaluated"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	Failed    int `json:"failed"`  // evaluation panicked
	Skipped   int `json:"skipped"` // context cancelled first
}

// RankResult is the accepted records, best first.
type RankResult struct {
	Records []domain.AnalysisRecord
	Stats   RankStats
}

// RankingPipeline evaluates assets in parallel, keeps those that pass the
// filters and minimum score, and orders them by score.
type RankingPipeline struct {
	eval       Evaluator
	filters    domain.FilterSettings
	minScore   float64
	maxResults int
	workers    int
	logger     *slog.Logger
}

func NewRankingPipeline(eval Evaluator, cfg domain.EngineConfig, logger *slog.Logger) (*RankingPipeline, error) {
	if eval == nil {
		return nil, fmt.Errorf("%w: evaluator is required", domain.ErrInvalidConfig)
	}
	if err := domain.ValidateRanking(cfg.Ranking.MinScore, cfg.Ranking.MaxResults); err != nil {
		return nil, err
	}
	if cfg.Ranking.Workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive", domain.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RankingPipeline{
		eval:       eval,
		filters:    cfg.Filters,
		minScore:   cfg.Ranking.MinScore,
		maxResults: cfg.Ranking.MaxResults,
		workers:    cfg.Ranking.Workers,
		logger:     logger,
	}, nil
}

// Rank evaluates every input. Inputs not yet started when ctx is cancelled
// are skipped; the rest still produce a result.
func (p *RankingPipeline) Rank(ctx context.Context, inputs []AssetInput) RankResult {
	records := make([]domain.AnalysisRecord, len(inputs))
	failed := make([]bool, len(inputs))
	for i := range records {
		records[i].State = domain.StatePending
	}

	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	for i := range inputs {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			records[i], failed[i] = p.evaluate(inputs[i])
			return nil
		})
	}
	_ = g.Wait()

	stats := RankStats{Total: len(inputs)}
	accepted := make([]domain.AnalysisRecord, 0, len(records))
	for i := range records {
		rec := &records[i]
		if rec.State == domain.StatePending {
			stats.Skipped++
			continue
		}
		stats.Evaluated++
		if failed[i] {
			stats.Failed++
		}
		if p.accept(*rec) {
			rec.State = domain.StateAccepted
			accepted = append(accepted, *rec)
			stats.Accepted++
		} else {
			rec.State = domain.StateRejected
			stats.Rejected++
		}
	}

	// Stable so equal scores keep input order
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Score > accepted[j].Score
	})
	if p.maxResults > 0 && len(accepted) > p.maxResults {
		accepted = accepted[:p.maxResults]
	}

	p.logger.Debug("ranking finished",
		"total", stats.Total, "accepted", stats.Accepted, "rejected", stats.Rejected,
		"failed", stats.Failed, "skipped", stats.Skipped, "returned", len(accepted))
	return RankResult{Records: accepted, Stats: stats}
}

// evaluate shields the pipeline from a panicking evaluator.
func (p *RankingPipeline) evaluate(in AssetInput) (rec domain.AnalysisRecord, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("evaluation panicked", "symbol", in.Snapshot.Symbol, "panic", r)
			rec = minimalRecord(sanitizeSnapshot(in.Snapshot, nil))
			failed = true
		}
	}()
	rec = p.eval.Evaluate(in.Snapshot, in.Candles)
	rec.State = domain.StateEvaluated
	return rec, false
}

func (p *RankingPipeline) accept(rec domain.AnalysisRecord) bool {
	if rec.Score < p.minScore {
		return false
	}
	if rec.Snapshot.Volume24h < p.filters.MinVolume {
		return false
	}
	return !p.filters.IsExcluded(rec.Symbol)
}

// Rank evaluates and ranks inputs with this engine, overriding the
// configured minimum score and result cap. A maxResults of 0 means no cap.
func (e *Engine) Rank(ctx context.Context, inputs []AssetInput, minScore float64, maxResults int) ([]domain.AnalysisRecord, error) {
	cfg := e.cfg
	cfg.Ranking.MinScore = minScore
	cfg.Ranking.MaxResults = maxResults
	p, err := NewRankingPipeline(e, cfg, nil)
	if err != nil {
		return nil, err
	}
	return p.Rank(ctx, inputs).Records, nil
}
