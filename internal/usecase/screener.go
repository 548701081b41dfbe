package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"screener-engine/internal/domain"
	"screener-engine/internal/infrastructure/okx"
)

// MarketDataProvider supplies instruments, tickers and candles.
type MarketDataProvider interface {
	GetInstruments(ctx context.Context, quoteCcy string) ([]okx.Instrument, error)
	GetTickers(ctx context.Context) ([]domain.TickerSnapshot, error)
	GetCandles(ctx context.Context, instID, bar string, limit int) ([]domain.Candle, error)
}

// CycleCache shares the latest cycle with other instances.
type CycleCache interface {
	StoreLatest(ctx context.Context, cycle domain.RankingCycle) error
	LoadLatest(ctx context.Context) (domain.RankingCycle, error)
	LoadRecord(ctx context.Context, symbol string) (domain.AnalysisRecord, error)
}

// ScreenerSettings controls market data collection for a cycle.
type ScreenerSettings struct {
	Timeframe      string
	CandleLimit    int
	MaxInstruments int
	BatchSize      int
}

// ScreenerUsecase runs ranking cycles over the live market.
type ScreenerUsecase struct {
	provider MarketDataProvider
	pipeline *RankingPipeline
	filters  domain.FilterSettings
	repo     domain.ScreenerRepository
	history  domain.CycleHistoryRepository
	cache    CycleCache
	notifier *Notifier
	settings ScreenerSettings
	logger   *slog.Logger

	running sync.Mutex
}

// ScreenerOption wires optional collaborators.
type ScreenerOption func(*ScreenerUsecase)

func WithHistory(history domain.CycleHistoryRepository) ScreenerOption {
	return func(uc *ScreenerUsecase) { uc.history = history }
}

func WithCache(cache CycleCache) ScreenerOption {
	return func(uc *ScreenerUsecase) { uc.cache = cache }
}

func WithNotifier(n *Notifier) ScreenerOption {
	return func(uc *ScreenerUsecase) { uc.notifier = n }
}

func NewScreenerUsecase(
	provider MarketDataProvider,
	pipeline *RankingPipeline,
	filters domain.FilterSettings,
	repo domain.ScreenerRepository,
	settings ScreenerSettings,
	logger *slog.Logger,
	opts ...ScreenerOption,
) *ScreenerUsecase {
	if settings.BatchSize <= 0 {
		settings.BatchSize = 1
	}
	uc := &ScreenerUsecase{
		provider: provider,
		pipeline: pipeline,
		filters:  filters,
		repo:     repo,
		settings: settings,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ErrCycleRunning is returned when a cycle is already in progress.
var ErrCycleRunning = errors.New("ranking cycle already running")

// RunCycle fetches market data, ranks it and publishes the result.
func (uc *ScreenerUsecase) RunCycle(ctx context.Context) (domain.RankingCycle, error) {
	if !uc.running.TryLock() {
		return domain.RankingCycle{}, ErrCycleRunning
	}
	defer uc.running.Unlock()

	start := time.Now()
	uc.logger.Info("starting ranking cycle")

	snapshots, err := uc.candidates(ctx)
	if err != nil {
		return domain.RankingCycle{}, err
	}
	inputs := uc.collectCandles(ctx, snapshots)

	res := uc.pipeline.Rank(ctx, inputs)
	if err := ctx.Err(); err != nil {
		return domain.RankingCycle{}, fmt.Errorf("ranking cycle: %w", err)
	}

	cycle := domain.RankingCycle{
		ID:         uuid.NewString(),
		StartedAt:  start,
		FinishedAt: time.Now(),
		Evaluated:  res.Stats.Evaluated,
		Records:    res.Records,
	}
	uc.publish(ctx, cycle)

	uc.logger.Info("ranking cycle finished",
		"cycle", cycle.ID,
		"candidates", len(snapshots),
		"accepted", res.Stats.Accepted,
		"failed", res.Stats.Failed,
		"duration", time.Since(start).Round(time.Millisecond))
	return cycle, nil
}

// candidates returns tickers of tradable instruments, largest volume first.
func (uc *ScreenerUsecase) candidates(ctx context.Context) ([]domain.TickerSnapshot, error) {
	instruments, err := uc.provider.GetInstruments(ctx, uc.filters.QuoteCurrency)
	if err != nil {
		return nil, fmt.Errorf("get instruments: %w", err)
	}
	tradable := make(map[string]bool, len(instruments))
	for _, inst := range instruments {
		if !uc.filters.IsExcluded(inst.InstID) {
			tradable[inst.InstID] = true
		}
	}

	tickers, err := uc.provider.GetTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("get tickers: %w", err)
	}

	var out []domain.TickerSnapshot
	for _, t := range tickers {
		if tradable[t.Symbol] && t.Volume24h >= uc.filters.MinVolume {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Volume24h > out[j].Volume24h
	})
	if uc.settings.MaxInstruments > 0 && len(out) > uc.settings.MaxInstruments {
		out = out[:uc.settings.MaxInstruments]
	}
	return out, nil
}

// collectCandles fetches candles for each snapshot. A failed fetch leaves the
// asset without candles so it is still ranked on its snapshot.
func (uc *ScreenerUsecase) collectCandles(ctx context.Context, snapshots []domain.TickerSnapshot) []AssetInput {
	inputs := make([]AssetInput, len(snapshots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.settings.BatchSize)
	for i, snap := range snapshots {
		inputs[i].Snapshot = snap
		i, snap := i, snap
		g.Go(func() error {
			candles, err := uc.provider.GetCandles(gctx, snap.Symbol, uc.settings.Timeframe, uc.settings.CandleLimit)
			if err != nil {
				uc.logger.Warn("get candles", "symbol", snap.Symbol, "error", err)
				return nil
			}
			inputs[i].Candles = candles
			return nil
		})
	}
	_ = g.Wait()
	return inputs
}

func (uc *ScreenerUsecase) publish(ctx context.Context, cycle domain.RankingCycle) {
	uc.repo.SaveCycle(cycle)

	if uc.cache != nil {
		if err := uc.cache.StoreLatest(ctx, cycle); err != nil {
			uc.logger.Warn("cache cycle", "error", err)
		}
	}
	if uc.history != nil {
		if err := uc.history.SaveCycle(ctx, cycle); err != nil {
			uc.logger.Error("save cycle history", "cycle", cycle.ID, "error", err)
		}
	}
	if uc.notifier != nil {
		uc.notifier.Notify(ctx, cycle.Records)
	}
}

// WarmFromCache restores the latest cycle from the shared cache so a fresh
// instance can serve rankings before its first cycle completes.
func (uc *ScreenerUsecase) WarmFromCache(ctx context.Context) error {
	if uc.cache == nil {
		return nil
	}
	cycle, err := uc.cache.LoadLatest(ctx)
	if err != nil {
		return err
	}
	uc.repo.SaveCycle(cycle)
	uc.logger.Info("restored cycle from cache", "cycle", cycle.ID, "records", len(cycle.Records))
	return nil
}

// History lists persisted cycles, newest first.
func (uc *ScreenerUsecase) History(ctx context.Context, limit int) ([]domain.RankingCycle, error) {
	if uc.history == nil {
		if cycle, ok := uc.repo.LatestCycle(); ok {
			return []domain.RankingCycle{cycle}, nil
		}
		return nil, nil
	}
	return uc.history.ListCycles(ctx, limit)
}

// Record returns the latest record for symbol, falling back to the shared
// cache when this instance has not ranked it.
func (uc *ScreenerUsecase) Record(ctx context.Context, symbol string) (domain.AnalysisRecord, error) {
	if rec, ok := uc.repo.GetRecord(symbol); ok {
		return rec, nil
	}
	if uc.cache == nil {
		return domain.AnalysisRecord{}, domain.ErrNotFound
	}
	return uc.cache.LoadRecord(ctx, symbol)
}

// SymbolHistory returns the symbol's records from past cycles, newest first.
func (uc *ScreenerUsecase) SymbolHistory(ctx context.Context, symbol string, limit int) ([]domain.AnalysisRecord, error) {
	if uc.history == nil {
		if rec, ok := uc.repo.GetRecord(symbol); ok {
			return []domain.AnalysisRecord{rec}, nil
		}
		return nil, nil
	}
	return uc.history.SymbolHistory(ctx, symbol, limit)
}
