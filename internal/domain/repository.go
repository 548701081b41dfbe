package domain

import "context"

// ScreenerRepository holds the latest ranking cycle for fast reads.
type ScreenerRepository interface {
	SaveCycle(cycle RankingCycle)
	LatestCycle() (RankingCycle, bool)
	GetRecord(symbol string) (AnalysisRecord, bool)
}

// CycleHistoryRepository persists ranking cycles.
type CycleHistoryRepository interface {
	SaveCycle(ctx context.Context, cycle RankingCycle) error
	ListCycles(ctx context.Context, limit int) ([]RankingCycle, error)
	SymbolHistory(ctx context.Context, symbol string, limit int) ([]AnalysisRecord, error)
}

// TokenRepository stores FCM device tokens.
type TokenRepository interface {
	Register(ctx context.Context, token string) error
	Unregister(ctx context.Context, token string) error
	GetAll() []string
	Count() int
}
