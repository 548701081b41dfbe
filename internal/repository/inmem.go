package repository

import (
	"sync"

	"screener-engine/internal/domain"
)

// InMemoryScreenerRepository holds the latest ranking cycle.
type InMemoryScreenerRepository struct {
	cycle    domain.RankingCycle
	bySymbol map[string]int
	hasCycle bool
	mu       sync.RWMutex
}

func NewInMemoryScreenerRepository() *InMemoryScreenerRepository {
	return &InMemoryScreenerRepository{bySymbol: map[string]int{}}
}

// SaveCycle replaces the stored cycle; every cycle covers the whole market.
func (r *InMemoryScreenerRepository) SaveCycle(cycle domain.RankingCycle) {
	idx := make(map[string]int, len(cycle.Records))
	for i, rec := range cycle.Records {
		idx[rec.Symbol] = i
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycle = cycle
	r.bySymbol = idx
	r.hasCycle = true
}

// LatestCycle returns a copy of the stored cycle. Records share nested
// pointers with the stored ones and must be treated as read-only.
func (r *InMemoryScreenerRepository) LatestCycle() (domain.RankingCycle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.cycle
	out.Records = make([]domain.AnalysisRecord, len(r.cycle.Records))
	copy(out.Records, r.cycle.Records)
	return out, r.hasCycle
}

func (r *InMemoryScreenerRepository) GetRecord(symbol string) (domain.AnalysisRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.bySymbol[symbol]
	if !ok {
		return domain.AnalysisRecord{}, false
	}
	return r.cycle.Records[i], true
}
