package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"screener-engine/internal/domain"
)

const (
	keyPrefix = "screener:"
	latestKey = "cycle:latest"
)

// RankingCache keeps the latest ranking cycle in Redis for a short TTL so a
// restarted process can serve fresh results before its first cycle finishes.
type RankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRankingCache(addr, password string, db int, ttl time.Duration) *RankingCache {
	return &RankingCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// Ping verifies the connection.
func (c *RankingCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// StoreLatest caches the cycle and each of its records by symbol.
func (c *RankingCache) StoreLatest(ctx context.Context, cycle domain.RankingCycle) error {
	data, err := json.Marshal(cycle)
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, keyPrefix+latestKey, data, c.ttl)
	for _, rec := range cycle.Records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		pipe.Set(ctx, keyPrefix+"record:"+rec.Symbol, b, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache cycle %s: %w", cycle.ID, err)
	}
	return nil
}

// LoadLatest returns the cached cycle, or domain.ErrNotFound once it expired.
func (c *RankingCache) LoadLatest(ctx context.Context) (domain.RankingCycle, error) {
	var cycle domain.RankingCycle
	if err := c.get(ctx, latestKey, &cycle); err != nil {
		return domain.RankingCycle{}, err
	}
	return cycle, nil
}

// LoadRecord returns the cached record for symbol.
func (c *RankingCache) LoadRecord(ctx context.Context, symbol string) (domain.AnalysisRecord, error) {
	var rec domain.AnalysisRecord
	if err := c.get(ctx, "record:"+symbol, &rec); err != nil {
		return domain.AnalysisRecord{}, err
	}
	return rec, nil
}

func (c *RankingCache) get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *RankingCache) Close() error {
	return c.client.Close()
}
