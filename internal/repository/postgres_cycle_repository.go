package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"screener-engine/internal/domain"
)

// PostgresCycleRepository stores ranking history. Each record is kept as
// jsonb next to a few columns used for filtering.
type PostgresCycleRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCycleRepository(pool *pgxpool.Pool) *PostgresCycleRepository {
	return &PostgresCycleRepository{pool: pool}
}

func (r *PostgresCycleRepository) SaveCycle(ctx context.Context, cycle domain.RankingCycle) error {
	id, err := uuid.Parse(cycle.ID)
	if err != nil {
		return fmt.Errorf("cycle id: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `
		insert into ranking_cycles(id, started_at, finished_at, evaluated, accepted)
		values ($1, $2, $3, $4, $5)
	`, id, cycle.StartedAt, cycle.FinishedAt, cycle.Evaluated, len(cycle.Records)); err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	batch := &pgx.Batch{}
	for i, rec := range cycle.Records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		batch.Queue(`
			insert into analysis_records(cycle_id, rank, symbol, score, confidence, status, simulated, record)
			values ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, i+1, rec.Symbol, rec.Score, rec.Confidence, rec.Status, rec.Simulated, data)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert records: %w", err)
	}
	return tx.Commit(ctx)
}

// ListCycles returns the newest cycles first, records in rank order.
func (r *PostgresCycleRepository) ListCycles(ctx context.Context, limit int) ([]domain.RankingCycle, error) {
	rows, err := r.pool.Query(ctx, `
		select id::text, started_at, finished_at, evaluated
		from ranking_cycles
		order by started_at desc
		limit $1
	`, limit)
	if err != nil {
		return nil, err
	}
	cycles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RankingCycle, error) {
		var c domain.RankingCycle
		err := row.Scan(&c.ID, &c.StartedAt, &c.FinishedAt, &c.Evaluated)
		return c, err
	})
	if err != nil {
		return nil, err
	}

	for i := range cycles {
		recs, err := r.cycleRecords(ctx, cycles[i].ID)
		if err != nil {
			return nil, err
		}
		cycles[i].Records = recs
	}
	return cycles, nil
}

// SymbolHistory returns the most recent records for one symbol across cycles.
func (r *PostgresCycleRepository) SymbolHistory(ctx context.Context, symbol string, limit int) ([]domain.AnalysisRecord, error) {
	rows, err := r.pool.Query(ctx, `
		select a.record
		from analysis_records a
		join ranking_cycles c on c.id = a.cycle_id
		where a.symbol = $1
		order by c.started_at desc
		limit $2
	`, symbol, limit)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

func (r *PostgresCycleRepository) cycleRecords(ctx context.Context, cycleID string) ([]domain.AnalysisRecord, error) {
	rows, err := r.pool.Query(ctx, `
		select record from analysis_records where cycle_id = $1 order by rank
	`, cycleID)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]domain.AnalysisRecord, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AnalysisRecord, error) {
		var data []byte
		var rec domain.AnalysisRecord
		if err := row.Scan(&data); err != nil {
			return rec, err
		}
		err := json.Unmarshal(data, &rec)
		return rec, err
	})
}

// PostgresTokenRepository persists FCM device tokens.
type PostgresTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTokenRepository(pool *pgxpool.Pool) *PostgresTokenRepository {
	return &PostgresTokenRepository{pool: pool}
}

func (r *PostgresTokenRepository) Register(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `
		insert into device_tokens(token) values ($1)
		on conflict (token) do update set registered_at = now()
	`, token)
	return err
}

func (r *PostgresTokenRepository) Unregister(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `delete from device_tokens where token = $1`, token)
	return err
}

func (r *PostgresTokenRepository) LoadAll(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `select token from device_tokens`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
