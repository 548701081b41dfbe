package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the ranking history and device token tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`create table if not exists ranking_cycles (
			id uuid primary key,
			started_at timestamptz not null,
			finished_at timestamptz not null,
			evaluated int not null default 0,
			accepted int not null default 0
		);`,
		`create index if not exists ranking_cycles_started_at_idx on ranking_cycles(started_at desc);`,
		`create table if not exists analysis_records (
			cycle_id uuid not null references ranking_cycles(id) on delete cascade,
			rank int not null,
			symbol text not null,
			score double precision not null,
			confidence double precision not null,
			status text not null,
			simulated boolean not null default false,
			record jsonb not null,
			primary key (cycle_id, rank)
		);`,
		`create index if not exists analysis_records_symbol_idx on analysis_records(symbol, cycle_id);`,
		`create table if not exists device_tokens (
			token text primary key,
			registered_at timestamptz not null default now()
		);`,
	}

	for i, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
