package db

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig tunes the pgx connection pool.
type PoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:          8,
		MinConns:          1,
		MaxConnLifetime:   30 * time.Minute,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: 30 * time.Second,
	}
}

// PoolConfigFromEnv reads DB_* overrides on top of the defaults. Malformed
// values are ignored.
func PoolConfigFromEnv() PoolConfig {
	cfg := DefaultPoolConfig()

	envInt32("DB_MAX_CONNS", &cfg.MaxConns)
	envInt32("DB_MIN_CONNS", &cfg.MinConns)
	envDuration("DB_MAX_CONN_LIFETIME", &cfg.MaxConnLifetime)
	envDuration("DB_MAX_CONN_IDLE_TIME", &cfg.MaxConnIdleTime)
	envDuration("DB_HEALTHCHECK_PERIOD", &cfg.HealthCheckPeriod)

	if cfg.MaxConns < 1 {
		cfg.MaxConns = 1
	}
	if cfg.MinConns < 0 {
		cfg.MinConns = 0
	}
	if cfg.MinConns > cfg.MaxConns {
		cfg.MinConns = cfg.MaxConns
	}

	return cfg
}

func envInt32(key string, dst *int32) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// withSSLMode requires TLS for remote hosts unless the URL already sets
// sslmode. Local development databases are left untouched.
func withSSLMode(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		// pgx will surface a better error
		return dbURL
	}

	q := u.Query()
	if q.Get("sslmode") != "" {
		return dbURL
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1", "":
		q.Set("sslmode", "disable")
	default:
		q.Set("sslmode", "require")
	}
	u.RawQuery = q.Encode()
	return strings.TrimSpace(u.String())
}

// NewPool opens a pool and verifies connectivity before returning it.
func NewPool(ctx context.Context, databaseURL string, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(withSSLMode(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
