package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing tuned for the API and worker processes sharing one database.
// Commission distribution bursts are short single-row updates, so a modest
// pool with recycled connections is enough.
const (
	defaultMaxConns        = 16
	defaultMaxConnLifetime = 30 * time.Minute
)

// New creates the PostgreSQL connection pool backing the user directory,
// earnings ledger and content tables.
func New(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("platform/db: parse config: %w", err)
	}
	config.MaxConns = defaultMaxConns
	config.MaxConnLifetime = defaultMaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("platform/db: new pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("platform/db: ping: %w", err)
	}

	return pool, nil
}
