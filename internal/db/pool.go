// Package db owns the lifecycle of the spatial database connection pool.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/gridsight/site-scorer/internal/config"
)

// Pool is the subset of pgxpool.Pool used by the query layer. It is satisfied
// by *pgxpool.Pool and by pgxmock.PgxPoolIface in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PoolError indicates the connection pool could not be created. It is fatal
// to the request that triggered pool creation.
type PoolError struct {
	Err error
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("db: pool unavailable: %v", e.Err)
}

func (e *PoolError) Unwrap() error {
	return e.Err
}

// Acquirer hands out the current pool, creating or refreshing it as needed.
// Implemented by RefreshingPool.
type Acquirer interface {
	Acquire(ctx context.Context) (Pool, error)
}

// Factory creates a fresh connection pool.
type Factory func(ctx context.Context) (Pool, error)

// NewPgxFactory returns a Factory that builds a pgxpool.Pool from the store
// configuration and verifies it with a ping.
func NewPgxFactory(cfg config.StoreConfig) Factory {
	return func(ctx context.Context) (Pool, error) {
		pgxCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "db: parse config")
		}

		minConns := int32(1)
		maxConns := int32(10)
		if cfg.MinConns > 0 {
			minConns = cfg.MinConns
		}
		if cfg.MaxConns > 0 {
			maxConns = cfg.MaxConns
		}
		pgxCfg.MinConns = minConns
		pgxCfg.MaxConns = maxConns

		pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
		if err != nil {
			return nil, eris.Wrap(err, "db: create pool")
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, eris.Wrap(err, "db: ping")
		}
		return pool, nil
	}
}
