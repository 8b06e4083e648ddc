// Package postgres provides PostgreSQL persistence using pgx v5: player
// profiles and their save blobs.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gunbench/gunbench/internal/config"
)

// readyPollInterval is the pause between readiness pings in WaitReady.
const readyPollInterval = 500 * time.Millisecond

// Pool wraps a pgx connection pool with readiness and lifecycle methods.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool creates a PostgreSQL connection pool from the given configuration.
// The pool is created lazily; no connection is attempted here. Use WaitReady
// to block until the database answers, so the game process can come up in
// parallel with its database.
//
// Precondition: cfg must contain valid database connection parameters.
func NewPool(cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// NewPoolFromDSN creates a pool from a raw connection string, with pgx's
// default pool sizing. Like NewPool it connects lazily.
func NewPoolFromDSN(dsn string) (*Pool, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// WaitReady pings the database until it answers or ctx ends.
//
// Postcondition: returns nil once a ping succeeds; the last ping error is
// wrapped into the context error on timeout.
func (p *Pool) WaitReady(ctx context.Context) error {
	var lastErr error
	for {
		pingCtx, cancel := context.WithTimeout(ctx, readyPollInterval)
		err := p.pool.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for database: %w (last ping: %v)", ctx.Err(), lastErr)
		case <-time.After(readyPollInterval):
		}
	}
}

// Health checks that the database is reachable within the given timeout.
//
// Precondition: the pool must not be closed.
// Postcondition: returns nil if the database responds within the timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases all pool resources.
//
// Postcondition: the pool is no longer usable after calling Close.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for use by repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
