// Package dbpool owns the PostgreSQL pool behind query history.
package dbpool

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const (
	// DefaultMaxConns covers the history writer plus a few API readers.
	DefaultMaxConns = 5

	statementTimeout = 30 * time.Second
	pingTimeout      = 5 * time.Second
)

// Pool is a pgx pool limited to the calls the history store makes.
type Pool struct {
	pgx *pgxpool.Pool
}

// NewPool connects to databaseURL and verifies the connection. A maxConns of
// zero or less selects DefaultMaxConns.
func NewPool(ctx context.Context, databaseURL string, maxConns int) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	params := cfg.ConnConfig.RuntimeParams
	params["application_name"] = "studio"
	params["statement_timeout"] = strconv.FormatInt(statementTimeout.Milliseconds(), 10)

	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}
	cfg.MaxConns = int32(maxConns) //nolint:gosec // bounded by config validation.
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	p := &Pool{pgx: pool}
	if err := p.HealthCheck(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Exec runs a statement that returns no rows.
func (p *Pool) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	return p.pgx.Exec(ctx, query, args...)
}

// Query runs a statement that returns rows.
func (p *Pool) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return p.pgx.Query(ctx, query, args...)
}

// QueryRow runs a statement that returns at most one row.
func (p *Pool) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return p.pgx.QueryRow(ctx, query, args...)
}

// HealthCheck pings the database.
func (p *Pool) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := p.pgx.Ping(ctx); err != nil {
		return fmt.Errorf("pinging history database: %w", err)
	}
	return nil
}

// SQL returns a database/sql handle sharing this pool's connections. Closing
// it does not close the pool.
func (p *Pool) SQL() *sql.DB {
	return stdlib.OpenDBFromPool(p.pgx)
}

// Close releases every connection.
func (p *Pool) Close() {
	p.pgx.Close()
}
