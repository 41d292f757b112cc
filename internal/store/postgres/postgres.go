// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package postgres implements store.Store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/store"
)

// DefaultTimeout bounds every store call unless overridden.
const DefaultTimeout = 5 * time.Second

// emailConstraint is the case-insensitive unique index on local_user.email.
const emailConstraint = "local_user_email_key"

// pool is the subset of pgxpool.Pool used by Store; pgxmock satisfies it.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Options tunes the connection pool.
type Options struct {
	// MaxConns caps concurrent store calls across all requests.
	MaxConns int32
	// Timeout bounds each call. Zero selects DefaultTimeout.
	Timeout time.Duration
}

// Store implements store.Store.
type Store struct {
	pool    pool
	timeout time.Duration
	close   func()
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

// New connects to dsn and returns a Store backed by a pgx pool.
func New(ctx context.Context, dsn string, opts Options) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse dsn").Wrap(err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "open pool").Wrap(err)
	}
	s := newStore(p, opts.Timeout)
	s.close = p.Close
	return s, nil
}

// NewWithPool wraps an existing pool. Used by tests.
func NewWithPool(p pool, timeout time.Duration) *Store {
	return newStore(p, timeout)
}

func newStore(p pool, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{pool: p, timeout: timeout, close: func() {}, now: time.Now}
}

// Close releases the pool.
func (s *Store) Close() { s.close() }

// Ping checks connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.queryRow(ctx, "ping", `SELECT 1`, nil, &one)
}

// exec runs a statement and returns the affected row count.
func (s *Store) exec(ctx context.Context, op, sql string, args ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, classify(ctx, op, err)
	}
	return tag.RowsAffected(), nil
}

// execOne runs a statement that must touch exactly one row.
func (s *Store) execOne(ctx context.Context, op, sql string, args ...any) error {
	n, err := s.exec(ctx, op, sql, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return oops.In("store").Code("STORE_NOT_FOUND").With("operation", op).Wrap(store.ErrNotFound)
	}
	return nil
}

// queryRow scans a single row into dest.
func (s *Store) queryRow(ctx context.Context, op, sql string, args []any, dest ...any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.pool.QueryRow(ctx, sql, args...).Scan(dest...); err != nil {
		return classify(ctx, op, err)
	}
	return nil
}

// query runs sql and calls scan once per row.
func (s *Store) query(ctx context.Context, op, sql string, args []any, scan func(pgx.Rows) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return classify(ctx, op, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return classify(ctx, op, err)
		}
	}
	if err := rows.Err(); err != nil {
		return classify(ctx, op, err)
	}
	return nil
}

// classify maps driver errors onto store sentinels. ctx is the per-call
// context, so its deadline distinguishes a store timeout from caller
// cancellation.
func classify(ctx context.Context, op string, err error) error {
	b := oops.In("store").With("operation", op)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return b.Code("STORE_TIMEOUT").Wrap(fmt.Errorf("%w: %w", errs.ErrTimeout, err))
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return b.Code("STORE_NOT_FOUND").Wrap(store.ErrNotFound)
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) {
		return b.Wrap(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		b = b.Code("STORE_CONFLICT").With("constraint", pgErr.ConstraintName)
		if pgErr.ConstraintName == emailConstraint {
			return b.Wrap(store.ErrEmailTaken)
		}
		return b.Wrap(fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName))
	}
	return b.Code("STORE_QUERY_FAILED").Wrap(err)
}
