package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/hoops/go/internal/apperr"
	"github.com/mcdev12/hoops/go/internal/sqlutil"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Store hands out Queriers scoped to a unit of work.
type Store interface {
	// Serializable runs fn in one SERIALIZABLE transaction. Any error from fn
	// rolls back everything fn wrote.
	Serializable(ctx context.Context, fn func(q Querier) error) error
	// ReadOnly runs fn at default isolation without a transaction.
	ReadOnly(ctx context.Context, fn func(q Querier) error) error
}

// PgStore is the Postgres Store.
type PgStore struct {
	pool  *pgxpool.Pool
	clock clockwork.Clock
	retry sqlutil.RetryPolicy
}

func NewPgStore(pool *pgxpool.Pool, clock clockwork.Clock, retry sqlutil.RetryPolicy) *PgStore {
	return &PgStore{pool: pool, clock: clock, retry: retry}
}

func (s *PgStore) Serializable(ctx context.Context, fn func(q Querier) error) error {
	err := sqlutil.RunSerializable(ctx, s.pool, s.clock, s.retry,
		func(tx pgx.Tx) Querier { return New(tx) },
		fn,
	)
	if errors.Is(err, sqlutil.ErrRetriesExhausted) {
		return apperr.Wrap(apperr.CodeConflict, err, "concurrent update, retry the request")
	}
	return err
}

func (s *PgStore) ReadOnly(ctx context.Context, fn func(q Querier) error) error {
	return fn(New(s.pool))
}

// Ping checks connectivity for health endpoints.
func (s *PgStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// notFound maps pgx.ErrNoRows to ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
