package sqlutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrRetriesExhausted is returned when every serializable attempt lost to a
// concurrent transaction.
var ErrRetriesExhausted = errors.New("serializable transaction retries exhausted")

// ErrConflict marks an error that a replay of the transaction may resolve,
// such as losing an insert race on a unique index.
var ErrConflict = errors.New("transaction conflict")

// TxBeginner is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// RetryPolicy bounds how often a serializable transaction is replayed.
type RetryPolicy struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

// DefaultRetryPolicy is tuned for short market commits.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    8,
		InitialBackoff: 75 * time.Millisecond,
		MaxBackoff:     1200 * time.Millisecond,
	}
}

// Run executes fn inside a pgx transaction at the given isolation level.
// If fn returns an error the tx rolls back, else it commits.
func Run[T any](
	ctx context.Context,
	db TxBeginner,
	iso pgx.TxIsoLevel,
	newQueries func(pgx.Tx) T,
	fn func(q T) error,
) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{IsoLevel: iso}) // BEGIN
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after commit

	if err := fn(newQueries(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx) // COMMIT
}

// RunSerializable runs fn at SERIALIZABLE isolation and replays the whole
// transaction when it fails with a retryable conflict. Any other error from
// fn is returned immediately. Backoff waits go through clock.
func RunSerializable[T any](
	ctx context.Context,
	db TxBeginner,
	clock clockwork.Clock,
	policy RetryPolicy,
	newQueries func(pgx.Tx) T,
	fn func(q T) error,
) error {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	backoff := policy.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := Run(ctx, db, pgx.Serializable, newQueries, fn)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err
		log.Debug().Int("attempt", attempt).Err(err).Msg("serializable transaction conflict, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(backoff):
		}
		backoff *= 2
		if backoff > policy.MaxBackoff {
			backoff = policy.MaxBackoff
		}
	}
	return fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
}

// IsRetryable reports whether replaying the transaction may succeed.
func IsRetryable(err error) bool {
	return IsSerializationFailure(err) || errors.Is(err, ErrConflict)
}

// IsSerializationFailure reports SQLSTATE 40001 or 40P01 anywhere in err's chain.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// IsUniqueViolation reports SQLSTATE 23505, optionally for a specific constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	return false
}
