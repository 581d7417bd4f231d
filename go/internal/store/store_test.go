package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mcdev12/hoops/go/internal/sqlutil"
	"github.com/stretchr/testify/assert"
)

func TestAuctionInsertErr(t *testing.T) {
	t.Run("lost race on the active index is retryable", func(t *testing.T) {
		err := auctionInsertErr(&pgconn.PgError{Code: "23505", ConstraintName: activeAuctionIndex})
		assert.ErrorIs(t, err, sqlutil.ErrConflict)
		assert.True(t, sqlutil.IsRetryable(err))
	})

	t.Run("other unique violations are not", func(t *testing.T) {
		err := auctionInsertErr(&pgconn.PgError{Code: "23505", ConstraintName: "auctions_pkey"})
		assert.False(t, sqlutil.IsRetryable(err))
	})

	t.Run("plain failures are wrapped", func(t *testing.T) {
		boom := errors.New("connection reset")
		err := auctionInsertErr(boom)
		assert.ErrorIs(t, err, boom)
		assert.False(t, sqlutil.IsRetryable(err))
	})
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(pgx.ErrNoRows, "league"), ErrNotFound)
	assert.NotErrorIs(t, notFound(errors.New("connection reset"), "league"), ErrNotFound)
}
