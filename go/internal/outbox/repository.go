package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/sqlc-dev/pqtype"
)

// ErrEventNotFound is returned by FetchByID when no row matches.
var ErrEventNotFound = errors.New("outbox event not found")

// Repository reads and acknowledges market_outbox rows. It runs on a plain
// database/sql handle opened with the lib/pq driver, separate from the
// pgx pool the engines commit through.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const fetchUnsentOutbox = `SELECT id, league_id, event_type, payload, created_at
FROM market_outbox
WHERE sent_at IS NULL
ORDER BY created_at
LIMIT $1`

// FetchUnsent returns up to limit unsent events, oldest first.
func (r *Repository) FetchUnsent(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, fetchUnsentOutbox, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox: %w", err)
	}
	defer rows.Close()

	var out []models.OutboxEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate unsent outbox: %w", err)
	}
	return out, nil
}

const fetchOutboxByID = `SELECT id, league_id, event_type, payload, created_at
FROM market_outbox
WHERE id = $1 AND sent_at IS NULL`

// FetchByID returns an unsent event. Rows already marked sent report
// ErrEventNotFound so a late notification never republishes them.
func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (models.OutboxEvent, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, fetchOutboxByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.OutboxEvent{}, fmt.Errorf("%s: %w", id, ErrEventNotFound)
	}
	return e, err
}

const markOutboxSent = `UPDATE market_outbox SET sent_at = $2 WHERE id = ANY($1::uuid[]) AND sent_at IS NULL`

// MarkSent stamps every id as sent at the given time.
func (r *Repository) MarkSent(ctx context.Context, at time.Time, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	if _, err := r.db.ExecContext(ctx, markOutboxSent, pq.Array(raw), at); err != nil {
		return fmt.Errorf("failed to mark outbox sent: %w", err)
	}
	return nil
}

const countUnsentOutbox = `SELECT count(*) FROM market_outbox WHERE sent_at IS NULL`

// CountUnsent reports the relay backlog.
func (r *Repository) CountUnsent(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countUnsentOutbox).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unsent outbox: %w", err)
	}
	return n, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.OutboxEvent, error) {
	var (
		e       models.OutboxEvent
		payload pqtype.NullRawMessage
	)
	if err := row.Scan(&e.ID, &e.LeagueID, &e.EventType, &payload, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("failed to scan outbox event: %w", err)
	}
	if payload.Valid {
		e.Payload = payload.RawMessage
	}
	return e, nil
}
