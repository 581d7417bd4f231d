package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/sqlutil"
)

func (q *Queries) CreateTrade(ctx context.Context, t models.Trade) error {
	_, err := q.db.Exec(ctx, `INSERT INTO trades (id, league_id, proposer_id, status, created_at)
VALUES ($1, $2, $3, $4, $5)`, t.ID, t.LeagueID, t.ProposerID, t.Status, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	for _, o := range t.Offers {
		_, err := q.db.Exec(ctx, `INSERT INTO trade_offers (id, trade_id, ordinal, from_user_id, to_user_id, player_id)
VALUES ($1, $2, $3, $4, $5, $6)`, o.ID, t.ID, o.Ordinal, o.FromUserID, o.ToUserID, o.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to create trade offer %d: %w", o.Ordinal, err)
		}
	}
	return nil
}

func (q *Queries) GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	return q.getTrade(ctx, id, "")
}

func (q *Queries) GetTradeForUpdate(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	return q.getTrade(ctx, id, " FOR UPDATE")
}

func (q *Queries) getTrade(ctx context.Context, id uuid.UUID, lock string) (*models.Trade, error) {
	var t models.Trade
	var resolved sql.NullTime
	err := q.db.QueryRow(ctx, `SELECT id, league_id, proposer_id, status, created_at, resolved_at
FROM trades WHERE id = $1`+lock, id).Scan(&t.ID, &t.LeagueID, &t.ProposerID, &t.Status, &t.CreatedAt, &resolved)
	if err != nil {
		return nil, notFound(err, "trade")
	}
	t.ResolvedAt = sqlutil.FromSqlTime(resolved)

	rows, err := q.db.Query(ctx, `SELECT id, trade_id, ordinal, from_user_id, to_user_id, player_id
FROM trade_offers WHERE trade_id = $1 ORDER BY ordinal`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade offers: %w", err)
	}
	for rows.Next() {
		var o models.TradeOffer
		if err := rows.Scan(&o.ID, &o.TradeID, &o.Ordinal, &o.FromUserID, &o.ToUserID, &o.PlayerID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan trade offer: %w", err)
		}
		t.Offers = append(t.Offers, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list trade offers: %w", err)
	}

	rows, err = q.db.Query(ctx, `SELECT trade_id, user_id, accepted_at
FROM trade_acceptances WHERE trade_id = $1 ORDER BY accepted_at`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade acceptances: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a models.TradeAcceptance
		if err := rows.Scan(&a.TradeID, &a.UserID, &a.AcceptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trade acceptance: %w", err)
		}
		t.Acceptances = append(t.Acceptances, a)
	}
	return &t, rows.Err()
}

func (q *Queries) CreateTradeAcceptance(ctx context.Context, a models.TradeAcceptance) error {
	_, err := q.db.Exec(ctx, `INSERT INTO trade_acceptances (trade_id, user_id, accepted_at) VALUES ($1, $2, $3)`,
		a.TradeID, a.UserID, a.AcceptedAt)
	if err != nil {
		return fmt.Errorf("failed to record trade acceptance: %w", err)
	}
	return nil
}

func (q *Queries) UpdateTradeStatus(ctx context.Context, id uuid.UUID, status models.TradeStatus, resolvedAt time.Time) error {
	tag, err := q.db.Exec(ctx, `UPDATE trades SET status = $2, resolved_at = $3 WHERE id = $1 AND status = 'PENDING'`,
		id, status, nullTime(resolvedAt))
	if err != nil {
		return fmt.Errorf("failed to update trade status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending trade %s: %w", id, ErrNotFound)
	}
	return nil
}
