package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/sqlutil"
)

const auctionColumns = `id, league_id, player_id, current_offer_total, current_offer_years, current_year1_amount,
high_bidder_team_id, start_time, end_time, is_active, extensions`

func scanAuction(row scanner) (*models.Auction, error) {
	var a models.Auction
	var bidder uuid.NullUUID
	err := row.Scan(&a.ID, &a.LeagueID, &a.PlayerID, &a.CurrentOfferTotal, &a.CurrentOfferYears,
		&a.CurrentYear1Amount, &bidder, &a.StartTime, &a.EndTime, &a.IsActive, &a.Extensions)
	if err != nil {
		return nil, err
	}
	a.HighBidderTeamID = sqlutil.FromNullUUID(bidder)
	return &a, nil
}

func (q *Queries) listAuctions(ctx context.Context, query string, args ...any) ([]models.Auction, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()
	var out []models.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (q *Queries) CreateAuction(ctx context.Context, a models.Auction) error {
	_, err := q.db.Exec(ctx, `INSERT INTO auctions (`+auctionColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.LeagueID, a.PlayerID, a.CurrentOfferTotal, a.CurrentOfferYears, a.CurrentYear1Amount,
		sqlutil.ToNullUUID(a.HighBidderTeamID), a.StartTime, a.EndTime, a.IsActive, a.Extensions)
	if err != nil {
		return auctionInsertErr(err)
	}
	return nil
}

// activeAuctionIndex allows one active auction per player and league.
const activeAuctionIndex = "auctions_one_active_idx"

// auctionInsertErr marks a lost race to open the same auction as retryable;
// the replay finds the winner's row and bids on it instead.
func auctionInsertErr(err error) error {
	if sqlutil.IsUniqueViolation(err, activeAuctionIndex) {
		return fmt.Errorf("active auction already exists: %w: %w", sqlutil.ErrConflict, err)
	}
	return fmt.Errorf("failed to create auction: %w", err)
}

func (q *Queries) GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	a, err := scanAuction(q.db.QueryRow(ctx, `SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "auction")
	}
	return a, nil
}

func (q *Queries) GetActiveAuctionForUpdate(ctx context.Context, leagueID, playerID uuid.UUID) (*models.Auction, error) {
	a, err := scanAuction(q.db.QueryRow(ctx, `SELECT `+auctionColumns+` FROM auctions
WHERE league_id = $1 AND player_id = $2 AND is_active
FOR UPDATE`, leagueID, playerID))
	if err != nil {
		return nil, notFound(err, "active auction")
	}
	return a, nil
}

const updateAuctionOffer = `UPDATE auctions
SET current_offer_total = $2, current_offer_years = $3, current_year1_amount = $4,
    high_bidder_team_id = $5, end_time = $6, extensions = $7
WHERE id = $1 AND is_active`

func (q *Queries) UpdateAuctionOffer(ctx context.Context, a models.Auction) error {
	tag, err := q.db.Exec(ctx, updateAuctionOffer, a.ID, a.CurrentOfferTotal, a.CurrentOfferYears,
		a.CurrentYear1Amount, sqlutil.ToNullUUID(a.HighBidderTeamID), a.EndTime, a.Extensions)
	if err != nil {
		return fmt.Errorf("failed to update auction offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("active auction %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

func (q *Queries) DeactivateAuction(ctx context.Context, id uuid.UUID) error {
	if _, err := q.db.Exec(ctx, `UPDATE auctions SET is_active = FALSE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to deactivate auction: %w", err)
	}
	return nil
}

func (q *Queries) ListActiveAuctions(ctx context.Context, leagueID uuid.UUID) ([]models.Auction, error) {
	return q.listAuctions(ctx, `SELECT `+auctionColumns+` FROM auctions
WHERE league_id = $1 AND is_active ORDER BY end_time`, leagueID)
}

func (q *Queries) ListExpiredAuctionsForUpdate(ctx context.Context, leagueID uuid.UUID, now time.Time) ([]models.Auction, error) {
	return q.listAuctions(ctx, `SELECT `+auctionColumns+` FROM auctions
WHERE league_id = $1 AND is_active AND end_time <= $2
ORDER BY end_time
FOR UPDATE`, leagueID, now)
}

func (q *Queries) ListLeaguesWithExpiredAuctions(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, `SELECT DISTINCT league_id FROM auctions WHERE is_active AND end_time <= $1`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues with expired auctions: %w", err)
	}
	defer rows.Close()
	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan league id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (q *Queries) ListAuctionsLedBy(ctx context.Context, teamID uuid.UUID) ([]models.Auction, error) {
	return q.listAuctions(ctx, `SELECT `+auctionColumns+` FROM auctions
WHERE high_bidder_team_id = $1 AND is_active ORDER BY end_time`, teamID)
}

func (q *Queries) CreateBid(ctx context.Context, b models.Bid) error {
	_, err := q.db.Exec(ctx, `INSERT INTO bids
(id, auction_id, team_id, bidder_user_id, total_amount, years, annual_value, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.AuctionID, b.TeamID, b.BidderUserID, b.TotalAmount, b.Years, b.AnnualValue, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append bid: %w", err)
	}
	return nil
}

func (q *Queries) ListBidsByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error) {
	rows, err := q.db.Query(ctx, `SELECT id, auction_id, team_id, bidder_user_id, total_amount, years, annual_value, created_at
FROM bids WHERE auction_id = $1 ORDER BY created_at, id`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()
	var out []models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.TeamID, &b.BidderUserID, &b.TotalAmount, &b.Years, &b.AnnualValue, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
