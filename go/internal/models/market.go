package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Auction is the open-market bidding state for one player in one league.
type Auction struct {
	ID                 uuid.UUID       `json:"id"`
	LeagueID           uuid.UUID       `json:"league_id"`
	PlayerID           uuid.UUID       `json:"player_id"`
	CurrentOfferTotal  decimal.Decimal `json:"current_offer_total"`
	CurrentOfferYears  int             `json:"current_offer_years"`
	CurrentYear1Amount decimal.Decimal `json:"current_year1_amount"`
	HighBidderTeamID   *uuid.UUID      `json:"high_bidder_team_id,omitempty"`
	StartTime          time.Time       `json:"start_time"`
	EndTime            time.Time       `json:"end_time"`
	IsActive           bool            `json:"is_active"`
	Extensions         int             `json:"extensions"`
}

// IsOwned reports whether any bid has been accepted.
func (a Auction) IsOwned() bool {
	return a.HighBidderTeamID != nil
}

// ExpiredAt reports whether bidding is over at now.
func (a Auction) ExpiredAt(now time.Time) bool {
	return !now.Before(a.EndTime)
}

// LedBy reports whether teamID currently holds the high offer.
func (a Auction) LedBy(teamID uuid.UUID) bool {
	return a.HighBidderTeamID != nil && *a.HighBidderTeamID == teamID
}

// Bid is an append-only record of an accepted offer.
type Bid struct {
	ID           uuid.UUID       `json:"id"`
	AuctionID    uuid.UUID       `json:"auction_id"`
	TeamID       uuid.UUID       `json:"team_id"`
	BidderUserID uuid.UUID       `json:"bidder_user_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Years        int             `json:"years"`
	AnnualValue  decimal.Decimal `json:"annual_value"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DeadCap is a penalty charged to a team for one season after a release.
type DeadCap struct {
	ID         uuid.UUID       `json:"id"`
	LeagueID   uuid.UUID       `json:"league_id"`
	TeamID     uuid.UUID       `json:"team_id"`
	PlayerID   uuid.UUID       `json:"player_id"`
	ContractID uuid.UUID       `json:"contract_id"`
	Season     int             `json:"season"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}
