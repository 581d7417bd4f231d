package auction

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/shopspring/decimal"
)

// PlaceBidRequest is one bid from a team owner.
type PlaceBidRequest struct {
	LeagueID    uuid.UUID       `json:"league_id" validate:"required"`
	PlayerID    uuid.UUID       `json:"player_id" validate:"required"`
	BidderID    uuid.UUID       `json:"bidder_id" validate:"required"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Years       int             `json:"years" validate:"gte=1"`
}

// BidResult describes an accepted bid.
type BidResult struct {
	Message        string          `json:"message"`
	AuctionID      uuid.UUID       `json:"auction_id"`
	AuctionEndTime time.Time       `json:"auction_end_time"`
	FirstYearCost  decimal.Decimal `json:"first_year_cost"`
	Extended       bool            `json:"extended"`
}

// MarketEntry is an active auction with its player.
type MarketEntry struct {
	Auction models.Auction `json:"auction"`
	Player  models.Player  `json:"player"`
}

// Market is a league's open auctions at a point in time.
type Market struct {
	LeagueID uuid.UUID     `json:"league_id"`
	AsOf     time.Time     `json:"as_of"`
	Entries  []MarketEntry `json:"entries"`
}
