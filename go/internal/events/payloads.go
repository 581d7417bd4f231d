package events

import (
	"time"
)

// Event payload types that are shared between the market engines and the gateway

// Event types written to the market outbox
const (
	TypeAuctionOpened  = "AuctionOpened"
	TypeBidPlaced      = "BidPlaced"
	TypeAuctionWon     = "AuctionWon"
	TypeAuctionExpired = "AuctionExpired"
	TypeAuctionClosed  = "AuctionClosed"
	TypePlayerReleased = "PlayerReleased"
	TypePlayerAssigned = "PlayerAssigned"
	TypeTradeProposed  = "TradeProposed"
	TypeTradeSigned    = "TradeSigned"
	TypeTradeAccepted  = "TradeAccepted"
	TypeTradeRejected  = "TradeRejected"
	TypeTradeCancelled = "TradeCancelled"
)

// AuctionOpenedPayload is the payload for an AuctionOpened event
type AuctionOpenedPayload struct {
	AuctionID string    `json:"auction_id"`
	PlayerID  string    `json:"player_id"`
	EndTime   time.Time `json:"end_time"`
}

// BidPlacedPayload is the payload for a BidPlaced event
type BidPlacedPayload struct {
	AuctionID     string    `json:"auction_id"`
	PlayerID      string    `json:"player_id"`
	TeamID        string    `json:"team_id"`
	TotalAmount   string    `json:"total_amount"`
	Years         int       `json:"years"`
	Year1Amount   string    `json:"year1_amount"`
	EndTime       time.Time `json:"end_time"`
	Extended      bool      `json:"extended"`
	PlacedAt      time.Time `json:"placed_at"`
	PreviousOwner string    `json:"previous_owner,omitempty"`
}

// AuctionSettledPayload is the payload for AuctionWon and AuctionExpired events
type AuctionSettledPayload struct {
	AuctionID   string    `json:"auction_id"`
	PlayerID    string    `json:"player_id"`
	TeamID      string    `json:"team_id,omitempty"`
	ContractID  string    `json:"contract_id,omitempty"`
	TotalAmount string    `json:"total_amount,omitempty"`
	Years       int       `json:"years,omitempty"`
	SettledAt   time.Time `json:"settled_at"`
}

// AuctionClosedPayload is the payload for an AuctionClosed event, emitted when
// a player leaves the market out-of-band.
type AuctionClosedPayload struct {
	AuctionID string    `json:"auction_id"`
	PlayerID  string    `json:"player_id"`
	Reason    string    `json:"reason"`
	ClosedAt  time.Time `json:"closed_at"`
}

// DeadCapCharge is one season of a release penalty
type DeadCapCharge struct {
	Season int    `json:"season"`
	Amount string `json:"amount"`
}

// PlayerReleasedPayload is the payload for a PlayerReleased event
type PlayerReleasedPayload struct {
	PlayerID   string          `json:"player_id"`
	TeamID     string          `json:"team_id"`
	ContractID string          `json:"contract_id"`
	DeadCap    []DeadCapCharge `json:"dead_cap"`
	ReleasedAt time.Time       `json:"released_at"`
}

// PlayerAssignedPayload is the payload for a PlayerAssigned event
type PlayerAssignedPayload struct {
	PlayerID        string    `json:"player_id"`
	TeamID          string    `json:"team_id"`
	ContractID      string    `json:"contract_id"`
	AcquisitionType string    `json:"acquisition_type"`
	AssignedAt      time.Time `json:"assigned_at"`
}

// TradePayload is the payload for every Trade* event
type TradePayload struct {
	TradeID    string    `json:"trade_id"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id"`
	PlayerIDs  []string  `json:"player_ids"`
	OccurredAt time.Time `json:"occurred_at"`
}
