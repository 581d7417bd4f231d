package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
)

// Querier is every read and write the market engines perform. Implementations
// bind it either to a transaction or to the pool.
type Querier interface {
	// Leagues and teams
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	GetFantasyTeam(ctx context.Context, id uuid.UUID) (*models.FantasyTeam, error)
	GetFantasyTeamByOwner(ctx context.Context, leagueID, ownerID uuid.UUID) (*models.FantasyTeam, error)

	// Players
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	GetPlayers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Player, error)
	GetPlayerStatLine(ctx context.Context, playerID uuid.UUID, season int) (*models.StatLine, error)

	// Contracts
	CreateContract(ctx context.Context, c models.Contract) error
	GetContractByPlayer(ctx context.Context, leagueID, playerID uuid.UUID) (*models.Contract, error)
	ListContractsByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Contract, error)
	DeleteContract(ctx context.Context, id uuid.UUID) error
	ReassignContracts(ctx context.Context, moves []ContractMove) error

	// Dead cap
	CreateDeadCap(ctx context.Context, rows []models.DeadCap) error
	ListDeadCapByTeam(ctx context.Context, teamID uuid.UUID) ([]models.DeadCap, error)

	// Auctions and bids
	CreateAuction(ctx context.Context, a models.Auction) error
	GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	GetActiveAuctionForUpdate(ctx context.Context, leagueID, playerID uuid.UUID) (*models.Auction, error)
	UpdateAuctionOffer(ctx context.Context, a models.Auction) error
	DeactivateAuction(ctx context.Context, id uuid.UUID) error
	ListActiveAuctions(ctx context.Context, leagueID uuid.UUID) ([]models.Auction, error)
	ListExpiredAuctionsForUpdate(ctx context.Context, leagueID uuid.UUID, now time.Time) ([]models.Auction, error)
	ListLeaguesWithExpiredAuctions(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	ListAuctionsLedBy(ctx context.Context, teamID uuid.UUID) ([]models.Auction, error)
	CreateBid(ctx context.Context, b models.Bid) error
	ListBidsByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error)

	// Trades
	CreateTrade(ctx context.Context, t models.Trade) error
	GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	GetTradeForUpdate(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	CreateTradeAcceptance(ctx context.Context, a models.TradeAcceptance) error
	UpdateTradeStatus(ctx context.Context, id uuid.UUID, status models.TradeStatus, resolvedAt time.Time) error

	// Outbox
	CreateOutboxEvent(ctx context.Context, e models.OutboxEvent) error
}

// ContractMove transfers one contract to a new team.
type ContractMove struct {
	ContractID uuid.UUID
	ToTeamID   uuid.UUID
}
