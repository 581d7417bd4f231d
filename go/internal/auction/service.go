package auction

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/apperr"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/rpcutil"
	"github.com/shopspring/decimal"
)

// ServiceName is the fully-qualified auction service name.
const ServiceName = "hoops.market.v1.AuctionService"

const (
	PlaceBidProcedure      = "/" + ServiceName + "/PlaceBid"
	ListMarketProcedure    = "/" + ServiceName + "/ListMarket"
	GetBidHistoryProcedure = "/" + ServiceName + "/GetBidHistory"
)

// AuctionApp defines what the service layer needs from the auction application
type AuctionApp interface {
	PlaceBid(ctx context.Context, req PlaceBidRequest) (*BidResult, error)
	ListMarket(ctx context.Context, leagueID uuid.UUID) (*Market, error)
	GetBidHistory(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error)
}

// Wire messages

type PlaceBidMsg struct {
	LeagueID    string          `json:"league_id"`
	PlayerID    string          `json:"player_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Years       int             `json:"years"`
}

type PlaceBidReply struct {
	Message        string          `json:"message"`
	AuctionID      string          `json:"auction_id"`
	AuctionEndTime time.Time       `json:"auction_end_time"`
	FirstYearCost  decimal.Decimal `json:"first_year_cost"`
	Extended       bool            `json:"extended"`
}

type ListMarketMsg struct {
	LeagueID string `json:"league_id"`
}

type GetBidHistoryMsg struct {
	AuctionID string `json:"auction_id"`
}

type BidHistoryReply struct {
	Bids []models.Bid `json:"bids"`
}

// Service exposes the auction App over connect.
type Service struct {
	app AuctionApp
}

// NewService creates a new auction service
func NewService(app AuctionApp) *Service {
	return &Service{app: app}
}

// NewHandler mounts the service's procedures and returns the path prefix to
// register them under.
func NewHandler(s *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = rpcutil.HandlerOptions(opts...)
	mux := http.NewServeMux()
	mux.Handle(PlaceBidProcedure, connect.NewUnaryHandler(PlaceBidProcedure, s.PlaceBid, opts...))
	mux.Handle(ListMarketProcedure, connect.NewUnaryHandler(ListMarketProcedure, s.ListMarket, opts...))
	mux.Handle(GetBidHistoryProcedure, connect.NewUnaryHandler(GetBidHistoryProcedure, s.GetBidHistory, opts...))
	return "/" + ServiceName + "/", mux
}

// PlaceBid places a bid for the calling user's team
func (s *Service) PlaceBid(ctx context.Context, req *connect.Request[PlaceBidMsg]) (*connect.Response[PlaceBidReply], error) {
	bidder, err := rpcutil.CallerID(req.Header())
	if err != nil {
		return nil, err
	}
	leagueID, err := rpcutil.ParseID("league_id", req.Msg.LeagueID)
	if err != nil {
		return nil, err
	}
	playerID, err := rpcutil.ParseID("player_id", req.Msg.PlayerID)
	if err != nil {
		return nil, err
	}

	res, err := s.app.PlaceBid(ctx, PlaceBidRequest{
		LeagueID:    leagueID,
		PlayerID:    playerID,
		BidderID:    bidder,
		TotalAmount: req.Msg.TotalAmount,
		Years:       req.Msg.Years,
	})
	if err != nil {
		return nil, rpcutil.ToConnectError(err, apperr.PlaceBidCodes)
	}

	return connect.NewResponse(&PlaceBidReply{
		Message:        res.Message,
		AuctionID:      res.AuctionID.String(),
		AuctionEndTime: res.AuctionEndTime,
		FirstYearCost:  res.FirstYearCost,
		Extended:       res.Extended,
	}), nil
}

// ListMarket returns a league's open auctions
func (s *Service) ListMarket(ctx context.Context, req *connect.Request[ListMarketMsg]) (*connect.Response[Market], error) {
	leagueID, err := rpcutil.ParseID("league_id", req.Msg.LeagueID)
	if err != nil {
		return nil, err
	}
	market, err := s.app.ListMarket(ctx, leagueID)
	if err != nil {
		return nil, rpcutil.ToConnectError(err, apperr.MarketReadCodes)
	}
	return connect.NewResponse(market), nil
}

// GetBidHistory returns every accepted bid of an auction
func (s *Service) GetBidHistory(ctx context.Context, req *connect.Request[GetBidHistoryMsg]) (*connect.Response[BidHistoryReply], error) {
	auctionID, err := rpcutil.ParseID("auction_id", req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}
	bids, err := s.app.GetBidHistory(ctx, auctionID)
	if err != nil {
		return nil, rpcutil.ToConnectError(err, apperr.MarketReadCodes)
	}
	return connect.NewResponse(&BidHistoryReply{Bids: bids}), nil
}
