package trade

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/apperr"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/rpcutil"
)

// ServiceName is the fully-qualified trade service name.
const ServiceName = "hoops.market.v1.TradeService"

const (
	ProposeTradeProcedure = "/" + ServiceName + "/ProposeTrade"
	AcceptTradeProcedure  = "/" + ServiceName + "/AcceptTrade"
	RejectTradeProcedure  = "/" + ServiceName + "/RejectTrade"
	GetTradeProcedure     = "/" + ServiceName + "/GetTrade"
)

// TradeApp defines what the service layer needs from the trade application
type TradeApp interface {
	ProposeTrade(ctx context.Context, req ProposeRequest) (uuid.UUID, error)
	AcceptTrade(ctx context.Context, tradeID, userID uuid.UUID) (*StatusResult, error)
	RejectTrade(ctx context.Context, tradeID, userID uuid.UUID) (*StatusResult, error)
	GetTrade(ctx context.Context, tradeID uuid.UUID) (*models.Trade, error)
}

type OfferMsg struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	PlayerID   string `json:"player_id"`
}

type ProposeTradeMsg struct {
	LeagueID string     `json:"league_id"`
	Offers   []OfferMsg `json:"offers"`
}

type ProposeTradeReply struct {
	TradeID string `json:"trade_id"`
}

// TradeIDMsg addresses a trade for accept, reject and get.
type TradeIDMsg struct {
	TradeID string `json:"trade_id"`
}

// Service exposes the trade App over connect.
type Service struct {
	app TradeApp
}

// NewService creates a new trade service
func NewService(app TradeApp) *Service {
	return &Service{app: app}
}

// NewHandler mounts the service's procedures and returns the path prefix to
// register them under.
func NewHandler(s *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = rpcutil.HandlerOptions(opts...)
	mux := http.NewServeMux()
	mux.Handle(ProposeTradeProcedure, connect.NewUnaryHandler(ProposeTradeProcedure, s.ProposeTrade, opts...))
	mux.Handle(AcceptTradeProcedure, connect.NewUnaryHandler(AcceptTradeProcedure, s.AcceptTrade, opts...))
	mux.Handle(RejectTradeProcedure, connect.NewUnaryHandler(RejectTradeProcedure, s.RejectTrade, opts...))
	mux.Handle(GetTradeProcedure, connect.NewUnaryHandler(GetTradeProcedure, s.GetTrade, opts...))
	return "/" + ServiceName + "/", mux
}

// ProposeTrade proposes a trade on behalf of the caller
func (s *Service) ProposeTrade(ctx context.Context, req *connect.Request[ProposeTradeMsg]) (*connect.Response[ProposeTradeReply], error) {
	caller, err := rpcutil.CallerID(req.Header())
	if err != nil {
		return nil, err
	}
	appReq, err := s.msgToProposeRequest(caller, req.Msg)
	if err != nil {
		return nil, err
	}

	id, err := s.app.ProposeTrade(ctx, appReq)
	if err != nil {
		return nil, rpcutil.ToConnectError(err, apperr.ProposeTradeCodes)
	}
	return connect.NewResponse(&ProposeTradeReply{TradeID: id.String()}), nil
}

// AcceptTrade signs a pending trade as the caller
func (s *Service) AcceptTrade(ctx context.Context, req *connect.Request[TradeIDMsg]) (*connect.Response[StatusResult], error) {
	caller, err := rpcutil.CallerID(req.Header())
	if err != nil {
		return nil, err
	}
	tradeID, err := rpcutil.ParseID("trade_id", req.Msg.TradeID)
	if err != nil {
		return nil, err
	}

	res, err := s.app.AcceptTrade(ctx, tradeID, caller)
	if err != nil {
		return nil, rpcutil.ToConnectError(err, apperr.AcceptTradeCodes)
	}
	return connect.NewResponse(res), nil
}

// RejectTrade rejects or cancels a pending trade as the caller
func (s *Service) RejectTrade(ctx context.Context, req *connect.Request[TradeIDMsg]) (*connect.Response[StatusResult], error) {
	caller, err := rpcutil.CallerID(req.Header())
	if err != nil {
		return nil, err
	}
	tradeID, err := rpcutil.ParseID("trade_id", req.Msg.TradeID)
	if err != nil {
		return nil, err
	}

	res, err := s.app.RejectTrade(ctx, tradeID, caller)
	if err != nil {
		return nil, rpcutil.ToConnectError(err, apperr.RejectTradeCodes)
	}
	return connect.NewResponse(res), nil
}

// GetTrade retrieves a trade by ID
func (s *Service) GetTrade(ctx context.Context, req *connect.Request[TradeIDMsg]) (*connect.Response[models.Trade], error) {
	tradeID, err := rpcutil.ParseID("trade_id", req.Msg.TradeID)
	if err != nil {
		return nil, err
	}
	t, err := s.app.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, rpcutil.ToConnectError(err, apperr.TradeReadCodes)
	}
	return connect.NewResponse(t), nil
}

func (s *Service) msgToProposeRequest(caller uuid.UUID, msg *ProposeTradeMsg) (ProposeRequest, error) {
	leagueID, err := rpcutil.ParseID("league_id", msg.LeagueID)
	if err != nil {
		return ProposeRequest{}, err
	}
	req := ProposeRequest{LeagueID: leagueID, ProposerID: caller}
	for _, o := range msg.Offers {
		from, err := rpcutil.ParseID("from_user_id", o.FromUserID)
		if err != nil {
			return ProposeRequest{}, err
		}
		to, err := rpcutil.ParseID("to_user_id", o.ToUserID)
		if err != nil {
			return ProposeRequest{}, err
		}
		player, err := rpcutil.ParseID("player_id", o.PlayerID)
		if err != nil {
			return ProposeRequest{}, err
		}
		req.Offers = append(req.Offers, OfferInput{FromUserID: from, ToUserID: to, PlayerID: player})
	}
	return req, nil
}
