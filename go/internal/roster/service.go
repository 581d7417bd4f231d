package roster

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/apperr"
	"github.com/mcdev12/hoops/go/internal/capspace"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/rpcutil"
	"github.com/shopspring/decimal"
)

// ServiceName is the fully-qualified roster service name.
const ServiceName = "hoops.market.v1.RosterService"

const (
	ReleasePlayerProcedure   = "/" + ServiceName + "/ReleasePlayer"
	SimulateReleaseProcedure = "/" + ServiceName + "/SimulateRelease"
	AssignPlayerProcedure    = "/" + ServiceName + "/AssignPlayer"
	GetTeamRosterProcedure   = "/" + ServiceName + "/GetTeamRoster"
	GetCapSummaryProcedure   = "/" + ServiceName + "/GetCapSummary"
)

// RosterApp defines what the service layer needs from the roster application
type RosterApp interface {
	ReleasePlayer(ctx context.Context, req ReleaseRequest) (*ReleaseResult, error)
	SimulateRelease(ctx context.Context, req ReleaseRequest) ([]Charge, error)
	AssignPlayer(ctx context.Context, req AssignRequest) (*models.Contract, error)
	GetTeamRoster(ctx context.Context, teamID uuid.UUID) (*TeamRoster, error)
	GetCapSummary(ctx context.Context, teamID uuid.UUID, season int) (*capspace.Summary, error)
}

type ReleasePlayerMsg struct {
	LeagueID string `json:"league_id"`
	PlayerID string `json:"player_id"`
}

type SimulateReleaseReply struct {
	DeadCap []Charge `json:"dead_cap"`
}

type AssignPlayerMsg struct {
	LeagueID        string          `json:"league_id"`
	TeamID          string          `json:"team_id"`
	PlayerID        string          `json:"player_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Years           int             `json:"years"`
	IsRookie        bool            `json:"is_rookie"`
	AcquisitionType string          `json:"acquisition_type"`
}

type TeamMsg struct {
	TeamID string `json:"team_id"`
	// Season defaults to the league's current season.
	Season int `json:"season,omitempty"`
}

// Service exposes the roster App over connect.
type Service struct {
	app RosterApp
}

// NewService creates a new roster service
func NewService(app RosterApp) *Service {
	return &Service{app: app}
}

// NewHandler mounts the service's procedures and returns the path prefix to
// register them under.
func NewHandler(s *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = rpcutil.HandlerOptions(opts...)
	mux := http.NewServeMux()
	mux.Handle(ReleasePlayerProcedure, connect.NewUnaryHandler(ReleasePlayerProcedure, s.ReleasePlayer, opts...))
	mux.Handle(SimulateReleaseProcedure, connect.NewUnaryHandler(SimulateReleaseProcedure, s.SimulateRelease, opts...))
	mux.Handle(AssignPlayerProcedure, connect.NewUnaryHandler(AssignPlayerProcedure, s.AssignPlayer, opts...))
	mux.Handle(GetTeamRosterProcedure, connect.NewUnaryHandler(GetTeamRosterProcedure, s.GetTeamRoster, opts...))
	mux.Handle(GetCapSummaryProcedure, connect.NewUnaryHandler(GetCapSummaryProcedure, s.GetCapSummary, opts...))
	return "/" + ServiceName + "/", mux
}

// ReleasePlayer drops a player from the caller's team
func (s *Service) ReleasePlayer(ctx context.Context, req *connect.Request[ReleasePlayerMsg]) (*connect.Response[ReleaseResult], error) {
	appReq, err := s.msgToReleaseRequest(req)
	if err != nil {
		return nil, err
	}
	res, err := s.app.ReleasePlayer(ctx, appReq)
	if err != nil {
		return nil, rpcutil.ToConnectError(err, apperr.ReleasePlayerCodes)
	}
	return connect.NewResponse(res), nil
}

// SimulateRelease previews the dead cap of a release
func (s *Service) SimulateRelease(ctx context.Context, req *connect.Request[ReleasePlayerMsg]) (*connect.Response[SimulateReleaseReply], error) {
	appReq, err := s.msgToReleaseRequest(req)
	if err != nil {
		return nil, err
	}
	charges, err := s.app.SimulateRelease(ctx, appReq)
	if err != nil {
		return nil, rpcutil.ToConnectError(err, apperr.ReleasePlayerCodes)
	}
	return connect.NewResponse(&SimulateReleaseReply{DeadCap: charges}), nil
}

// AssignPlayer signs a free player to a team outside the auction
func (s *Service) AssignPlayer(ctx context.Context, req *connect.Request[AssignPlayerMsg]) (*connect.Response[models.Contract], error) {
	actor, err := rpcutil.CallerID(req.Header())
	if err != nil {
		return nil, err
	}
	leagueID, err := rpcutil.ParseID("league_id", req.Msg.LeagueID)
	if err != nil {
		return nil, err
	}
	teamID, err := rpcutil.ParseID("team_id", req.Msg.TeamID)
	if err != nil {
		return nil, err
	}
	playerID, err := rpcutil.ParseID("player_id", req.Msg.PlayerID)
	if err != nil {
		return nil, err
	}

	contract, err := s.app.AssignPlayer(ctx, AssignRequest{
		LeagueID:        leagueID,
		TeamID:          teamID,
		PlayerID:        playerID,
		ActorID:         actor,
		TotalAmount:     req.Msg.TotalAmount,
		Years:           req.Msg.Years,
		IsRookie:        req.Msg.IsRookie,
		AcquisitionType: models.AcquisitionType(req.Msg.AcquisitionType),
	})
	if err != nil {
		return nil, rpcutil.ToConnectError(err, apperr.AssignPlayerCodes)
	}
	return connect.NewResponse(contract), nil
}

// GetTeamRoster returns a team's contracts and cap position
func (s *Service) GetTeamRoster(ctx context.Context, req *connect.Request[TeamMsg]) (*connect.Response[TeamRoster], error) {
	teamID, err := rpcutil.ParseID("team_id", req.Msg.TeamID)
	if err != nil {
		return nil, err
	}
	roster, err := s.app.GetTeamRoster(ctx, teamID)
	if err != nil {
		return nil, rpcutil.ToConnectError(err, apperr.RosterReadCodes)
	}
	return connect.NewResponse(roster), nil
}

// GetCapSummary returns a team's cap position for one season
func (s *Service) GetCapSummary(ctx context.Context, req *connect.Request[TeamMsg]) (*connect.Response[capspace.Summary], error) {
	teamID, err := rpcutil.ParseID("team_id", req.Msg.TeamID)
	if err != nil {
		return nil, err
	}
	summary, err := s.app.GetCapSummary(ctx, teamID, req.Msg.Season)
	if err != nil {
		return nil, rpcutil.ToConnectError(err, apperr.RosterReadCodes)
	}
	return connect.NewResponse(summary), nil
}

func (s *Service) msgToReleaseRequest(req *connect.Request[ReleasePlayerMsg]) (ReleaseRequest, error) {
	caller, err := rpcutil.CallerID(req.Header())
	if err != nil {
		return ReleaseRequest{}, err
	}
	leagueID, err := rpcutil.ParseID("league_id", req.Msg.LeagueID)
	if err != nil {
		return ReleaseRequest{}, err
	}
	playerID, err := rpcutil.ParseID("player_id", req.Msg.PlayerID)
	if err != nil {
		return ReleaseRequest{}, err
	}
	return ReleaseRequest{LeagueID: leagueID, PlayerID: playerID, UserID: caller}, nil
}
