package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/hoops/go/internal/apperr"
	"github.com/mcdev12/hoops/go/internal/capspace"
	"github.com/mcdev12/hoops/go/internal/events"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/rosterfit"
	"github.com/mcdev12/hoops/go/internal/salary"
	"github.com/mcdev12/hoops/go/internal/store"
	"github.com/rs/zerolog/log"
)

// App handles contract release and assignment
type App struct {
	store    store.Store
	clock    clockwork.Clock
	validate *validator.Validate
}

// NewApp creates a new roster App
func NewApp(st store.Store, clock clockwork.Clock) *App {
	return &App{
		store:    st,
		clock:    clock,
		validate: validator.New(),
	}
}

// ReleasePlayer terminates the caller's contract with a player, books the
// guaranteed remainder as dead cap and returns the player to the open market.
func (a *App) ReleasePlayer(ctx context.Context, req ReleaseRequest) (*ReleaseResult, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.CodePlayerNotInRoster, err, "invalid release request")
	}

	var result *ReleaseResult
	err := a.store.Serializable(ctx, func(q store.Querier) error {
		league, team, contract, err := a.loadOwnedContract(ctx, q, req)
		if err != nil {
			return err
		}

		now := a.clock.Now()
		charges := ComputePenalty(*contract, league.CurrentSeason, FractionsFrom(league.Settings))
		rows := make([]models.DeadCap, len(charges))
		for i, c := range charges {
			rows[i] = models.DeadCap{
				ID:         uuid.New(),
				LeagueID:   league.ID,
				TeamID:     team.ID,
				PlayerID:   contract.PlayerID,
				ContractID: contract.ID,
				Season:     c.Season,
				Amount:     c.Amount,
				CreatedAt:  now,
			}
		}
		if err := q.CreateDeadCap(ctx, rows); err != nil {
			return err
		}
		if err := q.DeleteContract(ctx, contract.ID); err != nil {
			return err
		}
		if err := closeOpenAuction(ctx, q, league.ID, contract.PlayerID, "released", now); err != nil {
			return err
		}

		payload := events.PlayerReleasedPayload{
			PlayerID:   contract.PlayerID.String(),
			TeamID:     team.ID.String(),
			ContractID: contract.ID.String(),
			ReleasedAt: now,
		}
		for _, c := range charges {
			payload.DeadCap = append(payload.DeadCap, events.DeadCapCharge{Season: c.Season, Amount: c.Amount.String()})
		}
		if err := events.Record(ctx, q, league.ID, events.TypePlayerReleased, payload, now); err != nil {
			return err
		}

		result = &ReleaseResult{
			Released:   true,
			ContractID: contract.ID,
			DeadCap:    charges,
			Total:      TotalPenalty(charges),
		}
		return nil
	})
	if err != nil {
		return nil, a.fail(err, apperr.ReleasePlayerCodes, "release player")
	}

	log.Info().
		Str("league_id", req.LeagueID.String()).
		Str("player_id", req.PlayerID.String()).
		Str("dead_cap", result.Total.String()).
		Msg("player released")
	return result, nil
}

// SimulateRelease returns the dead cap ReleasePlayer would book, without
// changing anything.
func (a *App) SimulateRelease(ctx context.Context, req ReleaseRequest) ([]Charge, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.CodePlayerNotInRoster, err, "invalid release request")
	}

	var charges []Charge
	err := a.store.ReadOnly(ctx, func(q store.Querier) error {
		league, _, contract, err := a.loadOwnedContract(ctx, q, req)
		if err != nil {
			return err
		}
		charges = ComputePenalty(*contract, league.CurrentSeason, FractionsFrom(league.Settings))
		return nil
	})
	if err != nil {
		return nil, a.fail(err, apperr.ReleasePlayerCodes, "simulate release")
	}
	return charges, nil
}

func (a *App) loadOwnedContract(ctx context.Context, q store.Querier, req ReleaseRequest) (*models.League, *models.FantasyTeam, *models.Contract, error) {
	league, err := q.GetLeague(ctx, req.LeagueID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, nil, apperr.New(apperr.CodePlayerNotInRoster, "league not found")
		}
		return nil, nil, nil, err
	}
	team, err := q.GetFantasyTeamByOwner(ctx, league.ID, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, nil, apperr.New(apperr.CodePlayerNotInRoster, "caller has no team in this league")
		}
		return nil, nil, nil, err
	}
	contract, err := q.GetContractByPlayer(ctx, league.ID, req.PlayerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, nil, apperr.New(apperr.CodePlayerNotInRoster, "player is not under contract").
				WithString("player_id", req.PlayerID.String())
		}
		return nil, nil, nil, err
	}
	if contract.TeamID != team.ID {
		return nil, nil, nil, apperr.New(apperr.CodePlayerNotInRoster, "player is on another roster").
			WithString("player_id", req.PlayerID.String())
	}
	return league, team, contract, nil
}

// AssignPlayer signs a free player directly to a team. Only the league
// commissioner may assign.
func (a *App) AssignPlayer(ctx context.Context, req AssignRequest) (*models.Contract, error) {
	if err := a.validateAssignRequest(req); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidRequest, err, "validation failed: %v", err)
	}

	var contract *models.Contract
	err := a.store.Serializable(ctx, func(q store.Querier) error {
		league, err := q.GetLeague(ctx, req.LeagueID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.CodeInvalidRequest, "league not found")
			}
			return err
		}
		if league.CommissionerID != req.ActorID {
			return apperr.New(apperr.CodeNotAuthorized, "only the commissioner can assign players")
		}
		team, err := q.GetFantasyTeam(ctx, req.TeamID)
		if err != nil || team.LeagueID != league.ID {
			if err == nil || errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.CodeInvalidRequest, "team not in league")
			}
			return err
		}
		if _, err := q.GetPlayer(ctx, req.PlayerID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.CodeInvalidRequest, "player not found")
			}
			return err
		}

		if _, err := q.GetContractByPlayer(ctx, league.ID, req.PlayerID); err == nil {
			return apperr.New(apperr.CodePlayerAlreadyTaken, "player is already under contract")
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		ledger, err := capspace.Load(ctx, q, *team, league.CurrentSeason)
		if err != nil {
			return err
		}
		// an auction the team leads for this player is replaced by the contract
		for _, led := range ledger.Leading {
			if led.PlayerID == req.PlayerID {
				ledger = ledger.ExcludingAuction(led.ID)
			}
		}

		fit, err := rosterfit.Check(ctx, q, append(ledger.HeldPlayers(), req.PlayerID), league.Settings.RosterSlots)
		if err != nil {
			return err
		}
		if !fit.OK {
			return apperr.New(apperr.CodeRosterLimit, "%s", fit.Reason)
		}

		structure := salary.Structure(req.TotalAmount, req.Years)
		if short, ok := ledger.Fits(structure, league.CurrentSeason); !ok {
			return apperr.New(apperr.CodeInsufficientCap, "contract does not fit under the cap").
				WithString("season", fmt.Sprint(short.Season)).
				With("required", short.Required).
				With("available", short.Available)
		}

		now := a.clock.Now()
		if err := closeOpenAuction(ctx, q, league.ID, req.PlayerID, "assigned", now); err != nil {
			return err
		}

		c := models.Contract{
			ID:              uuid.New(),
			LeagueID:        league.ID,
			TeamID:          team.ID,
			PlayerID:        req.PlayerID,
			StartSeason:     league.CurrentSeason,
			Years:           req.Years,
			Year1:           structure[0],
			Year2:           structure[1],
			Year3:           structure[2],
			TotalValue:      req.TotalAmount,
			IsRookie:        req.IsRookie,
			AcquisitionType: req.AcquisitionType,
			CreatedAt:       now,
		}
		if err := q.CreateContract(ctx, c); err != nil {
			return err
		}
		contract = &c

		return events.Record(ctx, q, league.ID, events.TypePlayerAssigned, events.PlayerAssignedPayload{
			PlayerID:        c.PlayerID.String(),
			TeamID:          c.TeamID.String(),
			ContractID:      c.ID.String(),
			AcquisitionType: string(c.AcquisitionType),
			AssignedAt:      now,
		}, now)
	})
	if err != nil {
		return nil, a.fail(err, apperr.AssignPlayerCodes, "assign player")
	}

	log.Info().
		Str("team_id", contract.TeamID.String()).
		Str("player_id", contract.PlayerID.String()).
		Str("acquisition_type", string(contract.AcquisitionType)).
		Msg("player assigned")
	return contract, nil
}

// GetTeamRoster returns a team's contracts with players and its current cap position.
func (a *App) GetTeamRoster(ctx context.Context, teamID uuid.UUID) (*TeamRoster, error) {
	var out *TeamRoster
	err := a.store.ReadOnly(ctx, func(q store.Querier) error {
		team, league, err := loadTeam(ctx, q, teamID)
		if err != nil {
			return err
		}
		ledger, err := capspace.Load(ctx, q, *team, league.CurrentSeason)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(ledger.Contracts))
		for i, c := range ledger.Contracts {
			ids[i] = c.PlayerID
		}
		players, err := q.GetPlayers(ctx, ids)
		if err != nil {
			return err
		}

		out = &TeamRoster{
			Team:    *team,
			Season:  league.CurrentSeason,
			DeadCap: ledger.DeadCap,
			Cap:     ledger.Summary(league.CurrentSeason),
		}
		for _, c := range ledger.Contracts {
			out.Entries = append(out.Entries, RosterEntry{Contract: c, Player: players[c.PlayerID]})
		}
		return nil
	})
	if err != nil {
		return nil, a.fail(err, apperr.RosterReadCodes, "get team roster")
	}
	return out, nil
}

// GetCapSummary returns a team's cap position for season.
func (a *App) GetCapSummary(ctx context.Context, teamID uuid.UUID, season int) (*capspace.Summary, error) {
	var out capspace.Summary
	err := a.store.ReadOnly(ctx, func(q store.Querier) error {
		team, league, err := loadTeam(ctx, q, teamID)
		if err != nil {
			return err
		}
		if season == 0 {
			season = league.CurrentSeason
		}
		ledger, err := capspace.Load(ctx, q, *team, league.CurrentSeason)
		if err != nil {
			return err
		}
		out = ledger.Summary(season)
		return nil
	})
	if err != nil {
		return nil, a.fail(err, apperr.RosterReadCodes, "get cap summary")
	}
	return &out, nil
}

func loadTeam(ctx context.Context, q store.Querier, teamID uuid.UUID) (*models.FantasyTeam, *models.League, error) {
	team, err := q.GetFantasyTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, apperr.New(apperr.CodePlayerNotInRoster, "team not found").
				WithString("team_id", teamID.String())
		}
		return nil, nil, err
	}
	league, err := q.GetLeague(ctx, team.LeagueID)
	if err != nil {
		return nil, nil, err
	}
	return team, league, nil
}

// closeOpenAuction deactivates any active auction for the player so it
// leaves the market with no lingering bidding state.
func closeOpenAuction(ctx context.Context, q store.Querier, leagueID, playerID uuid.UUID, reason string, now time.Time) error {
	auction, err := q.GetActiveAuctionForUpdate(ctx, leagueID, playerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := q.DeactivateAuction(ctx, auction.ID); err != nil {
		return err
	}
	return events.Record(ctx, q, leagueID, events.TypeAuctionClosed, events.AuctionClosedPayload{
		AuctionID: auction.ID.String(),
		PlayerID:  playerID.String(),
		Reason:    reason,
		ClosedAt:  now,
	}, now)
}

func (a *App) fail(err error, codes apperr.CodeSet, op string) error {
	if _, ok := apperr.As(err); !ok {
		log.Error().Err(err).Str("op", op).Msg("roster commit failed")
	}
	return apperr.Restrict(err, codes)
}

func (a *App) validateAssignRequest(req AssignRequest) error {
	if err := a.validate.Struct(req); err != nil {
		return err
	}
	if !salary.ValidYears(req.Years) {
		return fmt.Errorf("years must be between 1 and %d", salary.MaxYears)
	}
	if !req.TotalAmount.IsPositive() {
		return fmt.Errorf("total_amount must be positive")
	}
	if salary.AnnualValue(req.TotalAmount, req.Years).IsZero() {
		return fmt.Errorf("annual value rounds to zero")
	}
	switch req.AcquisitionType {
	case models.AcquisitionTypeAdmin, models.AcquisitionTypeRookieDraft:
	default:
		return fmt.Errorf("invalid acquisition type: %s", req.AcquisitionType)
	}
	return nil
}
