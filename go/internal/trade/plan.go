package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/apperr"
	"github.com/mcdev12/hoops/go/internal/capspace"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/rosterfit"
	"github.com/mcdev12/hoops/go/internal/store"
)

// side is one team's view of a trade.
type side struct {
	team     models.FantasyTeam
	ledger   *capspace.Ledger
	outgoing []uuid.UUID
	incoming []models.Contract
}

func (s *side) after() *capspace.Ledger {
	return s.ledger.Apply(s.outgoing, s.incoming)
}

// plan is the full effect of a set of offers, resolved against current
// contracts.
type plan struct {
	league *models.League
	byUser map[uuid.UUID]*side
	order  []uuid.UUID
	moves  []store.ContractMove
}

// buildPlan resolves every offer to a contract and the two teams involved.
// Failures are TRADE_INVALID.
func buildPlan(ctx context.Context, q store.Querier, league *models.League, offers []models.TradeOffer) (*plan, error) {
	p := &plan{league: league, byUser: make(map[uuid.UUID]*side)}
	seen := make(map[uuid.UUID]bool, len(offers))

	for _, o := range offers {
		if o.FromUserID == o.ToUserID {
			return nil, apperr.New(apperr.CodeTradeInvalid, "a manager cannot trade with themselves")
		}
		if seen[o.PlayerID] {
			return nil, apperr.New(apperr.CodeTradeInvalid, "player appears in more than one offer").
				WithString("player_id", o.PlayerID.String())
		}
		seen[o.PlayerID] = true

		from, err := p.sideFor(ctx, q, o.FromUserID)
		if err != nil {
			return nil, err
		}
		to, err := p.sideFor(ctx, q, o.ToUserID)
		if err != nil {
			return nil, err
		}

		contract, err := q.GetContractByPlayer(ctx, league.ID, o.PlayerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.New(apperr.CodeTradeInvalid, "player is not under contract").
					WithString("player_id", o.PlayerID.String())
			}
			return nil, err
		}
		if contract.TeamID != from.team.ID {
			return nil, apperr.New(apperr.CodeTradeInvalid, "player is not on the sending roster").
				WithString("player_id", o.PlayerID.String())
		}

		moved := *contract
		moved.TeamID = to.team.ID
		moved.AcquisitionType = models.AcquisitionTypeTrade
		from.outgoing = append(from.outgoing, contract.ID)
		to.incoming = append(to.incoming, moved)
		p.moves = append(p.moves, store.ContractMove{ContractID: contract.ID, ToTeamID: to.team.ID})
	}
	return p, nil
}

func (p *plan) sideFor(ctx context.Context, q store.Querier, userID uuid.UUID) (*side, error) {
	if s, ok := p.byUser[userID]; ok {
		return s, nil
	}
	team, err := q.GetFantasyTeamByOwner(ctx, p.league.ID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeTradeInvalid, "manager has no team in this league").
				WithString("user_id", userID.String())
		}
		return nil, err
	}
	ledger, err := capspace.Load(ctx, q, *team, p.league.CurrentSeason)
	if err != nil {
		return nil, err
	}
	s := &side{team: *team, ledger: ledger}
	p.byUser[userID] = s
	p.order = append(p.order, userID)
	return s, nil
}

// capViolation finds the first team that would be over its cap in some
// season after the trade. A team already over the cap may still trade as
// long as the trade does not add to its commitments that season.
func (p *plan) capViolation() (*side, capspace.Shortfall, bool) {
	for _, userID := range p.order {
		s := p.byUser[userID]
		after := s.after()
		seasons := after.Seasons()
		if before := s.ledger.Seasons(); len(before) > len(seasons) {
			seasons = before
		}
		for _, season := range seasons {
			pre, post := s.ledger.Summary(season), after.Summary(season)
			if post.Spendable.IsNegative() && post.Committed().GreaterThan(pre.Committed()) {
				return s, capspace.Shortfall{
					Season:    season,
					Required:  post.Committed().Sub(pre.Committed()),
					Available: pre.Spendable,
				}, true
			}
		}
	}
	return nil, capspace.Shortfall{}, false
}

// rosterViolation checks every receiving team's roster after the trade.
func (p *plan) rosterViolation(ctx context.Context, q store.Querier) (*side, string, error) {
	for _, userID := range p.order {
		s := p.byUser[userID]
		if len(s.incoming) == 0 {
			continue
		}
		res, err := rosterfit.Check(ctx, q, s.after().HeldPlayers(), p.league.Settings.RosterSlots)
		if err != nil {
			return nil, "", fmt.Errorf("failed to check roster: %w", err)
		}
		if !res.OK {
			return s, res.Reason, nil
		}
	}
	return nil, "", nil
}

func playerIDs(offers []models.TradeOffer) []string {
	out := make([]string, len(offers))
	for i, o := range offers {
		out[i] = o.PlayerID.String()
	}
	return out
}
