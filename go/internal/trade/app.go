package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/hoops/go/internal/apperr"
	"github.com/mcdev12/hoops/go/internal/events"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/store"
	"github.com/rs/zerolog/log"
)

// App settles multi-party trades.
type App struct {
	store    store.Store
	clock    clockwork.Clock
	validate *validator.Validate
}

// NewApp creates a new trade App
func NewApp(st store.Store, clock clockwork.Clock) *App {
	return &App{
		store:    st,
		clock:    clock,
		validate: validator.New(),
	}
}

// ProposeTrade validates the offers against current rosters and cap space and
// records a pending trade. Nothing is written when validation fails.
func (a *App) ProposeTrade(ctx context.Context, req ProposeRequest) (uuid.UUID, error) {
	if err := a.validateProposeRequest(req); err != nil {
		return uuid.Nil, apperr.Wrap(apperr.CodeTradeInvalid, err, "validation failed: %v", err)
	}

	var tradeID uuid.UUID
	err := a.store.Serializable(ctx, func(q store.Querier) error {
		now := a.clock.Now()
		league, err := q.GetLeague(ctx, req.LeagueID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.CodeTradeInvalid, "league not found")
			}
			return err
		}

		t := models.Trade{
			ID:         uuid.New(),
			LeagueID:   league.ID,
			ProposerID: req.ProposerID,
			Status:     models.TradeStatusPending,
			CreatedAt:  now,
		}
		for i, o := range req.Offers {
			t.Offers = append(t.Offers, models.TradeOffer{
				ID:         uuid.New(),
				TradeID:    t.ID,
				Ordinal:    i,
				FromUserID: o.FromUserID,
				ToUserID:   o.ToUserID,
				PlayerID:   o.PlayerID,
			})
		}

		p, err := buildPlan(ctx, q, league, t.Offers)
		if err != nil {
			return err
		}
		if s, short, over := p.capViolation(); over {
			return apperr.New(apperr.CodeTradeInvalid, "trade would put a team over the cap").
				WithString("team_id", s.team.ID.String()).
				WithString("season", fmt.Sprint(short.Season)).
				With("required", short.Required).
				With("available", short.Available)
		}

		if err := q.CreateTrade(ctx, t); err != nil {
			return fmt.Errorf("failed to create trade: %w", err)
		}
		tradeID = t.ID
		return events.Record(ctx, q, league.ID, events.TypeTradeProposed, events.TradePayload{
			TradeID:    t.ID.String(),
			Status:     string(t.Status),
			ActorID:    req.ProposerID.String(),
			PlayerIDs:  playerIDs(t.Offers),
			OccurredAt: now,
		}, now)
	})
	if err != nil {
		return uuid.Nil, a.fail(err, apperr.ProposeTradeCodes, "propose trade")
	}

	log.Info().
		Str("trade_id", tradeID.String()).
		Str("league_id", req.LeagueID.String()).
		Int("offers", len(req.Offers)).
		Msg("trade proposed")
	return tradeID, nil
}

// AcceptTrade records userID's signature. The signature that completes the
// trade also executes it in the same transaction; if execution fails the
// signature is rolled back with everything else.
func (a *App) AcceptTrade(ctx context.Context, tradeID, userID uuid.UUID) (*StatusResult, error) {
	var result *StatusResult
	err := a.store.Serializable(ctx, func(q store.Querier) error {
		now := a.clock.Now()
		t, err := a.loadPending(ctx, q, tradeID)
		if err != nil {
			return err
		}
		switch {
		case userID == t.ProposerID:
			return apperr.New(apperr.CodeProposerCannotAccept, "the proposer cannot accept their own trade")
		case !t.IsParty(userID):
			return apperr.New(apperr.CodeNotAuthorized, "user is not part of this trade")
		case t.HasSigned(userID):
			return apperr.New(apperr.CodeAlreadyAccepted, "user has already accepted this trade")
		}

		acceptance := models.TradeAcceptance{TradeID: t.ID, UserID: userID, AcceptedAt: now}
		if err := q.CreateTradeAcceptance(ctx, acceptance); err != nil {
			return fmt.Errorf("failed to record acceptance: %w", err)
		}
		t.Acceptances = append(t.Acceptances, acceptance)

		payload := events.TradePayload{
			TradeID:    t.ID.String(),
			Status:     string(t.Status),
			ActorID:    userID.String(),
			PlayerIDs:  playerIDs(t.Offers),
			OccurredAt: now,
		}
		if err := events.Record(ctx, q, t.LeagueID, events.TypeTradeSigned, payload, now); err != nil {
			return err
		}

		result = &StatusResult{TradeID: t.ID, Status: t.Status}
		if !t.FullySigned() {
			for _, u := range t.RequiredSigners() {
				if !t.HasSigned(u) {
					result.AwaitingSignatures = append(result.AwaitingSignatures, u)
				}
			}
			return nil
		}

		if err := a.execute(ctx, q, t, now); err != nil {
			return err
		}
		result.Status = models.TradeStatusAccepted
		result.Executed = true

		payload.Status = string(models.TradeStatusAccepted)
		return events.Record(ctx, q, t.LeagueID, events.TypeTradeAccepted, payload, now)
	})
	if err != nil {
		return nil, a.fail(err, apperr.AcceptTradeCodes, "accept trade")
	}

	log.Info().
		Str("trade_id", tradeID.String()).
		Str("user_id", userID.String()).
		Bool("executed", result.Executed).
		Msg("trade accepted")
	return result, nil
}

// execute re-validates a fully signed trade against the current state and
// moves every contract in one batch.
func (a *App) execute(ctx context.Context, q store.Querier, t *models.Trade, now time.Time) error {
	league, err := q.GetLeague(ctx, t.LeagueID)
	if err != nil {
		return err
	}
	p, err := buildPlan(ctx, q, league, t.Offers)
	if err != nil {
		if e, ok := apperr.As(err); ok && e.Code == apperr.CodeTradeInvalid {
			return apperr.Wrap(apperr.CodeTradeFailed, err, "trade is no longer valid: %s", e.Message)
		}
		return err
	}
	if s, short, over := p.capViolation(); over {
		return apperr.New(apperr.CodeTradeFailed, "trade would put a team over the cap").
			WithString("team_id", s.team.ID.String()).
			WithString("season", fmt.Sprint(short.Season)).
			With("required", short.Required).
			With("available", short.Available)
	}
	s, reason, err := p.rosterViolation(ctx, q)
	if err != nil {
		return err
	}
	if s != nil {
		return apperr.New(apperr.CodeRosterLimit, "%s", reason).
			WithString("team_id", s.team.ID.String())
	}

	if err := q.ReassignContracts(ctx, p.moves); err != nil {
		return fmt.Errorf("failed to move contracts: %w", err)
	}
	if err := q.UpdateTradeStatus(ctx, t.ID, models.TradeStatusAccepted, now); err != nil {
		return fmt.Errorf("failed to update trade status: %w", err)
	}
	return nil
}

// RejectTrade ends a pending trade. The proposer cancels it; any other party
// rejects it.
func (a *App) RejectTrade(ctx context.Context, tradeID, userID uuid.UUID) (*StatusResult, error) {
	var result *StatusResult
	err := a.store.Serializable(ctx, func(q store.Querier) error {
		now := a.clock.Now()
		t, err := a.loadPending(ctx, q, tradeID)
		if err != nil {
			return err
		}

		status, eventType := models.TradeStatusRejected, events.TypeTradeRejected
		switch {
		case userID == t.ProposerID:
			status, eventType = models.TradeStatusCancelled, events.TypeTradeCancelled
		case !t.IsParty(userID):
			return apperr.New(apperr.CodeNotAuthorized, "user is not part of this trade")
		}

		if err := q.UpdateTradeStatus(ctx, t.ID, status, now); err != nil {
			return fmt.Errorf("failed to update trade status: %w", err)
		}
		result = &StatusResult{TradeID: t.ID, Status: status}
		return events.Record(ctx, q, t.LeagueID, eventType, events.TradePayload{
			TradeID:    t.ID.String(),
			Status:     string(status),
			ActorID:    userID.String(),
			PlayerIDs:  playerIDs(t.Offers),
			OccurredAt: now,
		}, now)
	})
	if err != nil {
		return nil, a.fail(err, apperr.RejectTradeCodes, "reject trade")
	}

	log.Info().
		Str("trade_id", tradeID.String()).
		Str("status", string(result.Status)).
		Msg("trade closed")
	return result, nil
}

// GetTrade returns a trade with its offers and signatures.
func (a *App) GetTrade(ctx context.Context, tradeID uuid.UUID) (*models.Trade, error) {
	var t *models.Trade
	err := a.store.ReadOnly(ctx, func(q store.Querier) error {
		var err error
		t, err = q.GetTrade(ctx, tradeID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.CodeTradeNotFound, "trade not found")
		}
		return err
	})
	if err != nil {
		return nil, a.fail(err, apperr.TradeReadCodes, "get trade")
	}
	return t, nil
}

func (a *App) loadPending(ctx context.Context, q store.Querier, tradeID uuid.UUID) (*models.Trade, error) {
	t, err := q.GetTradeForUpdate(ctx, tradeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeTradeNotFound, "trade not found")
		}
		return nil, err
	}
	if t.IsTerminal() {
		return nil, apperr.New(apperr.CodeTradeNotPending, "trade is %s", t.Status)
	}
	return t, nil
}

func (a *App) fail(err error, codes apperr.CodeSet, op string) error {
	if e, ok := apperr.As(err); ok && e.Code.Kind() != apperr.KindFatal {
		log.Debug().Str("op", op).Str("code", string(e.Code)).Msg("trade request refused")
	} else {
		log.Error().Err(err).Str("op", op).Msg("trade commit failed")
	}
	return apperr.Restrict(err, codes)
}

func (a *App) validateProposeRequest(req ProposeRequest) error {
	if err := a.validate.Struct(req); err != nil {
		return err
	}
	for _, o := range req.Offers {
		if o.FromUserID == req.ProposerID || o.ToUserID == req.ProposerID {
			return nil
		}
	}
	return fmt.Errorf("proposer must be part of the trade")
}
