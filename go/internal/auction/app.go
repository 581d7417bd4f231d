package auction

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
	"github.com/shopspring/decimal"
)

// App runs the open-market auctions of every league.
type App struct {
	store    store.Store
	clock    clockwork.Clock
	rules    Rules
	cache    *MarketCache
	validate *validator.Validate
}

// NewApp creates a new auction App. cache may be nil.
func NewApp(st store.Store, clock clockwork.Clock, rules Rules, cache *MarketCache) *App {
	return &App{
		store:    st,
		clock:    clock,
		rules:    rules,
		cache:    cache,
		validate: validator.New(),
	}
}

// PlaceBid opens or raises the auction for a player. The whole protocol runs
// in one serializable transaction; any failure leaves no auction, bid or
// event behind.
func (a *App) PlaceBid(ctx context.Context, req PlaceBidRequest) (*BidResult, error) {
	if err := a.validateBidRequest(req); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidBid, err, "validation failed: %v", err)
	}

	var (
		result *BidResult
		taken  bool
	)
	err := a.store.Serializable(ctx, func(q store.Querier) error {
		result, taken = nil, false
		now := a.clock.Now()

		league, err := q.GetLeague(ctx, req.LeagueID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.CodeInvalidBid, "league not found")
			}
			return err
		}
		team, err := q.GetFantasyTeamByOwner(ctx, league.ID, req.BidderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.CodeInvalidBid, "bidder has no team in this league")
			}
			return err
		}

		auction, err := q.GetActiveAuctionForUpdate(ctx, league.ID, req.PlayerID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if auction != nil && auction.ExpiredAt(now) {
			// settle now and keep the settlement even though the bid is refused
			if err := settle(ctx, q, league, *auction, now); err != nil {
				return err
			}
			if auction.IsOwned() {
				taken = true
				return nil
			}
			auction = nil
		}

		if auction == nil {
			if _, err := q.GetPlayer(ctx, req.PlayerID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return apperr.New(apperr.CodeInvalidBid, "player not found")
				}
				return err
			}
			if _, err := q.GetContractByPlayer(ctx, league.ID, req.PlayerID); err == nil {
				return apperr.New(apperr.CodePlayerAlreadyTaken, "player is already under contract").
					WithString("player_id", req.PlayerID.String())
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		annual := salary.AnnualValue(req.TotalAmount, req.Years)
		base, err := BasePrice(ctx, q, req.PlayerID, league.CurrentSeason, league.Settings)
		if err != nil {
			return fmt.Errorf("failed to compute base price: %w", err)
		}
		if annual.LessThan(base) {
			return apperr.New(apperr.CodeBidTooLow, "annual value is below the base price").
				With("min_annual", base)
		}

		if auction == nil {
			opened, err := a.openAuction(ctx, q, league.ID, req.PlayerID, now)
			if err != nil {
				return err
			}
			auction = opened
		} else if auction.IsOwned() {
			current := salary.AnnualValue(auction.CurrentOfferTotal, auction.CurrentOfferYears)
			if next := current.Add(a.rules.MinIncrement); annual.LessThan(next) {
				return apperr.New(apperr.CodeInvalidBid, "bid must raise the annual value by at least %s", a.rules.MinIncrement).
					With("min_annual", next)
			}
		}

		ledger, err := capspace.Load(ctx, q, *team, league.CurrentSeason)
		if err != nil {
			return err
		}
		ledger = ledger.ExcludingAuction(auction.ID)

		fit, err := rosterfit.Check(ctx, q, append(ledger.HeldPlayers(), req.PlayerID), league.Settings.RosterSlots)
		if err != nil {
			return err
		}
		if !fit.OK {
			return apperr.New(apperr.CodeRosterLimit, "%s", fit.Reason)
		}

		structure := salary.Structure(req.TotalAmount, req.Years)
		if short, ok := ledger.Fits(structure, league.CurrentSeason); !ok {
			return apperr.New(apperr.CodeInsufficientCap, "not enough cap space").
				WithString("season", fmt.Sprint(short.Season)).
				With("required", short.Required).
				With("available", short.Available)
		}

		previous := auction.HighBidderTeamID
		endTime, extended := a.rules.extend(auction.StartTime, auction.EndTime, now, auction.Extensions)
		auction.CurrentOfferTotal = req.TotalAmount
		auction.CurrentOfferYears = req.Years
		auction.CurrentYear1Amount = structure.ForYear(0)
		auction.HighBidderTeamID = &team.ID
		auction.EndTime = endTime
		if extended {
			auction.Extensions++
		}
		if err := q.UpdateAuctionOffer(ctx, *auction); err != nil {
			return err
		}
		if err := q.CreateBid(ctx, models.Bid{
			ID:           uuid.New(),
			AuctionID:    auction.ID,
			TeamID:       team.ID,
			BidderUserID: req.BidderID,
			TotalAmount:  req.TotalAmount,
			Years:        req.Years,
			AnnualValue:  annual,
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		payload := events.BidPlacedPayload{
			AuctionID:   auction.ID.String(),
			PlayerID:    req.PlayerID.String(),
			TeamID:      team.ID.String(),
			TotalAmount: req.TotalAmount.String(),
			Years:       req.Years,
			Year1Amount: auction.CurrentYear1Amount.String(),
			EndTime:     auction.EndTime,
			Extended:    extended,
			PlacedAt:    now,
		}
		if previous != nil && *previous != team.ID {
			payload.PreviousOwner = previous.String()
		}
		if err := events.Record(ctx, q, league.ID, events.TypeBidPlaced, payload, now); err != nil {
			return err
		}

		result = &BidResult{
			Message:        "bid placed",
			AuctionID:      auction.ID,
			AuctionEndTime: auction.EndTime,
			FirstYearCost:  auction.CurrentYear1Amount,
			Extended:       extended,
		}
		return nil
	})
	if err != nil {
		return nil, a.fail(err, apperr.PlaceBidCodes, "place bid")
	}
	a.cache.Invalidate(req.LeagueID)

	if taken {
		return nil, apperr.New(apperr.CodePlayerAlreadyTaken, "auction has already been won").
			WithString("player_id", req.PlayerID.String())
	}

	log.Info().
		Str("league_id", req.LeagueID.String()).
		Str("player_id", req.PlayerID.String()).
		Str("auction_id", result.AuctionID.String()).
		Str("total", req.TotalAmount.String()).
		Int("years", req.Years).
		Bool("extended", result.Extended).
		Msg("bid placed")
	return result, nil
}

func (a *App) openAuction(ctx context.Context, q store.Querier, leagueID, playerID uuid.UUID, now time.Time) (*models.Auction, error) {
	auction := models.Auction{
		ID:                 uuid.New(),
		LeagueID:           leagueID,
		PlayerID:           playerID,
		CurrentOfferTotal:  decimal.Zero,
		CurrentYear1Amount: decimal.Zero,
		StartTime:          now,
		EndTime:            now.Add(a.rules.InitialDuration),
		IsActive:           true,
	}
	if err := q.CreateAuction(ctx, auction); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}
	err := events.Record(ctx, q, leagueID, events.TypeAuctionOpened, events.AuctionOpenedPayload{
		AuctionID: auction.ID.String(),
		PlayerID:  playerID.String(),
		EndTime:   auction.EndTime,
	}, now)
	if err != nil {
		return nil, err
	}
	return &auction, nil
}

// ProcessExpired settles every auction in the league whose end time has
// passed and returns how many were settled.
func (a *App) ProcessExpired(ctx context.Context, leagueID uuid.UUID) (int, error) {
	settled := 0
	err := a.store.Serializable(ctx, func(q store.Querier) error {
		settled = 0
		now := a.clock.Now()
		league, err := q.GetLeague(ctx, leagueID)
		if err != nil {
			return err
		}
		expired, err := q.ListExpiredAuctionsForUpdate(ctx, leagueID, now)
		if err != nil {
			return err
		}
		for _, auction := range expired {
			if err := settle(ctx, q, league, auction, now); err != nil {
				return err
			}
			settled++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to process expired auctions: %w", err)
	}
	if settled > 0 {
		a.cache.Invalidate(leagueID)
		log.Info().Str("league_id", leagueID.String()).Int("settled", settled).Msg("expired auctions processed")
	}
	return settled, nil
}

// settle closes an expired auction, signing the high bidder when there is one.
func settle(ctx context.Context, q store.Querier, league *models.League, auction models.Auction, now time.Time) error {
	if err := q.DeactivateAuction(ctx, auction.ID); err != nil {
		return err
	}

	payload := events.AuctionSettledPayload{
		AuctionID: auction.ID.String(),
		PlayerID:  auction.PlayerID.String(),
		SettledAt: now,
	}
	if !auction.IsOwned() {
		return events.Record(ctx, q, league.ID, events.TypeAuctionExpired, payload, now)
	}

	if _, err := q.GetContractByPlayer(ctx, league.ID, auction.PlayerID); err == nil {
		log.Warn().
			Str("auction_id", auction.ID.String()).
			Str("player_id", auction.PlayerID.String()).
			Msg("player signed while auction was open, closing without contract")
		return events.Record(ctx, q, league.ID, events.TypeAuctionExpired, payload, now)
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	structure := salary.Structure(auction.CurrentOfferTotal, auction.CurrentOfferYears)
	contract := models.Contract{
		ID:              uuid.New(),
		LeagueID:        league.ID,
		TeamID:          *auction.HighBidderTeamID,
		PlayerID:        auction.PlayerID,
		StartSeason:     league.CurrentSeason,
		Years:           auction.CurrentOfferYears,
		Year1:           structure[0],
		Year2:           structure[1],
		Year3:           structure[2],
		TotalValue:      auction.CurrentOfferTotal,
		AcquisitionType: models.AcquisitionTypeAuction,
		CreatedAt:       now,
	}
	if err := q.CreateContract(ctx, contract); err != nil {
		return fmt.Errorf("failed to create contract for auction %s: %w", auction.ID, err)
	}

	payload.TeamID = contract.TeamID.String()
	payload.ContractID = contract.ID.String()
	payload.TotalAmount = contract.TotalValue.String()
	payload.Years = contract.Years
	return events.Record(ctx, q, league.ID, events.TypeAuctionWon, payload, now)
}

// ListMarket settles overdue auctions and returns the league's open market.
// The listing may be served from a snapshot a few seconds old.
func (a *App) ListMarket(ctx context.Context, leagueID uuid.UUID) (*Market, error) {
	if _, err := a.ProcessExpired(ctx, leagueID); err != nil {
		// a stale listing is still useful
		log.Warn().Err(err).Str("league_id", leagueID.String()).Msg("failed to process expired auctions before listing")
	}
	if m, ok := a.cache.Get(leagueID); ok {
		return m, nil
	}

	m := &Market{LeagueID: leagueID, AsOf: a.clock.Now()}
	err := a.store.ReadOnly(ctx, func(q store.Querier) error {
		auctions, err := q.ListActiveAuctions(ctx, leagueID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(auctions))
		for i, au := range auctions {
			ids[i] = au.PlayerID
		}
		players, err := q.GetPlayers(ctx, ids)
		if err != nil {
			return err
		}
		for _, au := range auctions {
			m.Entries = append(m.Entries, MarketEntry{Auction: au, Player: players[au.PlayerID]})
		}
		return nil
	})
	if err != nil {
		return nil, a.fail(err, apperr.MarketReadCodes, "list market")
	}
	a.cache.Set(m)
	return m, nil
}

// GetBidHistory returns an auction's accepted bids, oldest first.
func (a *App) GetBidHistory(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	err := a.store.ReadOnly(ctx, func(q store.Querier) error {
		var err error
		bids, err = q.ListBidsByAuction(ctx, auctionID)
		return err
	})
	if err != nil {
		return nil, a.fail(err, apperr.MarketReadCodes, "bid history")
	}
	return bids, nil
}

func (a *App) fail(err error, codes apperr.CodeSet, op string) error {
	if e, ok := apperr.As(err); ok && e.Code.Kind() != apperr.KindFatal {
		log.Debug().Str("op", op).Str("code", string(e.Code)).Msg("auction request refused")
	} else {
		log.Error().Err(err).Str("op", op).Msg("auction commit failed")
	}
	return apperr.Restrict(err, codes)
}

func (a *App) validateBidRequest(req PlaceBidRequest) error {
	if err := a.validate.Struct(req); err != nil {
		return err
	}
	if !a.rules.validYears(req.Years) {
		return fmt.Errorf("years must be between 1 and %d", a.rules.MaxYears)
	}
	if !req.TotalAmount.IsPositive() {
		return fmt.Errorf("total_amount must be positive")
	}
	if salary.AnnualValue(req.TotalAmount, req.Years).IsZero() {
		return fmt.Errorf("annual value rounds to zero")
	}
	return nil
}
