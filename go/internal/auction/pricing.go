package auction

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/scoring"
	"github.com/mcdev12/hoops/go/internal/store"
	"github.com/shopspring/decimal"
)

// StatReader loads season totals for base pricing.
type StatReader interface {
	GetPlayerStatLine(ctx context.Context, playerID uuid.UUID, season int) (*models.StatLine, error)
}

// BasePrice is the minimum annual value a player can be bid at. It uses the
// current season once the player has enough games, the prior season before
// that, and falls back to the league minimum without stats.
func BasePrice(ctx context.Context, r StatReader, playerID uuid.UUID, season int, s models.LeagueSettings) (decimal.Decimal, error) {
	line, err := r.GetPlayerStatLine(ctx, playerID, season)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return decimal.Zero, err
	}
	if line == nil || line.GamesPlayed < s.MinGamesCurrentSeason {
		line, err = r.GetPlayerStatLine(ctx, playerID, season-1)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return decimal.Zero, err
		}
	}
	return priceFor(line, s), nil
}

func priceFor(line *models.StatLine, s models.LeagueSettings) decimal.Decimal {
	if line == nil {
		return s.MinBasePrice
	}
	price := scoring.PerGame(*line, s.ScoringWeights).Mul(s.BasePricePerPoint).Floor()
	if price.LessThan(s.MinBasePrice) {
		return s.MinBasePrice
	}
	return price
}
