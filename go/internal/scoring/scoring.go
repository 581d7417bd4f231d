// Package scoring converts box score totals into fantasy points.
package scoring

import (
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/shopspring/decimal"
)

// FantasyPoints returns the weighted total for a stat line.
func FantasyPoints(line models.StatLine, w models.ScoringWeights) decimal.Decimal {
	return decimal.Sum(
		w.Points.Mul(decimal.NewFromInt(int64(line.Points))),
		w.Rebounds.Mul(decimal.NewFromInt(int64(line.Rebounds))),
		w.Assists.Mul(decimal.NewFromInt(int64(line.Assists))),
		w.Steals.Mul(decimal.NewFromInt(int64(line.Steals))),
		w.Blocks.Mul(decimal.NewFromInt(int64(line.Blocks))),
		w.Turnovers.Mul(decimal.NewFromInt(int64(line.Turnovers))),
		w.ThreesMade.Mul(decimal.NewFromInt(int64(line.ThreesMade))),
	)
}

// PerGame averages FantasyPoints over games played. Zero games yields zero.
func PerGame(line models.StatLine, w models.ScoringWeights) decimal.Decimal {
	if line.GamesPlayed <= 0 {
		return decimal.Zero
	}
	return FantasyPoints(line, w).Div(decimal.NewFromInt(int64(line.GamesPlayed)))
}
