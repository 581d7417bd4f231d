package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Player represents an NBA player available to the leagues.
type Player struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	FullName   string    `json:"full_name"`
	Position   string    `json:"position"` // "G", "F", "C", "G-F", "F-C", ...
	NBATeam    string    `json:"nba_team"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatLine is a player's accumulated box score totals for one season.
type StatLine struct {
	PlayerID    uuid.UUID `json:"player_id"`
	Season      int       `json:"season"`
	GamesPlayed int       `json:"games_played"`
	Points      int       `json:"points"`
	Rebounds    int       `json:"rebounds"`
	Assists     int       `json:"assists"`
	Steals      int       `json:"steals"`
	Blocks      int       `json:"blocks"`
	Turnovers   int       `json:"turnovers"`
	ThreesMade  int       `json:"threes_made"`
}

// ScoringWeights are the per-stat fantasy point multipliers of a league.
type ScoringWeights struct {
	Points     decimal.Decimal `json:"points"`
	Rebounds   decimal.Decimal `json:"rebounds"`
	Assists    decimal.Decimal `json:"assists"`
	Steals     decimal.Decimal `json:"steals"`
	Blocks     decimal.Decimal `json:"blocks"`
	Turnovers  decimal.Decimal `json:"turnovers"`
	ThreesMade decimal.Decimal `json:"threes_made"`
}

func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		Points:     decimal.NewFromInt(1),
		Rebounds:   decimal.RequireFromString("1.2"),
		Assists:    decimal.RequireFromString("1.5"),
		Steals:     decimal.NewFromInt(3),
		Blocks:     decimal.NewFromInt(3),
		Turnovers:  decimal.NewFromInt(-1),
		ThreesMade: decimal.RequireFromString("0.5"),
	}
}
