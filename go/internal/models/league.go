package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LeagueStatus string

const (
	LeagueStatusPending   LeagueStatus = "PENDING"
	LeagueStatusActive    LeagueStatus = "ACTIVE"
	LeagueStatusCompleted LeagueStatus = "COMPLETED"
)

// League represents a dynasty league. Only the fields the market engine needs are loaded.
type League struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	CommissionerID uuid.UUID      `json:"commissioner_id"`
	CurrentSeason  int            `json:"current_season"`
	Status         LeagueStatus   `json:"league_status"`
	Settings       LeagueSettings `json:"league_settings"` // JSONB
	CreatedAt      time.Time      `json:"created_at"`
}

// RosterSlots is the number of lineup slots per role. Bench slots take any position.
type RosterSlots struct {
	Guard   int `json:"guard"`
	Forward int `json:"forward"`
	Center  int `json:"center"`
	Bench   int `json:"bench"`
}

// Total returns the maximum roster size.
func (s RosterSlots) Total() int {
	return s.Guard + s.Forward + s.Center + s.Bench
}

// LeagueSettings holds the commissioner-configured market parameters.
type LeagueSettings struct {
	RosterSlots RosterSlots `json:"roster_slots"`

	// Fraction of each remaining year's salary that becomes dead cap on release.
	GuaranteedFraction       decimal.Decimal `json:"guaranteed_fraction"`
	RookieGuaranteedFraction decimal.Decimal `json:"rookie_guaranteed_fraction"`

	BasePricePerPoint     decimal.Decimal `json:"base_price_per_point"`
	MinBasePrice          decimal.Decimal `json:"min_base_price"`
	MinGamesCurrentSeason int             `json:"min_games_current_season"`

	ScoringWeights ScoringWeights `json:"scoring_weights"`
}

// DefaultLeagueSettings mirrors the values a new league is created with.
func DefaultLeagueSettings() LeagueSettings {
	return LeagueSettings{
		RosterSlots:              RosterSlots{Guard: 3, Forward: 3, Center: 2, Bench: 5},
		GuaranteedFraction:       decimal.RequireFromString("0.5"),
		RookieGuaranteedFraction: decimal.RequireFromString("0.25"),
		BasePricePerPoint:        decimal.RequireFromString("0.2"),
		MinBasePrice:             decimal.NewFromInt(1),
		MinGamesCurrentSeason:    10,
		ScoringWeights:           DefaultScoringWeights(),
	}
}
