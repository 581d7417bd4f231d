package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FantasyTeam is a manager's franchise inside one league.
// SalaryCap and SalaryFloor apply to every season the team is in the league.
type FantasyTeam struct {
	ID          uuid.UUID       `json:"id"`
	LeagueID    uuid.UUID       `json:"league_id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Name        string          `json:"name"`
	SalaryCap   decimal.Decimal `json:"salary_cap"`
	SalaryFloor decimal.Decimal `json:"salary_floor"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CapCeiling returns the ceiling for the given season.
func (t FantasyTeam) CapCeiling(season int) decimal.Decimal {
	return t.SalaryCap
}
