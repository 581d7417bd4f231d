package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contract binds a player to a fantasy team for one to three seasons.
type Contract struct {
	ID              uuid.UUID       `json:"id"`
	LeagueID        uuid.UUID       `json:"league_id"`
	TeamID          uuid.UUID       `json:"team_id"`
	PlayerID        uuid.UUID       `json:"player_id"`
	StartSeason     int             `json:"start_season"`
	Years           int             `json:"years"`
	Year1           decimal.Decimal `json:"year1"`
	Year2           decimal.Decimal `json:"year2"`
	Year3           decimal.Decimal `json:"year3"`
	TotalValue      decimal.Decimal `json:"total_value"`
	IsRookie        bool            `json:"is_rookie"`
	AcquisitionType AcquisitionType `json:"acquisition_type"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AcquisitionType represents how a contract came to be held by its team
type AcquisitionType string

const (
	AcquisitionTypeAuction     AcquisitionType = "AUCTION"
	AcquisitionTypeTrade       AcquisitionType = "TRADE"
	AcquisitionTypeAdmin       AcquisitionType = "ADMIN"
	AcquisitionTypeRookieDraft AcquisitionType = "ROOKIE_DRAFT"
)

// SalaryFor returns the salary owed in season, zero outside the contract.
func (c Contract) SalaryFor(season int) decimal.Decimal {
	switch season - c.StartSeason {
	case 0:
		return c.Year1
	case 1:
		if c.Years >= 2 {
			return c.Year2
		}
	case 2:
		if c.Years >= 3 {
			return c.Year3
		}
	}
	return decimal.Zero
}

// LastSeason is the final season the contract pays.
func (c Contract) LastSeason() int {
	return c.StartSeason + c.Years - 1
}

// Covers reports whether the contract pays anything in season.
func (c Contract) Covers(season int) bool {
	return season >= c.StartSeason && season <= c.LastSeason()
}
