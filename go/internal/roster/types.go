package roster

import (
	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/capspace"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/shopspring/decimal"
)

// ReleaseRequest drops a player from the caller's team.
type ReleaseRequest struct {
	LeagueID uuid.UUID `json:"league_id" validate:"required"`
	PlayerID uuid.UUID `json:"player_id" validate:"required"`
	UserID   uuid.UUID `json:"user_id" validate:"required"`
}

// ReleaseResult reports what was booked.
type ReleaseResult struct {
	Released   bool            `json:"released"`
	ContractID uuid.UUID       `json:"contract_id"`
	DeadCap    []Charge        `json:"dead_cap"`
	Total      decimal.Decimal `json:"total"`
}

// AssignRequest places a player on a team outside the auction, either by the
// commissioner or as a rookie-draft pick.
type AssignRequest struct {
	LeagueID        uuid.UUID              `json:"league_id" validate:"required"`
	TeamID          uuid.UUID              `json:"team_id" validate:"required"`
	PlayerID        uuid.UUID              `json:"player_id" validate:"required"`
	ActorID         uuid.UUID              `json:"actor_id" validate:"required"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	Years           int                    `json:"years" validate:"gte=1"`
	IsRookie        bool                   `json:"is_rookie"`
	AcquisitionType models.AcquisitionType `json:"acquisition_type" validate:"required"`
}

// RosterEntry is a contract with its player.
type RosterEntry struct {
	Contract models.Contract `json:"contract"`
	Player   models.Player   `json:"player"`
}

// TeamRoster is a team's contracts, dead cap and current cap position.
type TeamRoster struct {
	Team    models.FantasyTeam `json:"team"`
	Season  int                `json:"season"`
	Entries []RosterEntry      `json:"entries"`
	DeadCap []models.DeadCap   `json:"dead_cap"`
	Cap     capspace.Summary   `json:"cap"`
}
