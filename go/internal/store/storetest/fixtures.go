package storetest

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/salary"
	"github.com/shopspring/decimal"
)

// Epoch is the reference time fixtures are stamped with.
var Epoch = time.Date(2025, time.October, 21, 19, 0, 0, 0, time.UTC)

// SeedLeague stores an active league for season with default settings.
func (s *Store) SeedLeague(season int) models.League {
	l := models.League{
		ID:             uuid.New(),
		Name:           "Test League",
		CommissionerID: uuid.New(),
		CurrentSeason:  season,
		Status:         models.LeagueStatusActive,
		Settings:       models.DefaultLeagueSettings(),
		CreatedAt:      Epoch,
	}
	s.AddLeague(l)
	return l
}

// SeedTeam stores a team owned by a fresh user with the given cap.
func (s *Store) SeedTeam(leagueID uuid.UUID, salaryCap int64) models.FantasyTeam {
	t := models.FantasyTeam{
		ID:          uuid.New(),
		LeagueID:    leagueID,
		OwnerID:     uuid.New(),
		Name:        "Team " + uuid.NewString()[:8],
		SalaryCap:   decimal.NewFromInt(salaryCap),
		SalaryFloor: decimal.Zero,
		CreatedAt:   Epoch,
	}
	s.AddTeam(t)
	return t
}

// SeedPlayer stores a player at position.
func (s *Store) SeedPlayer(position string) models.Player {
	p := models.Player{
		ID:         uuid.New(),
		ExternalID: uuid.NewString(),
		FullName:   "Player " + position,
		Position:   position,
		CreatedAt:  Epoch,
	}
	s.AddPlayer(p)
	return p
}

// SeedContract signs player to team starting in season.
func (s *Store) SeedContract(team models.FantasyTeam, player models.Player, season int, total int64, years int) models.Contract {
	b := salary.Structure(decimal.NewFromInt(total), years)
	c := models.Contract{
		ID:              uuid.New(),
		LeagueID:        team.LeagueID,
		TeamID:          team.ID,
		PlayerID:        player.ID,
		StartSeason:     season,
		Years:           years,
		Year1:           b[0],
		Year2:           b[1],
		Year3:           b[2],
		TotalValue:      decimal.NewFromInt(total),
		AcquisitionType: models.AcquisitionTypeAdmin,
		CreatedAt:       Epoch,
	}
	s.AddContract(c)
	return c
}
