package capspace

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/salary"
	"github.com/mcdev12/hoops/go/internal/store"
	"github.com/mcdev12/hoops/go/internal/store/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestLedger_Summary(t *testing.T) {
	team := models.FantasyTeam{ID: uuid.New(), SalaryCap: d(100), SalaryFloor: d(30)}
	bidder := team.ID
	ledger := &Ledger{
		Team:          team,
		CurrentSeason: 2025,
		Contracts: []models.Contract{
			{ID: uuid.New(), StartSeason: 2025, Years: 3, Year1: d(10), Year2: d(10), Year3: d(10)},
			{ID: uuid.New(), StartSeason: 2024, Years: 2, Year1: d(20), Year2: d(20)},
		},
		DeadCap: []models.DeadCap{
			{Season: 2025, Amount: decimal.RequireFromString("4.5")},
			{Season: 2026, Amount: decimal.RequireFromString("4.5")},
		},
		Leading: []models.Auction{
			{ID: uuid.New(), CurrentYear1Amount: d(6), HighBidderTeamID: &bidder},
		},
	}

	t.Run("current season counts escrow", func(t *testing.T) {
		s := ledger.Summary(2025)
		assert.Equal(t, "30", s.ContractSalary.String())
		assert.Equal(t, "4.5", s.DeadCap.String())
		assert.Equal(t, "65.5", s.Available.String())
		assert.Equal(t, "6", s.Escrowed.String())
		assert.Equal(t, "59.5", s.Spendable.String())
		assert.False(t, s.BelowFloor)
		assert.Equal(t, "34.5", s.Committed().String())
	})

	t.Run("future season ignores single-year escrow and expired contracts", func(t *testing.T) {
		s := ledger.Summary(2026)
		assert.Equal(t, "10", s.ContractSalary.String())
		assert.True(t, s.Escrowed.IsZero())
		assert.Equal(t, "85.5", s.Spendable.String())
		assert.True(t, s.BelowFloor)
	})

	t.Run("multi-year offers escrow later seasons", func(t *testing.T) {
		multi := *ledger
		multi.Leading = []models.Auction{{
			ID: uuid.New(), HighBidderTeamID: &bidder,
			CurrentOfferTotal: d(13), CurrentOfferYears: 2, CurrentYear1Amount: d(6),
		}}
		assert.Equal(t, "6", multi.Summary(2025).Escrowed.String())
		assert.Equal(t, "7", multi.Summary(2026).Escrowed.String())
		assert.True(t, multi.Summary(2027).Escrowed.IsZero())
	})

	t.Run("seasons span the longest contract", func(t *testing.T) {
		assert.Equal(t, []int{2025, 2026, 2027}, ledger.Seasons())
	})
}

func TestLedger_ExcludingAuction(t *testing.T) {
	team := models.FantasyTeam{ID: uuid.New(), SalaryCap: d(10)}
	auctionID := uuid.New()
	ledger := &Ledger{
		Team:          team,
		CurrentSeason: 2025,
		Leading:       []models.Auction{{ID: auctionID, CurrentYear1Amount: d(8)}},
	}

	assert.False(t, ledger.Summary(2025).CanAfford(d(9)))
	assert.True(t, ledger.ExcludingAuction(auctionID).Summary(2025).CanAfford(d(9)))
	// the original ledger is untouched
	assert.Len(t, ledger.Leading, 1)
}

func TestLedger_Fits(t *testing.T) {
	team := models.FantasyTeam{ID: uuid.New(), SalaryCap: d(20)}
	ledger := &Ledger{
		Team:          team,
		CurrentSeason: 2025,
		Contracts: []models.Contract{
			{ID: uuid.New(), StartSeason: 2025, Years: 2, Year1: d(5), Year2: d(15)},
		},
	}

	_, ok := ledger.Fits(salary.Structure(d(10), 2), 2025)
	assert.True(t, ok)

	short, ok := ledger.Fits(salary.Structure(d(12), 2), 2025)
	assert.False(t, ok)
	assert.Equal(t, 2026, short.Season)
	assert.Equal(t, "6", short.Required.String())
	assert.Equal(t, "5", short.Available.String())
}

func TestLedger_Apply(t *testing.T) {
	team := models.FantasyTeam{ID: uuid.New(), SalaryCap: d(30)}
	out := models.Contract{ID: uuid.New(), StartSeason: 2025, Years: 1, Year1: d(10)}
	in := models.Contract{ID: uuid.New(), StartSeason: 2025, Years: 1, Year1: d(25)}
	ledger := &Ledger{Team: team, CurrentSeason: 2025, Contracts: []models.Contract{out}}

	after := ledger.Apply([]uuid.UUID{out.ID}, []models.Contract{in})

	assert.Equal(t, "25", after.Summary(2025).ContractSalary.String())
	assert.Equal(t, "10", ledger.Summary(2025).ContractSalary.String())
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	st := storetest.New()
	league := st.SeedLeague(2025)
	team := st.SeedTeam(league.ID, 100)
	player := st.SeedPlayer("G")
	st.SeedContract(team, player, 2025, 27, 3)
	st.AddDeadCap(models.DeadCap{ID: uuid.New(), TeamID: team.ID, Season: 2025, Amount: d(2)})
	st.AddAuction(models.Auction{
		ID: uuid.New(), LeagueID: league.ID, PlayerID: uuid.New(),
		CurrentYear1Amount: d(4), HighBidderTeamID: &team.ID, IsActive: true,
	})

	var s Summary
	err := st.ReadOnly(ctx, func(q store.Querier) error {
		ledger, err := Load(ctx, q, team, league.CurrentSeason)
		if err != nil {
			return err
		}
		s = ledger.Summary(2025)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "89", s.Available.String())
	assert.Equal(t, "85", s.Spendable.String())
}
