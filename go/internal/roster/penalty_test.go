package roster

import (
	"testing"

	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputePenalty(t *testing.T) {
	half := Fractions{Standard: decimal.RequireFromString("0.5"), Rookie: decimal.RequireFromString("0.25")}
	nine := decimal.NewFromInt(9)
	threeYear := models.Contract{StartSeason: 2024, Years: 3, Year1: nine, Year2: nine, Year3: nine}

	tests := []struct {
		name     string
		contract models.Contract
		season   int
		want     []Charge
	}{
		{
			name:     "released after year one",
			contract: threeYear,
			season:   2025,
			want: []Charge{
				{Season: 2025, Amount: decimal.RequireFromString("4.5")},
				{Season: 2026, Amount: decimal.RequireFromString("4.5")},
			},
		},
		{
			name:     "released in first season",
			contract: threeYear,
			season:   2024,
			want: []Charge{
				{Season: 2024, Amount: decimal.RequireFromString("4.5")},
				{Season: 2025, Amount: decimal.RequireFromString("4.5")},
				{Season: 2026, Amount: decimal.RequireFromString("4.5")},
			},
		},
		{
			name:     "rookie fraction",
			contract: models.Contract{StartSeason: 2025, Years: 2, Year1: decimal.NewFromInt(4), Year2: decimal.NewFromInt(4), IsRookie: true},
			season:   2025,
			want: []Charge{
				{Season: 2025, Amount: decimal.NewFromInt(1)},
				{Season: 2026, Amount: decimal.NewFromInt(1)},
			},
		},
		{
			name:     "expired contract owes nothing",
			contract: threeYear,
			season:   2027,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePenalty(tt.contract, tt.season, half)
			assert.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Season, got[i].Season)
				assert.True(t, tt.want[i].Amount.Equal(got[i].Amount), "season %d: want %s got %s", tt.want[i].Season, tt.want[i].Amount, got[i].Amount)
			}
		})
	}
}

func TestComputePenalty_ZeroGuarantee(t *testing.T) {
	c := models.Contract{StartSeason: 2025, Years: 1, Year1: decimal.NewFromInt(10)}
	assert.Empty(t, ComputePenalty(c, 2025, Fractions{Standard: decimal.Zero}))
}

func TestTotalPenalty(t *testing.T) {
	charges := []Charge{{Season: 1, Amount: decimal.RequireFromString("4.5")}, {Season: 2, Amount: decimal.RequireFromString("4.5")}}
	assert.Equal(t, "9", TotalPenalty(charges).String())
}
