package scoring

import (
	"testing"

	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFantasyPoints(t *testing.T) {
	w := models.DefaultScoringWeights()

	tests := []struct {
		name string
		line models.StatLine
		want string
	}{
		{"empty line", models.StatLine{}, "0"},
		{"points only", models.StatLine{Points: 30}, "30"},
		{
			name: "full line",
			// 20 + 10*1.2 + 5*1.5 + 2*3 + 1*3 - 3 + 4*0.5
			line: models.StatLine{Points: 20, Rebounds: 10, Assists: 5, Steals: 2, Blocks: 1, Turnovers: 3, ThreesMade: 4},
			want: "47.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FantasyPoints(tt.line, w)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestPerGame(t *testing.T) {
	w := models.DefaultScoringWeights()

	assert.True(t, PerGame(models.StatLine{Points: 100}, w).IsZero())

	got := PerGame(models.StatLine{GamesPlayed: 4, Points: 100}, w)
	assert.True(t, decimal.NewFromInt(25).Equal(got))
}
