package roster

import (
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/shopspring/decimal"
)

// Fractions are the guaranteed shares of remaining salary owed on release.
type Fractions struct {
	Standard decimal.Decimal
	Rookie   decimal.Decimal
}

// FractionsFrom reads the release fractions from league settings.
func FractionsFrom(s models.LeagueSettings) Fractions {
	return Fractions{Standard: s.GuaranteedFraction, Rookie: s.RookieGuaranteedFraction}
}

func (f Fractions) For(c models.Contract) decimal.Decimal {
	if c.IsRookie {
		return f.Rookie
	}
	return f.Standard
}

// Charge is one season of dead cap.
type Charge struct {
	Season int             `json:"season"`
	Amount decimal.Decimal `json:"amount"`
}

// ComputePenalty returns the dead cap owed for every contracted season from
// currentSeason on. Seasons already paid produce nothing.
func ComputePenalty(c models.Contract, currentSeason int, f Fractions) []Charge {
	fraction := f.For(c)
	var out []Charge
	for season := c.StartSeason; season <= c.LastSeason(); season++ {
		if season < currentSeason {
			continue
		}
		amount := c.SalaryFor(season).Mul(fraction).Round(2)
		if amount.IsPositive() {
			out = append(out, Charge{Season: season, Amount: amount})
		}
	}
	return out
}

// TotalPenalty sums charges.
func TotalPenalty(charges []Charge) decimal.Decimal {
	total := decimal.Zero
	for _, c := range charges {
		total = total.Add(c.Amount)
	}
	return total
}
