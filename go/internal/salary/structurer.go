// Package salary splits contract totals into per-season salaries.
package salary

import "github.com/shopspring/decimal"

// MaxYears is the longest contract a league allows.
const MaxYears = 3

// Breakdown holds Year1..Year3 salaries; unused years are zero.
type Breakdown [MaxYears]decimal.Decimal

// ValidYears reports whether years is an allowed contract length.
func ValidYears(years int) bool {
	return years >= 1 && years <= MaxYears
}

// AnnualValue is floor(total/years). years must already be valid.
func AnnualValue(total decimal.Decimal, years int) decimal.Decimal {
	return total.Div(decimal.NewFromInt(int64(years))).Floor()
}

// Structure splits total into years equal floored salaries with the rounding
// remainder added to the final contracted year.
func Structure(total decimal.Decimal, years int) Breakdown {
	var b Breakdown
	for i := range b {
		b[i] = decimal.Zero
	}
	annual := AnnualValue(total, years)
	for i := 0; i < years-1; i++ {
		b[i] = annual
	}
	b[years-1] = total.Sub(annual.Mul(decimal.NewFromInt(int64(years - 1))))
	return b
}

// Sum adds every year.
func (b Breakdown) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range b {
		sum = sum.Add(v)
	}
	return sum
}

// Years counts the non-zero years.
func (b Breakdown) Years() int {
	n := 0
	for _, v := range b {
		if !v.IsZero() {
			n++
		}
	}
	return n
}

// ForYear returns the salary for the 0-based contract year i.
func (b Breakdown) ForYear(i int) decimal.Decimal {
	if i < 0 || i >= len(b) {
		return decimal.Zero
	}
	return b[i]
}
