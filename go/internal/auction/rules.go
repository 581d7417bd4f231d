package auction

import (
	"time"

	"github.com/mcdev12/hoops/go/internal/salary"
	"github.com/shopspring/decimal"
)

// Rules are the engine-wide bidding parameters.
type Rules struct {
	// InitialDuration is how long a new auction runs before any extension.
	InitialDuration time.Duration `yaml:"initial_duration"`
	// AntiSnipeWindow is both the late-bid threshold and the extension length.
	AntiSnipeWindow time.Duration `yaml:"anti_snipe_window"`
	// MinIncrement is how much a bid must raise the current annual value.
	MinIncrement decimal.Decimal `yaml:"min_increment"`
	MaxYears     int             `yaml:"max_years"`
	// MaxExtensions caps anti-snipe extensions per auction. Zero is unlimited.
	MaxExtensions int `yaml:"max_extensions"`
	// HardCloseAfter bounds EndTime to StartTime+HardCloseAfter. Zero is unlimited.
	HardCloseAfter time.Duration `yaml:"hard_close_after"`
}

// DefaultRules returns the standard market rules.
func DefaultRules() Rules {
	return Rules{
		InitialDuration: 24 * time.Hour,
		AntiSnipeWindow: 5 * time.Minute,
		MinIncrement:    decimal.NewFromInt(1),
		MaxYears:        salary.MaxYears,
	}
}

func (r Rules) validYears(years int) bool {
	max := r.MaxYears
	if max <= 0 || max > salary.MaxYears {
		max = salary.MaxYears
	}
	return years >= 1 && years <= max
}

// extend returns the new end time for a bid landing at now and whether the
// auction was extended.
func (r Rules) extend(start, end, now time.Time, extensions int) (time.Time, bool) {
	if end.Sub(now) >= r.AntiSnipeWindow {
		return end, false
	}
	if r.MaxExtensions > 0 && extensions >= r.MaxExtensions {
		return end, false
	}
	next := now.Add(r.AntiSnipeWindow)
	if r.HardCloseAfter > 0 {
		if limit := start.Add(r.HardCloseAfter); next.After(limit) {
			next = limit
		}
	}
	if !next.After(end) {
		return end, false
	}
	return next, true
}
