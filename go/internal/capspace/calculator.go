// Package capspace computes how much of its salary cap a team can still spend.
package capspace

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/salary"
	"github.com/shopspring/decimal"
)

// Reader is what the calculator needs from the store. Callers pass the
// Querier of the transaction they are committing in so every figure comes
// from one consistent read.
type Reader interface {
	ListContractsByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Contract, error)
	ListDeadCapByTeam(ctx context.Context, teamID uuid.UUID) ([]models.DeadCap, error)
	ListAuctionsLedBy(ctx context.Context, teamID uuid.UUID) ([]models.Auction, error)
}

// Summary is a team's cap position for one season.
type Summary struct {
	TeamID         uuid.UUID       `json:"team_id"`
	Season         int             `json:"season"`
	Ceiling        decimal.Decimal `json:"ceiling"`
	Floor          decimal.Decimal `json:"floor"`
	ContractSalary decimal.Decimal `json:"contract_salary"`
	DeadCap        decimal.Decimal `json:"dead_cap"`
	Escrowed       decimal.Decimal `json:"escrowed"`
	// Available is Ceiling minus contracts and dead cap.
	Available decimal.Decimal `json:"available"`
	// Spendable is Available minus escrow held by auctions the team leads.
	Spendable  decimal.Decimal `json:"spendable"`
	BelowFloor bool            `json:"below_floor"`
}

// Committed is contract salary plus dead cap.
func (s Summary) Committed() decimal.Decimal {
	return s.ContractSalary.Add(s.DeadCap)
}

// CanAfford reports whether amount fits in the spendable space.
func (s Summary) CanAfford(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(s.Spendable)
}

// Shortfall describes the first season a new obligation does not fit.
type Shortfall struct {
	Season    int
	Required  decimal.Decimal
	Available decimal.Decimal
}

// Ledger is a team's loaded obligations, from which per-season summaries are
// derived without further reads.
type Ledger struct {
	Team          models.FantasyTeam
	CurrentSeason int
	Contracts     []models.Contract
	DeadCap       []models.DeadCap
	Leading       []models.Auction
}

// Load reads a team's contracts, dead cap and leading auctions.
func Load(ctx context.Context, r Reader, team models.FantasyTeam, currentSeason int) (*Ledger, error) {
	contracts, err := r.ListContractsByTeam(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts: %w", err)
	}
	deadCap, err := r.ListDeadCapByTeam(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dead cap: %w", err)
	}
	leading, err := r.ListAuctionsLedBy(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leading auctions: %w", err)
	}
	return &Ledger{
		Team:          team,
		CurrentSeason: currentSeason,
		Contracts:     contracts,
		DeadCap:       deadCap,
		Leading:       leading,
	}, nil
}

// Summary computes the cap position for season. A leading auction escrows
// its first-year amount in the current season and, when it is a multi-year
// offer, the structured salary of each later season it would pay.
func (l *Ledger) Summary(season int) Summary {
	contractSalary := decimal.Zero
	for _, c := range l.Contracts {
		contractSalary = contractSalary.Add(c.SalaryFor(season))
	}
	dead := decimal.Zero
	for _, d := range l.DeadCap {
		if d.Season == season {
			dead = dead.Add(d.Amount)
		}
	}
	escrow := decimal.Zero
	for _, a := range l.Leading {
		escrow = escrow.Add(escrowFor(a, season-l.CurrentSeason))
	}

	ceiling := l.Team.CapCeiling(season)
	available := ceiling.Sub(contractSalary).Sub(dead)
	return Summary{
		TeamID:         l.Team.ID,
		Season:         season,
		Ceiling:        ceiling,
		Floor:          l.Team.SalaryFloor,
		ContractSalary: contractSalary,
		DeadCap:        dead,
		Escrowed:       escrow,
		Available:      available,
		Spendable:      available.Sub(escrow),
		BelowFloor:     contractSalary.Add(dead).LessThan(l.Team.SalaryFloor),
	}
}

func escrowFor(a models.Auction, offset int) decimal.Decimal {
	if offset == 0 {
		return a.CurrentYear1Amount
	}
	if offset < 0 || !salary.ValidYears(a.CurrentOfferYears) || offset >= a.CurrentOfferYears {
		return decimal.Zero
	}
	return salary.Structure(a.CurrentOfferTotal, a.CurrentOfferYears).ForYear(offset)
}

// ExcludingAuction returns a copy that no longer counts auctionID's escrow.
// Used when a team raises its own leading bid.
func (l *Ledger) ExcludingAuction(auctionID uuid.UUID) *Ledger {
	out := *l
	out.Leading = nil
	for _, a := range l.Leading {
		if a.ID != auctionID {
			out.Leading = append(out.Leading, a)
		}
	}
	return &out
}

// Apply returns a copy with outgoing contracts removed and incoming added.
func (l *Ledger) Apply(outgoing []uuid.UUID, incoming []models.Contract) *Ledger {
	drop := make(map[uuid.UUID]bool, len(outgoing))
	for _, id := range outgoing {
		drop[id] = true
	}
	out := *l
	out.Contracts = nil
	for _, c := range l.Contracts {
		if !drop[c.ID] {
			out.Contracts = append(out.Contracts, c)
		}
	}
	out.Contracts = append(out.Contracts, incoming...)
	return &out
}

// Fits checks a new salary structure starting in startSeason against every
// season it pays. The returned Shortfall is meaningful only when ok is false.
func (l *Ledger) Fits(b salary.Breakdown, startSeason int) (Shortfall, bool) {
	for i := 0; i < salary.MaxYears; i++ {
		amount := b.ForYear(i)
		if amount.IsZero() {
			continue
		}
		season := startSeason + i
		s := l.Summary(season)
		if !s.CanAfford(amount) {
			return Shortfall{Season: season, Required: amount, Available: s.Spendable}, false
		}
	}
	return Shortfall{}, true
}

// Seasons lists every season from the current one through the last season
// any held contract pays.
func (l *Ledger) Seasons() []int {
	last := l.CurrentSeason
	for _, c := range l.Contracts {
		if c.LastSeason() > last {
			last = c.LastSeason()
		}
	}
	out := make([]int, 0, last-l.CurrentSeason+1)
	for s := l.CurrentSeason; s <= last; s++ {
		out = append(out, s)
	}
	return out
}

// HeldPlayers lists players under contract plus players whose auctions the
// team currently leads. A leading bid claims a roster spot until it settles.
func (l *Ledger) HeldPlayers() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(l.Contracts)+len(l.Leading))
	for _, c := range l.Contracts {
		out = append(out, c.PlayerID)
	}
	for _, a := range l.Leading {
		out = append(out, a.PlayerID)
	}
	return out
}
