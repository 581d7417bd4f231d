package auction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/hoops/go/internal/store"
	"github.com/rs/zerolog/log"
)

// Sweeper settles overdue auctions on a fixed interval so a league nobody is
// looking at still closes its auctions. Reads keep settling lazily either way.
type Sweeper struct {
	app      *App
	store    store.Store
	clock    clockwork.Clock
	interval time.Duration
}

func NewSweeper(app *App, st store.Store, clock clockwork.Clock, interval time.Duration) *Sweeper {
	return &Sweeper{app: app, store: st, clock: clock, interval: interval}
}

// Run sweeps until ctx is cancelled. A non-positive interval disables it.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		log.Info().Msg("auction sweeper disabled")
		return
	}
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msg("auction sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("auction sweeper stopped")
			return
		case <-ticker.Chan():
			if _, err := s.SweepOnce(ctx); err != nil {
				log.Error().Err(err).Msg("auction sweep failed")
			}
		}
	}
}

// SweepOnce settles every league with overdue auctions and returns the number
// of auctions settled. One league failing does not stop the others.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	var leagues []uuid.UUID
	err := s.store.ReadOnly(ctx, func(q store.Querier) error {
		var err error
		leagues, err = q.ListLeaguesWithExpiredAuctions(ctx, s.clock.Now())
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list leagues with expired auctions: %w", err)
	}

	total := 0
	for _, id := range leagues {
		n, err := s.app.ProcessExpired(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("league_id", id.String()).Msg("failed to settle league auctions")
			continue
		}
		total += n
	}
	return total, nil
}
