package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/hoops/go/internal/auction"
	"github.com/mcdev12/hoops/go/internal/config"
	"github.com/mcdev12/hoops/go/internal/gateway"
	"github.com/mcdev12/hoops/go/internal/outbox"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Workers are the background loops that run beside the RPC server.
type Workers struct {
	Hub          *gateway.Hub
	OutboxHealth *outbox.HealthChecker
	nc           *nats.Conn
	wg           sync.WaitGroup
}

func setupWorkers(ctx context.Context, infra *Infra, services *Services, clock clockwork.Clock, cfg config.Config) (*Workers, error) {
	w := &Workers{}

	sweeper := auction.NewSweeper(services.auctionApp, infra.Store, clock, cfg.Market.SweepInterval)
	w.goRun("auction sweeper", func() error { sweeper.Run(ctx); return nil })

	if !cfg.Events.Enabled {
		log.Info().Msg("market events disabled, outbox relay and websocket gateway not started")
		return w, nil
	}

	nc, err := outbox.Connect(cfg.Events.JetStream)
	if err != nil {
		return nil, err
	}
	w.nc = nc

	publisher, err := outbox.NewJetStreamPublisher(ctx, nc, cfg.Events.JetStream)
	if err != nil {
		nc.Close()
		return nil, err
	}
	notifier, err := outbox.ListenPostgres(cfg.Events.Listener)
	if err != nil {
		nc.Close()
		return nil, err
	}
	repo := outbox.NewRepository(infra.DB)
	relay := outbox.NewRelay(repo, publisher, clock, cfg.Events.Relay)
	listener := outbox.NewListener(relay, notifier, clock, cfg.Events.Listener)
	w.OutboxHealth = outbox.NewHealthChecker(listener, repo, publisher.Connected, clock, 5*cfg.Events.Listener.FallbackInterval)
	w.goRun("outbox relay", func() error { return listener.Run(ctx) })

	w.Hub = gateway.NewHub(cfg.Events.Hub)
	consumer, err := gateway.NewConsumer(w.Hub, nc, cfg.Events.Consumer)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create gateway consumer: %w", err)
	}
	w.goRun("websocket hub", func() error { w.Hub.Run(ctx); return nil })
	w.goRun("gateway consumer", func() error { return consumer.Run(ctx) })

	return w, nil
}

func (w *Workers) goRun(name string, fn func() error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := fn(); err != nil {
			log.Error().Err(err).Str("worker", name).Msg("background worker stopped")
		}
	}()
}

// Wait blocks until every worker has returned after ctx cancellation.
func (w *Workers) Wait() {
	w.wg.Wait()
}

func (w *Workers) Close() {
	if w.nc != nil {
		w.nc.Close()
	}
}
