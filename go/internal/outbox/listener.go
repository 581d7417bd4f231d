package outbox

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// NotifyChannel is raised by the market_outbox insert trigger.
const NotifyChannel = "market_outbox_new"

type ListenerConfig struct {
	DatabaseURL      string        `yaml:"-"`
	Channel          string        `yaml:"channel"`
	FallbackInterval time.Duration `yaml:"fallback_interval"`
	PingInterval     time.Duration `yaml:"ping_interval"`
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		Channel:          NotifyChannel,
		FallbackInterval: 30 * time.Second,
		PingInterval:     90 * time.Second,
	}
}

// Notifier is the slice of *pq.Listener the loop uses.
type Notifier interface {
	Notifications() <-chan *pq.Notification
	Ping() error
	Close() error
}

type pqNotifier struct{ *pq.Listener }

func (n pqNotifier) Notifications() <-chan *pq.Notification { return n.Notify }

// ListenPostgres opens a dedicated LISTEN connection.
func ListenPostgres(cfg ListenerConfig) (Notifier, error) {
	l := pq.NewListener(cfg.DatabaseURL, 10*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Int("event", int(ev)).Msg("outbox listener connection event")
			}
		})
	if err := l.Listen(cfg.Channel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Channel, err)
	}
	log.Info().Str("channel", cfg.Channel).Msg("listening for outbox notifications")
	return pqNotifier{l}, nil
}

// Listener drives a Relay from Postgres notifications, with a periodic drain
// to catch anything committed while the connection was down.
type Listener struct {
	relay    *Relay
	notifier Notifier
	clock    clockwork.Clock
	cfg      ListenerConfig
	running  atomic.Bool
}

func NewListener(relay *Relay, notifier Notifier, clock clockwork.Clock, cfg ListenerConfig) *Listener {
	def := DefaultListenerConfig()
	if cfg.FallbackInterval <= 0 {
		cfg.FallbackInterval = def.FallbackInterval
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	return &Listener{relay: relay, notifier: notifier, clock: clock, cfg: cfg}
}

// Run blocks until ctx is cancelled, then closes the notifier.
func (l *Listener) Run(ctx context.Context) error {
	l.running.Store(true)
	defer l.running.Store(false)

	log.Info().
		Str("channel", l.cfg.Channel).
		Dur("fallback_interval", l.cfg.FallbackInterval).
		Msg("outbox relay started")

	// anything left over from before the restart
	l.drain(ctx)

	fallback := l.clock.NewTicker(l.cfg.FallbackInterval)
	ping := l.clock.NewTicker(l.cfg.PingInterval)
	defer fallback.Stop()
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("outbox relay shutting down")
			return l.notifier.Close()
		case note := <-l.notifier.Notifications():
			if note == nil {
				// reconnected: notifications may have been missed
				l.drain(ctx)
				continue
			}
			if err := l.relay.Deliver(ctx, note.Extra); err != nil {
				log.Error().Err(err).Str("payload", note.Extra).Msg("failed to relay notified event")
			}
		case <-fallback.Chan():
			l.drain(ctx)
		case <-ping.Chan():
			if err := l.notifier.Ping(); err != nil {
				log.Error().Err(err).Msg("outbox listener ping failed")
			}
		}
	}
}

func (l *Listener) Running() bool {
	return l.running.Load()
}

func (l *Listener) drain(ctx context.Context) {
	for {
		n, err := l.relay.Drain(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to drain outbox")
			return
		}
		if n < l.relay.cfg.BatchSize {
			return
		}
	}
}
