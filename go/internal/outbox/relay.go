package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Source is what the relay needs from the outbox table.
type Source interface {
	FetchUnsent(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	FetchByID(ctx context.Context, id uuid.UUID) (models.OutboxEvent, error)
	MarkSent(ctx context.Context, at time.Time, ids ...uuid.UUID) error
}

type RelayConfig struct {
	BatchSize  int           `yaml:"batch_size"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"` // multiplied by the attempt number
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		BatchSize:  100,
		MaxRetries: 3,
		RetryDelay: 200 * time.Millisecond,
	}
}

// Relay moves committed outbox rows onto the bus. Delivery is at least once:
// a row is marked sent only after Publish returns nil.
type Relay struct {
	src   Source
	pub   Publisher
	clock clockwork.Clock
	cfg   RelayConfig

	mu        sync.Mutex
	published uint64
	failed    uint64
	lastSent  time.Time
}

func NewRelay(src Source, pub Publisher, clock clockwork.Clock, cfg RelayConfig) *Relay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultRelayConfig().BatchSize
	}
	return &Relay{src: src, pub: pub, clock: clock, cfg: cfg}
}

// Drain publishes one batch of unsent events in commit order and returns how
// many were delivered. A failed event is left unsent for the next pass.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	pending, err := r.src.FetchUnsent(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unsent events: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	sent := make([]uuid.UUID, 0, len(pending))
	for _, event := range pending {
		if err := r.publishWithRetry(ctx, event); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error().
				Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Msg("failed to publish outbox event")
			continue
		}
		sent = append(sent, event.ID)
	}

	if err := r.src.MarkSent(ctx, r.clock.Now(), sent...); err != nil {
		return 0, fmt.Errorf("failed to mark events sent: %w", err)
	}
	r.record(len(sent), len(pending)-len(sent))

	log.Debug().
		Int("total", len(pending)).
		Int("published", len(sent)).
		Msg("drained outbox batch")
	return len(sent), nil
}

// Deliver publishes a single event named by a NOTIFY payload. Events that
// were already relayed are ignored.
func (r *Relay) Deliver(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid event id in notification: %w", err)
	}

	event, err := r.src.FetchByID(ctx, id)
	if errors.Is(err, ErrEventNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch outbox event: %w", err)
	}

	if err := r.publishWithRetry(ctx, event); err != nil {
		r.record(0, 1)
		return err
	}
	if err := r.src.MarkSent(ctx, r.clock.Now(), id); err != nil {
		return fmt.Errorf("failed to mark event sent: %w", err)
	}
	r.record(1, 0)
	return nil
}

func (r *Relay) publishWithRetry(ctx context.Context, event models.OutboxEvent) error {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 && r.cfg.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(r.cfg.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := r.pub.Publish(ctx, event); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("publish failed")
			continue
		}
		return nil
	}
	return fmt.Errorf("publish failed after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
}

func (r *Relay) record(sent, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published += uint64(sent)
	r.failed += uint64(failed)
	if sent > 0 {
		r.lastSent = r.clock.Now()
	}
}

// Stats reports lifetime delivery counts and the time of the last delivery.
func (r *Relay) Stats() (published, failed uint64, lastSent time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.published, r.failed, r.lastSent
}
