package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Writer is the outbox insert a committing transaction exposes.
type Writer interface {
	CreateOutboxEvent(ctx context.Context, e models.OutboxEvent) error
}

// Record writes an event into the outbox inside the caller's transaction so
// it becomes visible exactly when the change it describes commits.
func Record(ctx context.Context, w Writer, leagueID uuid.UUID, eventType string, payload any, at time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		// encoding failures never fail the commit
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to encode outbox payload, skipping")
		return nil
	}
	return w.CreateOutboxEvent(ctx, models.OutboxEvent{
		ID:        uuid.New(),
		LeagueID:  leagueID,
		EventType: eventType,
		Payload:   body,
		CreatedAt: at,
	})
}
