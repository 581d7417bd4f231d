package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
)

// DefaultSubjectPrefix roots every market subject.
const DefaultSubjectPrefix = "market.events"

// Publisher delivers one outbox event to the message bus.
type Publisher interface {
	Publish(ctx context.Context, event models.OutboxEvent) error
}

// Envelope is the wire form of an outbox event on the bus and on websockets.
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	LeagueID  string          `json:"leagueId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

func NewEnvelope(e models.OutboxEvent) Envelope {
	payload := e.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return Envelope{
		EventID:   e.ID.String(),
		EventType: e.EventType,
		LeagueID:  e.LeagueID.String(),
		Timestamp: e.CreatedAt.UTC(),
		Payload:   payload,
	}
}

// Subject is <prefix>.<league id>.<event type>, so consumers can filter a
// single league with <prefix>.<league id>.>.
func Subject(prefix string, leagueID uuid.UUID, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", prefix, leagueID, eventType)
}

// LeagueFromSubject parses the league id back out of a subject built by Subject.
func LeagueFromSubject(prefix, subject string) (uuid.UUID, error) {
	rest, ok := strings.CutPrefix(subject, prefix+".")
	if !ok {
		return uuid.Nil, fmt.Errorf("subject %q outside prefix %q", subject, prefix)
	}
	league, _, _ := strings.Cut(rest, ".")
	id, err := uuid.Parse(league)
	if err != nil {
		return uuid.Nil, fmt.Errorf("subject %q: invalid league id: %w", subject, err)
	}
	return id, nil
}
