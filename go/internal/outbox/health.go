package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

// Backlog is the optional part of a Source the health check reads.
type Backlog interface {
	CountUnsent(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Healthy           bool      `json:"healthy"`
	EventsPublished   uint64    `json:"events_published"`
	EventsFailed      uint64    `json:"events_failed"`
	LastSent          time.Time `json:"last_sent"`
	PendingEvents     int       `json:"pending_events"`
	DatabaseConnected bool      `json:"database_connected"`
	BusConnected      bool      `json:"bus_connected"`
	ListenerActive    bool      `json:"listener_active"`
	Errors            []string  `json:"errors"`
}

// HealthChecker reports whether the relay is keeping up.
type HealthChecker struct {
	listener  *Listener
	backlog   Backlog
	bus       func() bool
	clock     clockwork.Clock
	threshold time.Duration // how long a non-empty backlog may sit unsent
	highWater int
}

func NewHealthChecker(listener *Listener, backlog Backlog, bus func() bool, clock clockwork.Clock, threshold time.Duration) *HealthChecker {
	return &HealthChecker{
		listener:  listener,
		backlog:   backlog,
		bus:       bus,
		clock:     clock,
		threshold: threshold,
		highWater: 1000,
	}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Healthy: true, Errors: []string{}}
	fail := func(msg string) {
		status.Healthy = false
		status.Errors = append(status.Errors, msg)
	}

	status.EventsPublished, status.EventsFailed, status.LastSent = h.listener.relay.Stats()

	status.ListenerActive = h.listener.Running()
	if !status.ListenerActive {
		fail("listener not active")
	}

	if h.bus != nil {
		status.BusConnected = h.bus()
		if !status.BusConnected {
			fail("NATS disconnected")
		}
	}

	if err := h.backlog.Ping(ctx); err != nil {
		fail(fmt.Sprintf("database ping failed: %v", err))
		return status
	}
	status.DatabaseConnected = true

	pending, err := h.backlog.CountUnsent(ctx)
	if err != nil {
		status.Errors = append(status.Errors, fmt.Sprintf("failed to count pending events: %v", err))
		return status
	}
	status.PendingEvents = pending
	if pending > h.highWater {
		status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", pending))
	}
	if pending > 0 && !status.LastSent.IsZero() {
		if idle := h.clock.Since(status.LastSent); idle > h.threshold {
			fail(fmt.Sprintf("no events published for %s", idle))
		}
	}
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)
	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
