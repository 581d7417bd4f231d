package outbox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	ch     chan *pq.Notification
	mu     sync.Mutex
	closed bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan *pq.Notification, 4)}
}

func (n *fakeNotifier) Notifications() <-chan *pq.Notification { return n.ch }
func (n *fakeNotifier) Ping() error                           { return nil }
func (n *fakeNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	return nil
}

// tableSource is an in-memory outbox table.
type tableSource struct {
	mu      sync.Mutex
	rows    []models.OutboxEvent
	fetches int
}

func (s *tableSource) insert(e models.OutboxEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, e)
}

func (s *tableSource) FetchUnsent(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	var out []models.OutboxEvent
	for _, e := range s.rows {
		if e.SentAt == nil && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *tableSource) FetchByID(ctx context.Context, id uuid.UUID) (models.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.rows {
		if e.ID == id && e.SentAt == nil {
			return e, nil
		}
	}
	return models.OutboxEvent{}, ErrEventNotFound
}

func (s *tableSource) MarkSent(ctx context.Context, at time.Time, ids ...uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		for i := range s.rows {
			if s.rows[i].ID == id {
				sent := at
				s.rows[i].SentAt = &sent
			}
		}
	}
	return nil
}

func (s *tableSource) CountUnsent(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.rows {
		if e.SentAt == nil {
			n++
		}
	}
	return n, nil
}

func (s *tableSource) Ping(ctx context.Context) error { return nil }

func (s *tableSource) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

type recordingPublisher struct {
	mu   sync.Mutex
	got  []uuid.UUID
	fail bool
}

func (p *recordingPublisher) Publish(ctx context.Context, e models.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("bus down")
	}
	p.got = append(p.got, e.ID)
	return nil
}

func (p *recordingPublisher) published() []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uuid.UUID(nil), p.got...)
}

func TestListener_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &tableSource{}
	pub := &recordingPublisher{}
	clock := clockwork.NewFakeClockAt(epoch)
	relay := NewRelay(src, pub, clock, RelayConfig{BatchSize: 10})
	notifier := newFakeNotifier()
	listener := NewListener(relay, notifier, clock, ListenerConfig{
		Channel:          NotifyChannel,
		FallbackInterval: time.Minute,
		PingInterval:     time.Hour,
	})

	backlog := event("AuctionOpened")
	src.insert(backlog)

	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	// startup drain plus both tickers
	require.NoError(t, clock.BlockUntilContext(ctx, 2))
	assert.Equal(t, []uuid.UUID{backlog.ID}, pub.published())
	assert.True(t, listener.Running())

	notified := event("BidPlaced")
	src.insert(notified)
	notifier.ch <- &pq.Notification{Channel: NotifyChannel, Extra: notified.ID.String()}
	assert.Eventually(t, func() bool { return len(pub.published()) == 2 }, time.Second, 5*time.Millisecond)

	// a row whose notification was lost is picked up by the fallback drain
	missed := event("TradeProposed")
	src.insert(missed)
	before := src.fetchCount()
	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool { return src.fetchCount() > before }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return len(pub.published()) == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
	assert.True(t, notifier.closed)
	assert.False(t, listener.Running())
	assert.Equal(t, []uuid.UUID{backlog.ID, notified.ID, missed.ID}, pub.published())
}

func TestHealthChecker(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(epoch)
	src := &tableSource{}
	pub := &recordingPublisher{}
	relay := NewRelay(src, pub, clock, RelayConfig{BatchSize: 10})
	listener := NewListener(relay, newFakeNotifier(), clock, DefaultListenerConfig())

	t.Run("stopped listener is unhealthy", func(t *testing.T) {
		status := NewHealthChecker(listener, src, nil, clock, time.Minute).Check(ctx)
		assert.False(t, status.Healthy)
		assert.Contains(t, status.Errors, "listener not active")
		assert.True(t, status.DatabaseConnected)
	})

	t.Run("stale backlog is unhealthy", func(t *testing.T) {
		listener.running.Store(true)
		defer listener.running.Store(false)

		src.insert(event("BidPlaced"))
		_, err := relay.Drain(ctx)
		require.NoError(t, err)
		pub.fail = true
		src.insert(event("BidPlaced"))

		checker := NewHealthChecker(listener, src, func() bool { return true }, clock, time.Minute)
		assert.True(t, checker.Check(ctx).Healthy)

		clock.Advance(2 * time.Minute)
		status := checker.Check(ctx)
		assert.False(t, status.Healthy)
		assert.Equal(t, 1, status.PendingEvents)

		rec := httptest.NewRecorder()
		checker.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/outbox", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"pending_events":1`)
	})
}
