package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct{ mock.Mock }

func (m *mockSource) FetchUnsent(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]models.OutboxEvent)
	return events, args.Error(1)
}

func (m *mockSource) FetchByID(ctx context.Context, id uuid.UUID) (models.OutboxEvent, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.OutboxEvent), args.Error(1)
}

func (m *mockSource) MarkSent(ctx context.Context, at time.Time, ids ...uuid.UUID) error {
	return m.Called(ctx, at, ids).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, event models.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

var epoch = time.Date(2025, 10, 21, 19, 0, 0, 0, time.UTC)

func event(eventType string) models.OutboxEvent {
	return models.OutboxEvent{
		ID:        uuid.New(),
		LeagueID:  uuid.New(),
		EventType: eventType,
		Payload:   json.RawMessage(`{"auction_id":"a"}`),
		CreatedAt: epoch,
	}
}

func newTestRelay(src Source, pub Publisher) (*Relay, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(epoch)
	return NewRelay(src, pub, clock, RelayConfig{BatchSize: 10, MaxRetries: 1}), clock
}

func TestRelay_Drain(t *testing.T) {
	ctx := context.Background()

	t.Run("marks only published events", func(t *testing.T) {
		src, pub := &mockSource{}, &mockPublisher{}
		relay, clock := newTestRelay(src, pub)
		ok, broken := event("BidPlaced"), event("AuctionWon")

		src.On("FetchUnsent", mock.Anything, 10).Return([]models.OutboxEvent{ok, broken}, nil)
		pub.On("Publish", mock.Anything, ok).Return(nil).Once()
		pub.On("Publish", mock.Anything, broken).Return(errors.New("bus down")).Twice()
		src.On("MarkSent", mock.Anything, clock.Now(), []uuid.UUID{ok.ID}).Return(nil).Once()

		n, err := relay.Drain(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, n)
		src.AssertExpectations(t)
		pub.AssertExpectations(t)

		published, failed, last := relay.Stats()
		assert.Equal(t, uint64(1), published)
		assert.Equal(t, uint64(1), failed)
		assert.Equal(t, clock.Now(), last)
	})

	t.Run("empty batch touches nothing", func(t *testing.T) {
		src, pub := &mockSource{}, &mockPublisher{}
		relay, _ := newTestRelay(src, pub)
		src.On("FetchUnsent", mock.Anything, 10).Return(nil, nil)

		n, err := relay.Drain(ctx)

		require.NoError(t, err)
		assert.Zero(t, n)
		src.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything, mock.Anything)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("fetch failure is returned", func(t *testing.T) {
		src, pub := &mockSource{}, &mockPublisher{}
		relay, _ := newTestRelay(src, pub)
		src.On("FetchUnsent", mock.Anything, 10).Return(nil, errors.New("connection reset"))

		_, err := relay.Drain(ctx)

		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("mark failure reports nothing delivered", func(t *testing.T) {
		src, pub := &mockSource{}, &mockPublisher{}
		relay, _ := newTestRelay(src, pub)
		e := event("TradeAccepted")
		src.On("FetchUnsent", mock.Anything, 10).Return([]models.OutboxEvent{e}, nil)
		pub.On("Publish", mock.Anything, e).Return(nil)
		src.On("MarkSent", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("read only"))

		n, err := relay.Drain(ctx)

		assert.Error(t, err)
		assert.Zero(t, n)
		published, _, _ := relay.Stats()
		assert.Zero(t, published)
	})
}

func TestRelay_Deliver(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and marks the notified event", func(t *testing.T) {
		src, pub := &mockSource{}, &mockPublisher{}
		relay, clock := newTestRelay(src, pub)
		e := event("PlayerReleased")
		src.On("FetchByID", mock.Anything, e.ID).Return(e, nil)
		pub.On("Publish", mock.Anything, e).Return(nil)
		src.On("MarkSent", mock.Anything, clock.Now(), []uuid.UUID{e.ID}).Return(nil)

		require.NoError(t, relay.Deliver(ctx, e.ID.String()))
		src.AssertExpectations(t)
	})

	t.Run("already relayed events are skipped", func(t *testing.T) {
		src, pub := &mockSource{}, &mockPublisher{}
		relay, _ := newTestRelay(src, pub)
		id := uuid.New()
		src.On("FetchByID", mock.Anything, id).Return(models.OutboxEvent{}, ErrEventNotFound)

		require.NoError(t, relay.Deliver(ctx, id.String()))
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("garbage payload", func(t *testing.T) {
		relay, _ := newTestRelay(&mockSource{}, &mockPublisher{})
		assert.Error(t, relay.Deliver(ctx, "not-a-uuid"))
	})

	t.Run("publish failure leaves the row unsent", func(t *testing.T) {
		src, pub := &mockSource{}, &mockPublisher{}
		relay, _ := newTestRelay(src, pub)
		e := event("BidPlaced")
		src.On("FetchByID", mock.Anything, e.ID).Return(e, nil)
		pub.On("Publish", mock.Anything, e).Return(errors.New("timeout"))

		err := relay.Deliver(ctx, e.ID.String())

		assert.ErrorContains(t, err, "after 2 attempts")
		src.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRelay_RetryWaitsOnClock(t *testing.T) {
	ctx := context.Background()
	src, pub := &mockSource{}, &mockPublisher{}
	clock := clockwork.NewFakeClockAt(epoch)
	relay := NewRelay(src, pub, clock, RelayConfig{BatchSize: 5, MaxRetries: 1, RetryDelay: time.Second})
	e := event("BidPlaced")

	src.On("FetchByID", mock.Anything, e.ID).Return(e, nil)
	pub.On("Publish", mock.Anything, e).Return(errors.New("blip")).Once()
	pub.On("Publish", mock.Anything, e).Return(nil).Once()
	src.On("MarkSent", mock.Anything, mock.Anything, []uuid.UUID{e.ID}).Return(nil)

	done := make(chan error, 1)
	go func() { done <- relay.Deliver(ctx, e.ID.String()) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("deliver did not finish after the retry delay elapsed")
	}
	pub.AssertNumberOfCalls(t, "Publish", 2)
}
