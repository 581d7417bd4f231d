package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	events []models.OutboxEvent
	err    error
}

func (w *captureWriter) CreateOutboxEvent(ctx context.Context, e models.OutboxEvent) error {
	if w.err != nil {
		return w.err
	}
	w.events = append(w.events, e)
	return nil
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	leagueID := uuid.New()
	at := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

	t.Run("writes encoded payload", func(t *testing.T) {
		w := &captureWriter{}
		err := Record(ctx, w, leagueID, TypeBidPlaced, BidPlacedPayload{AuctionID: "a1", Years: 2}, at)

		require.NoError(t, err)
		require.Len(t, w.events, 1)
		assert.Equal(t, leagueID, w.events[0].LeagueID)
		assert.Equal(t, TypeBidPlaced, w.events[0].EventType)
		assert.Equal(t, at, w.events[0].CreatedAt)

		var got BidPlacedPayload
		require.NoError(t, json.Unmarshal(w.events[0].Payload, &got))
		assert.Equal(t, "a1", got.AuctionID)
		assert.Equal(t, 2, got.Years)
	})

	t.Run("unencodable payload is skipped", func(t *testing.T) {
		w := &captureWriter{}
		err := Record(ctx, w, leagueID, TypeBidPlaced, make(chan int), at)
		assert.NoError(t, err)
		assert.Empty(t, w.events)
	})

	t.Run("insert failure propagates", func(t *testing.T) {
		w := &captureWriter{err: errors.New("tx aborted")}
		err := Record(ctx, w, leagueID, TypeBidPlaced, BidPlacedPayload{}, at)
		assert.Error(t, err)
	})
}
