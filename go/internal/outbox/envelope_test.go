package outbox

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectRoundTrip(t *testing.T) {
	league := uuid.New()
	subject := Subject(DefaultSubjectPrefix, league, "BidPlaced")
	assert.Equal(t, "market.events."+league.String()+".BidPlaced", subject)

	got, err := LeagueFromSubject(DefaultSubjectPrefix, subject)
	require.NoError(t, err)
	assert.Equal(t, league, got)

	_, err = LeagueFromSubject(DefaultSubjectPrefix, "draft.events.x.PickMade")
	assert.Error(t, err)
	_, err = LeagueFromSubject(DefaultSubjectPrefix, "market.events.nope.BidPlaced")
	assert.Error(t, err)
}

func TestNewEnvelope(t *testing.T) {
	e := event("AuctionWon")
	body, err := json.Marshal(NewEnvelope(e))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"eventId": "`+e.ID.String()+`",
		"eventType": "AuctionWon",
		"leagueId": "`+e.LeagueID.String()+`",
		"timestamp": "2025-10-21T19:00:00Z",
		"payload": {"auction_id": "a"}
	}`, string(body))

	e.Payload = nil
	assert.Equal(t, json.RawMessage("null"), NewEnvelope(e).Payload)
}
