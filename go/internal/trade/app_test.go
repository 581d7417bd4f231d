package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/hoops/go/internal/apperr"
	"github.com/mcdev12/hoops/go/internal/events"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	st     *storetest.Store
	app    *App
	league models.League
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := storetest.New()
	return &fixture{
		st:     st,
		app:    NewApp(st, clockwork.NewFakeClockAt(storetest.Epoch)),
		league: st.SeedLeague(2025),
	}
}

// sign gives team a new player at position on a one-year contract.
func (f *fixture) sign(team models.FantasyTeam, position string, salary int64) models.Player {
	p := f.st.SeedPlayer(position)
	f.st.SeedContract(team, p, 2025, salary, 1)
	return p
}

func (f *fixture) ownerOf(t *testing.T, playerID uuid.UUID) uuid.UUID {
	t.Helper()
	for _, c := range f.st.Contracts() {
		if c.PlayerID == playerID {
			return c.TeamID
		}
	}
	t.Fatalf("player %s has no contract", playerID)
	return uuid.Nil
}

func offer(from, to models.FantasyTeam, player models.Player) OfferInput {
	return OfferInput{FromUserID: from.OwnerID, ToUserID: to.OwnerID, PlayerID: player.ID}
}

func requireCode(t *testing.T, err error, code apperr.Code) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %v", err)
	require.Equal(t, code, e.Code, e.Error())
	return e
}

func TestApp_ProposeTrade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.st.SeedTeam(f.league.ID, 100)
	b := f.st.SeedTeam(f.league.ID, 100)
	pa := f.sign(a, "G", 10)
	pb := f.sign(b, "G", 12)

	id, err := f.app.ProposeTrade(ctx, ProposeRequest{
		LeagueID:   f.league.ID,
		ProposerID: a.OwnerID,
		Offers:     []OfferInput{offer(a, b, pa), offer(b, a, pb)},
	})
	require.NoError(t, err)

	trade, ok := f.st.Trade(id)
	require.True(t, ok)
	assert.Equal(t, models.TradeStatusPending, trade.Status)
	assert.Equal(t, a.OwnerID, trade.ProposerID)
	require.Len(t, trade.Offers, 2)
	assert.Equal(t, 1, trade.Offers[1].Ordinal)
	assert.Equal(t, []uuid.UUID{b.OwnerID}, trade.RequiredSigners())

	// proposing moves nothing
	assert.Equal(t, a.ID, f.ownerOf(t, pa.ID))
	assert.Equal(t, []string{events.TypeTradeProposed}, outboxTypes(f.st))
}

func TestApp_ProposeTrade_Invalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.st.SeedTeam(f.league.ID, 100)
	b := f.st.SeedTeam(f.league.ID, 100)
	c := f.st.SeedTeam(f.league.ID, 100)
	pa := f.sign(a, "G", 10)
	pb := f.sign(b, "F", 10)
	free := f.st.SeedPlayer("C")
	outsider := models.FantasyTeam{OwnerID: uuid.New()}

	tests := []struct {
		name     string
		proposer models.FantasyTeam
		offers   []OfferInput
	}{
		{name: "no offers", proposer: a},
		{name: "trade with yourself", proposer: a, offers: []OfferInput{offer(a, a, pa)}},
		{name: "proposer not involved", proposer: c, offers: []OfferInput{offer(a, b, pa)}},
		{name: "manager without a team", proposer: a, offers: []OfferInput{offer(a, outsider, pa)}},
		{name: "player on another roster", proposer: a, offers: []OfferInput{offer(a, b, pb)}},
		{name: "free agent", proposer: a, offers: []OfferInput{offer(a, b, free)}},
		{name: "player offered twice", proposer: a, offers: []OfferInput{offer(a, b, pa), offer(a, c, pa)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.app.ProposeTrade(ctx, ProposeRequest{
				LeagueID:   f.league.ID,
				ProposerID: tt.proposer.OwnerID,
				Offers:     tt.offers,
			})
			requireCode(t, err, apperr.CodeTradeInvalid)
		})
	}

	assert.Zero(t, f.st.TradeCount())
	assert.Empty(t, f.st.Outbox())
}

func TestApp_ProposeTrade_CapSpace(t *testing.T) {
	ctx := context.Background()

	t.Run("receiving team over the cap", func(t *testing.T) {
		f := newFixture(t)
		a := f.st.SeedTeam(f.league.ID, 100)
		b := f.st.SeedTeam(f.league.ID, 20)
		f.sign(b, "F", 15)
		pa := f.sign(a, "G", 10)

		_, err := f.app.ProposeTrade(ctx, ProposeRequest{
			LeagueID: f.league.ID, ProposerID: a.OwnerID, Offers: []OfferInput{offer(a, b, pa)},
		})
		e := requireCode(t, err, apperr.CodeTradeInvalid)
		assert.Equal(t, b.ID.String(), e.Params["team_id"])
		assert.Equal(t, "2025", e.Params["season"])
		assert.Zero(t, f.st.TradeCount())
	})

	t.Run("multi-year salary is checked in later seasons", func(t *testing.T) {
		f := newFixture(t)
		a := f.st.SeedTeam(f.league.ID, 100)
		b := f.st.SeedTeam(f.league.ID, 20)
		// b is fine this season but committed next season
		next := f.st.SeedPlayer("F")
		f.st.SeedContract(b, next, 2026, 15, 1)
		pa := f.st.SeedPlayer("G")
		f.st.SeedContract(a, pa, 2025, 20, 2)

		_, err := f.app.ProposeTrade(ctx, ProposeRequest{
			LeagueID: f.league.ID, ProposerID: a.OwnerID, Offers: []OfferInput{offer(a, b, pa)},
		})
		e := requireCode(t, err, apperr.CodeTradeInvalid)
		assert.Equal(t, "2026", e.Params["season"])
	})

	t.Run("team already over the cap may shed salary", func(t *testing.T) {
		f := newFixture(t)
		a := f.st.SeedTeam(f.league.ID, 10)
		b := f.st.SeedTeam(f.league.ID, 100)
		f.sign(a, "F", 12)
		pa := f.sign(a, "G", 5)

		_, err := f.app.ProposeTrade(ctx, ProposeRequest{
			LeagueID: f.league.ID, ProposerID: a.OwnerID, Offers: []OfferInput{offer(a, b, pa)},
		})
		require.NoError(t, err)
	})

	t.Run("outgoing salary makes room", func(t *testing.T) {
		f := newFixture(t)
		a := f.st.SeedTeam(f.league.ID, 100)
		b := f.st.SeedTeam(f.league.ID, 20)
		pa := f.sign(a, "G", 15)
		pb := f.sign(b, "G", 15)

		_, err := f.app.ProposeTrade(ctx, ProposeRequest{
			LeagueID: f.league.ID, ProposerID: b.OwnerID, Offers: []OfferInput{offer(a, b, pa), offer(b, a, pb)},
		})
		require.NoError(t, err)
	})
}

func TestApp_AcceptTrade_TwoParty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.st.SeedTeam(f.league.ID, 100)
	b := f.st.SeedTeam(f.league.ID, 100)
	pa := f.sign(a, "G", 10)
	pb := f.sign(b, "F", 12)

	id, err := f.app.ProposeTrade(ctx, ProposeRequest{
		LeagueID: f.league.ID, ProposerID: a.OwnerID, Offers: []OfferInput{offer(a, b, pa), offer(b, a, pb)},
	})
	require.NoError(t, err)

	res, err := f.app.AcceptTrade(ctx, id, b.OwnerID)
	require.NoError(t, err)
	assert.True(t, res.Executed)
	assert.Equal(t, models.TradeStatusAccepted, res.Status)
	assert.Empty(t, res.AwaitingSignatures)

	assert.Equal(t, b.ID, f.ownerOf(t, pa.ID))
	assert.Equal(t, a.ID, f.ownerOf(t, pb.ID))
	for _, c := range f.st.Contracts() {
		assert.Equal(t, models.AcquisitionTypeTrade, c.AcquisitionType)
	}

	trade, _ := f.st.Trade(id)
	assert.Equal(t, models.TradeStatusAccepted, trade.Status)
	require.NotNil(t, trade.ResolvedAt)
	assert.Equal(t, []string{events.TypeTradeProposed, events.TypeTradeSigned, events.TypeTradeAccepted}, outboxTypes(f.st))

	_, err = f.app.AcceptTrade(ctx, id, b.OwnerID)
	requireCode(t, err, apperr.CodeTradeNotPending)
}

func TestApp_AcceptTrade_ThreeParty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.st.SeedTeam(f.league.ID, 100)
	b := f.st.SeedTeam(f.league.ID, 100)
	c := f.st.SeedTeam(f.league.ID, 100)
	pa := f.sign(a, "G", 5)
	pb := f.sign(b, "F", 5)
	pc := f.sign(c, "C", 5)

	id, err := f.app.ProposeTrade(ctx, ProposeRequest{
		LeagueID:   f.league.ID,
		ProposerID: a.OwnerID,
		Offers:     []OfferInput{offer(a, b, pa), offer(b, c, pb), offer(c, a, pc)},
	})
	require.NoError(t, err)

	_, err = f.app.AcceptTrade(ctx, id, a.OwnerID)
	requireCode(t, err, apperr.CodeProposerCannotAccept)

	_, err = f.app.AcceptTrade(ctx, id, uuid.New())
	requireCode(t, err, apperr.CodeNotAuthorized)

	res, err := f.app.AcceptTrade(ctx, id, b.OwnerID)
	require.NoError(t, err)
	assert.False(t, res.Executed)
	assert.Equal(t, models.TradeStatusPending, res.Status)
	assert.Equal(t, []uuid.UUID{c.OwnerID}, res.AwaitingSignatures)
	assert.Equal(t, a.ID, f.ownerOf(t, pa.ID), "nothing moves before every party signs")

	_, err = f.app.AcceptTrade(ctx, id, b.OwnerID)
	requireCode(t, err, apperr.CodeAlreadyAccepted)

	res, err = f.app.AcceptTrade(ctx, id, c.OwnerID)
	require.NoError(t, err)
	assert.True(t, res.Executed)

	assert.Equal(t, b.ID, f.ownerOf(t, pa.ID))
	assert.Equal(t, c.ID, f.ownerOf(t, pb.ID))
	assert.Equal(t, a.ID, f.ownerOf(t, pc.ID))
}

func TestApp_AcceptTrade_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.app.AcceptTrade(context.Background(), uuid.New(), uuid.New())
	requireCode(t, err, apperr.CodeTradeNotFound)
}

func TestApp_AcceptTrade_RosterFailureMovesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	league := f.league
	league.Settings.RosterSlots = models.RosterSlots{Guard: 1, Forward: 1, Center: 1}
	f.st.AddLeague(league)

	a := f.st.SeedTeam(league.ID, 100)
	b := f.st.SeedTeam(league.ID, 100)
	c := f.st.SeedTeam(league.ID, 100)
	aCenter := f.sign(a, "C", 5)
	bGuard := f.sign(b, "G", 5)
	f.sign(b, "C", 5)
	cForward := f.sign(c, "F", 5)

	// b would end up with two centers and no bench
	id, err := f.app.ProposeTrade(ctx, ProposeRequest{
		LeagueID:   league.ID,
		ProposerID: a.OwnerID,
		Offers:     []OfferInput{offer(a, b, aCenter), offer(b, c, bGuard), offer(c, a, cForward)},
	})
	require.NoError(t, err)

	_, err = f.app.AcceptTrade(ctx, id, c.OwnerID)
	require.NoError(t, err)

	_, err = f.app.AcceptTrade(ctx, id, b.OwnerID)
	e := requireCode(t, err, apperr.CodeRosterLimit)
	assert.Equal(t, b.ID.String(), e.Params["team_id"])

	assert.Equal(t, a.ID, f.ownerOf(t, aCenter.ID))
	assert.Equal(t, b.ID, f.ownerOf(t, bGuard.ID))
	assert.Equal(t, c.ID, f.ownerOf(t, cForward.ID))

	trade, _ := f.st.Trade(id)
	assert.Equal(t, models.TradeStatusPending, trade.Status)
	assert.False(t, trade.HasSigned(b.OwnerID), "failed signature is rolled back")
	assert.True(t, trade.HasSigned(c.OwnerID))
}

func TestApp_AcceptTrade_RevalidatesDrift(t *testing.T) {
	ctx := context.Background()

	t.Run("player changed hands", func(t *testing.T) {
		f := newFixture(t)
		a := f.st.SeedTeam(f.league.ID, 100)
		b := f.st.SeedTeam(f.league.ID, 100)
		c := f.st.SeedTeam(f.league.ID, 100)
		pa := f.st.SeedPlayer("G")
		contract := f.st.SeedContract(a, pa, 2025, 10, 1)

		id, err := f.app.ProposeTrade(ctx, ProposeRequest{
			LeagueID: f.league.ID, ProposerID: a.OwnerID, Offers: []OfferInput{offer(a, b, pa)},
		})
		require.NoError(t, err)

		contract.TeamID = c.ID
		f.st.AddContract(contract)

		_, err = f.app.AcceptTrade(ctx, id, b.OwnerID)
		requireCode(t, err, apperr.CodeTradeFailed)
		assert.Equal(t, c.ID, f.ownerOf(t, pa.ID))
	})

	t.Run("receiving team spent its cap", func(t *testing.T) {
		f := newFixture(t)
		a := f.st.SeedTeam(f.league.ID, 100)
		b := f.st.SeedTeam(f.league.ID, 20)
		pa := f.sign(a, "G", 10)

		id, err := f.app.ProposeTrade(ctx, ProposeRequest{
			LeagueID: f.league.ID, ProposerID: a.OwnerID, Offers: []OfferInput{offer(a, b, pa)},
		})
		require.NoError(t, err)

		f.sign(b, "F", 15)

		_, err = f.app.AcceptTrade(ctx, id, b.OwnerID)
		e := requireCode(t, err, apperr.CodeTradeFailed)
		assert.Equal(t, b.ID.String(), e.Params["team_id"])
		assert.Equal(t, a.ID, f.ownerOf(t, pa.ID))
	})

	t.Run("store failure during execution", func(t *testing.T) {
		f := newFixture(t)
		a := f.st.SeedTeam(f.league.ID, 100)
		b := f.st.SeedTeam(f.league.ID, 100)
		pa := f.sign(a, "G", 10)

		id, err := f.app.ProposeTrade(ctx, ProposeRequest{
			LeagueID: f.league.ID, ProposerID: a.OwnerID, Offers: []OfferInput{offer(a, b, pa)},
		})
		require.NoError(t, err)

		f.st.FailOn("UpdateTradeStatus", errors.New("connection reset"))
		_, err = f.app.AcceptTrade(ctx, id, b.OwnerID)
		requireCode(t, err, apperr.CodeTradeFailed)

		assert.Equal(t, a.ID, f.ownerOf(t, pa.ID))
		trade, _ := f.st.Trade(id)
		assert.Empty(t, trade.Acceptances)
	})
}

func TestApp_RejectTrade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.st.SeedTeam(f.league.ID, 100)
	b := f.st.SeedTeam(f.league.ID, 100)
	pa := f.sign(a, "G", 10)

	propose := func() uuid.UUID {
		id, err := f.app.ProposeTrade(ctx, ProposeRequest{
			LeagueID: f.league.ID, ProposerID: a.OwnerID, Offers: []OfferInput{offer(a, b, pa)},
		})
		require.NoError(t, err)
		return id
	}

	t.Run("proposer cancels", func(t *testing.T) {
		id := propose()
		res, err := f.app.RejectTrade(ctx, id, a.OwnerID)
		require.NoError(t, err)
		assert.Equal(t, models.TradeStatusCancelled, res.Status)

		_, err = f.app.RejectTrade(ctx, id, b.OwnerID)
		requireCode(t, err, apperr.CodeTradeNotPending)
		_, err = f.app.AcceptTrade(ctx, id, b.OwnerID)
		requireCode(t, err, apperr.CodeTradeNotPending)
	})

	t.Run("counterparty rejects", func(t *testing.T) {
		id := propose()
		res, err := f.app.RejectTrade(ctx, id, b.OwnerID)
		require.NoError(t, err)
		assert.Equal(t, models.TradeStatusRejected, res.Status)

		trade, _ := f.st.Trade(id)
		assert.Equal(t, models.TradeStatusRejected, trade.Status)
		assert.Equal(t, a.ID, f.ownerOf(t, pa.ID))
	})

	t.Run("outsider cannot reject", func(t *testing.T) {
		id := propose()
		_, err := f.app.RejectTrade(ctx, id, uuid.New())
		requireCode(t, err, apperr.CodeNotAuthorized)
	})

	t.Run("unknown trade", func(t *testing.T) {
		_, err := f.app.RejectTrade(ctx, uuid.New(), a.OwnerID)
		requireCode(t, err, apperr.CodeTradeNotFound)
	})
}

func TestApp_GetTrade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.st.SeedTeam(f.league.ID, 100)
	b := f.st.SeedTeam(f.league.ID, 100)
	pa := f.sign(a, "G", 10)

	id, err := f.app.ProposeTrade(ctx, ProposeRequest{
		LeagueID: f.league.ID, ProposerID: a.OwnerID, Offers: []OfferInput{offer(a, b, pa)},
	})
	require.NoError(t, err)

	trade, err := f.app.GetTrade(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, trade.ID)
	assert.Len(t, trade.Offers, 1)

	_, err = f.app.GetTrade(ctx, uuid.New())
	requireCode(t, err, apperr.CodeTradeNotFound)
}

func outboxTypes(st *storetest.Store) []string {
	var out []string
	for _, e := range st.Outbox() {
		out = append(out, e.EventType)
	}
	return out
}
