package storetest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/store"
)

type querier struct {
	st       *state
	failures map[string]error
}

var _ store.Querier = (*querier)(nil)

func (q *querier) fail(method string) error {
	return q.failures[method]
}

func (q *querier) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	if err := q.fail("GetLeague"); err != nil {
		return nil, err
	}
	l, ok := q.st.leagues[id]
	if !ok {
		return nil, notFound("league")
	}
	return &l, nil
}

func (q *querier) GetFantasyTeam(ctx context.Context, id uuid.UUID) (*models.FantasyTeam, error) {
	if err := q.fail("GetFantasyTeam"); err != nil {
		return nil, err
	}
	t, ok := q.st.teams[id]
	if !ok {
		return nil, notFound("fantasy team")
	}
	return &t, nil
}

func (q *querier) GetFantasyTeamByOwner(ctx context.Context, leagueID, ownerID uuid.UUID) (*models.FantasyTeam, error) {
	if err := q.fail("GetFantasyTeamByOwner"); err != nil {
		return nil, err
	}
	for _, t := range q.st.teams {
		if t.LeagueID == leagueID && t.OwnerID == ownerID {
			return &t, nil
		}
	}
	return nil, notFound("fantasy team")
}

func (q *querier) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	if err := q.fail("GetPlayer"); err != nil {
		return nil, err
	}
	p, ok := q.st.players[id]
	if !ok {
		return nil, notFound("player")
	}
	return &p, nil
}

func (q *querier) GetPlayers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Player, error) {
	if err := q.fail("GetPlayers"); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Player, len(ids))
	for _, id := range ids {
		if p, ok := q.st.players[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (q *querier) GetPlayerStatLine(ctx context.Context, playerID uuid.UUID, season int) (*models.StatLine, error) {
	if err := q.fail("GetPlayerStatLine"); err != nil {
		return nil, err
	}
	s, ok := q.st.stats[statKey{playerID, season}]
	if !ok {
		return nil, notFound("stat line")
	}
	return &s, nil
}

func (q *querier) CreateContract(ctx context.Context, c models.Contract) error {
	if err := q.fail("CreateContract"); err != nil {
		return err
	}
	for _, existing := range q.st.contracts {
		if existing.LeagueID == c.LeagueID && existing.PlayerID == c.PlayerID {
			return fmt.Errorf("player %s already under contract in league %s", c.PlayerID, c.LeagueID)
		}
	}
	q.st.contracts[c.ID] = c
	return nil
}

func (q *querier) GetContractByPlayer(ctx context.Context, leagueID, playerID uuid.UUID) (*models.Contract, error) {
	if err := q.fail("GetContractByPlayer"); err != nil {
		return nil, err
	}
	for _, c := range q.st.contracts {
		if c.LeagueID == leagueID && c.PlayerID == playerID {
			return &c, nil
		}
	}
	return nil, notFound("contract")
}

func (q *querier) ListContractsByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Contract, error) {
	if err := q.fail("ListContractsByTeam"); err != nil {
		return nil, err
	}
	var out []models.Contract
	for _, c := range q.st.contracts {
		if c.TeamID == teamID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (q *querier) DeleteContract(ctx context.Context, id uuid.UUID) error {
	if err := q.fail("DeleteContract"); err != nil {
		return err
	}
	if _, ok := q.st.contracts[id]; !ok {
		return notFound("contract")
	}
	delete(q.st.contracts, id)
	return nil
}

func (q *querier) ReassignContracts(ctx context.Context, moves []store.ContractMove) error {
	if err := q.fail("ReassignContracts"); err != nil {
		return err
	}
	for _, m := range moves {
		c, ok := q.st.contracts[m.ContractID]
		if !ok {
			return notFound("contract")
		}
		c.TeamID = m.ToTeamID
		c.AcquisitionType = models.AcquisitionTypeTrade
		q.st.contracts[m.ContractID] = c
	}
	return nil
}

func (q *querier) CreateDeadCap(ctx context.Context, rows []models.DeadCap) error {
	if err := q.fail("CreateDeadCap"); err != nil {
		return err
	}
	q.st.deadCap = append(q.st.deadCap, rows...)
	return nil
}

func (q *querier) ListDeadCapByTeam(ctx context.Context, teamID uuid.UUID) ([]models.DeadCap, error) {
	if err := q.fail("ListDeadCapByTeam"); err != nil {
		return nil, err
	}
	var out []models.DeadCap
	for _, d := range q.st.deadCap {
		if d.TeamID == teamID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (q *querier) CreateAuction(ctx context.Context, a models.Auction) error {
	if err := q.fail("CreateAuction"); err != nil {
		return err
	}
	if a.IsActive {
		for _, existing := range q.st.auctions {
			if existing.IsActive && existing.LeagueID == a.LeagueID && existing.PlayerID == a.PlayerID {
				return fmt.Errorf("duplicate active auction for player %s", a.PlayerID)
			}
		}
	}
	q.st.auctions[a.ID] = copyAuction(a)
	return nil
}

func (q *querier) GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	if err := q.fail("GetAuction"); err != nil {
		return nil, err
	}
	a, ok := q.st.auctions[id]
	if !ok {
		return nil, notFound("auction")
	}
	a = copyAuction(a)
	return &a, nil
}

func (q *querier) GetActiveAuctionForUpdate(ctx context.Context, leagueID, playerID uuid.UUID) (*models.Auction, error) {
	if err := q.fail("GetActiveAuctionForUpdate"); err != nil {
		return nil, err
	}
	for _, a := range q.st.auctions {
		if a.IsActive && a.LeagueID == leagueID && a.PlayerID == playerID {
			a = copyAuction(a)
			return &a, nil
		}
	}
	return nil, notFound("active auction")
}

func (q *querier) UpdateAuctionOffer(ctx context.Context, a models.Auction) error {
	if err := q.fail("UpdateAuctionOffer"); err != nil {
		return err
	}
	existing, ok := q.st.auctions[a.ID]
	if !ok || !existing.IsActive {
		return notFound("active auction")
	}
	existing.CurrentOfferTotal = a.CurrentOfferTotal
	existing.CurrentOfferYears = a.CurrentOfferYears
	existing.CurrentYear1Amount = a.CurrentYear1Amount
	existing.HighBidderTeamID = a.HighBidderTeamID
	existing.EndTime = a.EndTime
	existing.Extensions = a.Extensions
	q.st.auctions[a.ID] = copyAuction(existing)
	return nil
}

func (q *querier) DeactivateAuction(ctx context.Context, id uuid.UUID) error {
	if err := q.fail("DeactivateAuction"); err != nil {
		return err
	}
	a, ok := q.st.auctions[id]
	if !ok {
		return nil
	}
	a.IsActive = false
	q.st.auctions[id] = a
	return nil
}

func (q *querier) filterAuctions(keep func(models.Auction) bool) []models.Auction {
	var out []models.Auction
	for _, a := range q.st.auctions {
		if keep(a) {
			out = append(out, copyAuction(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.Before(out[j].EndTime) })
	return out
}

func (q *querier) ListActiveAuctions(ctx context.Context, leagueID uuid.UUID) ([]models.Auction, error) {
	if err := q.fail("ListActiveAuctions"); err != nil {
		return nil, err
	}
	return q.filterAuctions(func(a models.Auction) bool {
		return a.IsActive && a.LeagueID == leagueID
	}), nil
}

func (q *querier) ListExpiredAuctionsForUpdate(ctx context.Context, leagueID uuid.UUID, now time.Time) ([]models.Auction, error) {
	if err := q.fail("ListExpiredAuctionsForUpdate"); err != nil {
		return nil, err
	}
	return q.filterAuctions(func(a models.Auction) bool {
		return a.IsActive && a.LeagueID == leagueID && a.ExpiredAt(now)
	}), nil
}

func (q *querier) ListLeaguesWithExpiredAuctions(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	if err := q.fail("ListLeaguesWithExpiredAuctions"); err != nil {
		return nil, err
	}
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, a := range q.filterAuctions(func(a models.Auction) bool { return a.IsActive && a.ExpiredAt(now) }) {
		if !seen[a.LeagueID] {
			seen[a.LeagueID] = true
			out = append(out, a.LeagueID)
		}
	}
	return out, nil
}

func (q *querier) ListAuctionsLedBy(ctx context.Context, teamID uuid.UUID) ([]models.Auction, error) {
	if err := q.fail("ListAuctionsLedBy"); err != nil {
		return nil, err
	}
	return q.filterAuctions(func(a models.Auction) bool {
		return a.IsActive && a.LedBy(teamID)
	}), nil
}

func (q *querier) CreateBid(ctx context.Context, b models.Bid) error {
	if err := q.fail("CreateBid"); err != nil {
		return err
	}
	q.st.bids = append(q.st.bids, b)
	return nil
}

func (q *querier) ListBidsByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error) {
	if err := q.fail("ListBidsByAuction"); err != nil {
		return nil, err
	}
	var out []models.Bid
	for _, b := range q.st.bids {
		if b.AuctionID == auctionID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (q *querier) CreateTrade(ctx context.Context, t models.Trade) error {
	if err := q.fail("CreateTrade"); err != nil {
		return err
	}
	t = copyTrade(t)
	for i := range t.Offers {
		t.Offers[i].TradeID = t.ID
	}
	q.st.trades[t.ID] = t
	return nil
}

func (q *querier) GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	if err := q.fail("GetTrade"); err != nil {
		return nil, err
	}
	t, ok := q.st.trades[id]
	if !ok {
		return nil, notFound("trade")
	}
	t = copyTrade(t)
	return &t, nil
}

func (q *querier) GetTradeForUpdate(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	if err := q.fail("GetTradeForUpdate"); err != nil {
		return nil, err
	}
	return q.GetTrade(ctx, id)
}

func (q *querier) CreateTradeAcceptance(ctx context.Context, a models.TradeAcceptance) error {
	if err := q.fail("CreateTradeAcceptance"); err != nil {
		return err
	}
	t, ok := q.st.trades[a.TradeID]
	if !ok {
		return notFound("trade")
	}
	if t.HasSigned(a.UserID) {
		return fmt.Errorf("duplicate acceptance by %s", a.UserID)
	}
	t.Acceptances = append(t.Acceptances, a)
	q.st.trades[a.TradeID] = t
	return nil
}

func (q *querier) UpdateTradeStatus(ctx context.Context, id uuid.UUID, status models.TradeStatus, resolvedAt time.Time) error {
	if err := q.fail("UpdateTradeStatus"); err != nil {
		return err
	}
	t, ok := q.st.trades[id]
	if !ok || t.Status != models.TradeStatusPending {
		return notFound("pending trade")
	}
	t.Status = status
	t.ResolvedAt = &resolvedAt
	q.st.trades[id] = t
	return nil
}

func (q *querier) CreateOutboxEvent(ctx context.Context, e models.OutboxEvent) error {
	if err := q.fail("CreateOutboxEvent"); err != nil {
		return err
	}
	q.st.outbox = append(q.st.outbox, e)
	return nil
}
