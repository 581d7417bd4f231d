// Package storetest provides an in-memory store.Store for engine tests.
//
// Serializable transactions run one at a time against a private copy of the
// state; the copy replaces the shared state only when fn returns nil, so a
// failed transaction leaves no trace.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/store"
)

type statKey struct {
	playerID uuid.UUID
	season   int
}

type state struct {
	leagues   map[uuid.UUID]models.League
	teams     map[uuid.UUID]models.FantasyTeam
	players   map[uuid.UUID]models.Player
	stats     map[statKey]models.StatLine
	contracts map[uuid.UUID]models.Contract
	deadCap   []models.DeadCap
	auctions  map[uuid.UUID]models.Auction
	bids      []models.Bid
	trades    map[uuid.UUID]models.Trade
	outbox    []models.OutboxEvent
}

func newState() *state {
	return &state{
		leagues:   map[uuid.UUID]models.League{},
		teams:     map[uuid.UUID]models.FantasyTeam{},
		players:   map[uuid.UUID]models.Player{},
		stats:     map[statKey]models.StatLine{},
		contracts: map[uuid.UUID]models.Contract{},
		auctions:  map[uuid.UUID]models.Auction{},
		trades:    map[uuid.UUID]models.Trade{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.leagues {
		c.leagues[k] = v
	}
	for k, v := range s.teams {
		c.teams[k] = v
	}
	for k, v := range s.players {
		c.players[k] = v
	}
	for k, v := range s.stats {
		c.stats[k] = v
	}
	for k, v := range s.contracts {
		c.contracts[k] = v
	}
	for k, v := range s.auctions {
		c.auctions[k] = copyAuction(v)
	}
	for k, v := range s.trades {
		c.trades[k] = copyTrade(v)
	}
	c.deadCap = append([]models.DeadCap(nil), s.deadCap...)
	c.bids = append([]models.Bid(nil), s.bids...)
	c.outbox = append([]models.OutboxEvent(nil), s.outbox...)
	return c
}

func copyAuction(a models.Auction) models.Auction {
	if a.HighBidderTeamID != nil {
		id := *a.HighBidderTeamID
		a.HighBidderTeamID = &id
	}
	return a
}

func copyTrade(t models.Trade) models.Trade {
	t.Offers = append([]models.TradeOffer(nil), t.Offers...)
	t.Acceptances = append([]models.TradeAcceptance(nil), t.Acceptances...)
	return t
}

// Store is a store.Store backed by maps.
type Store struct {
	mu       sync.Mutex
	st       *state
	failures map[string]error
	commits  int
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState(), failures: map[string]error{}}
}

func (s *Store) Serializable(ctx context.Context, fn func(q store.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&querier{st: work, failures: s.failures}); err != nil {
		return err
	}
	s.st = work
	s.commits++
	return nil
}

func (s *Store) ReadOnly(ctx context.Context, fn func(q store.Querier) error) error {
	s.mu.Lock()
	snapshot := s.st.clone()
	failures := make(map[string]error, len(s.failures))
	for k, v := range s.failures {
		failures[k] = v
	}
	s.mu.Unlock()
	return fn(&querier{st: snapshot, failures: failures})
}

// FailOn makes every call to the named Querier method return err until
// cleared with a nil err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

// Commits counts successful Serializable calls.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Seeding

func (s *Store) AddLeague(l models.League) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.leagues[l.ID] = l
}

func (s *Store) AddTeam(t models.FantasyTeam) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.teams[t.ID] = t
}

func (s *Store) AddPlayer(p models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.players[p.ID] = p
}

func (s *Store) AddStatLine(line models.StatLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.stats[statKey{line.PlayerID, line.Season}] = line
}

func (s *Store) AddContract(c models.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.contracts[c.ID] = c
}

func (s *Store) AddAuction(a models.Auction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.auctions[a.ID] = copyAuction(a)
}

func (s *Store) AddDeadCap(d models.DeadCap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.deadCap = append(s.st.deadCap, d)
}

// Inspection

func (s *Store) Contracts() []models.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Contract, 0, len(s.st.contracts))
	for _, c := range s.st.contracts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) Auctions() []models.Auction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Auction, 0, len(s.st.auctions))
	for _, a := range s.st.auctions {
		out = append(out, copyAuction(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (s *Store) Bids() []models.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Bid(nil), s.st.bids...)
}

func (s *Store) DeadCap() []models.DeadCap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DeadCap(nil), s.st.deadCap...)
}

func (s *Store) Outbox() []models.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.OutboxEvent(nil), s.st.outbox...)
}

func (s *Store) Trade(id uuid.UUID) (models.Trade, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.st.trades[id]
	return copyTrade(t), ok
}

func (s *Store) TradeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.trades)
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, store.ErrNotFound)
}
