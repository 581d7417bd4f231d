// Package gateway fans market events out to websocket clients watching a league.
package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type HubConfig struct {
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	MaxMessageSize int64         `yaml:"max_message_size"`
	SendBuffer     int           `yaml:"send_buffer"`
	AllowedOrigins []string      `yaml:"allowed_origins"` // empty allows any origin
}

func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 1024,
		SendBuffer:     256,
	}
}

type broadcast struct {
	leagueID uuid.UUID
	data     []byte
}

// Hub tracks websocket clients per league.
type Hub struct {
	cfg      HubConfig
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	leagues map[uuid.UUID]map[*client]struct{}

	broadcastCh chan broadcast
}

func NewHub(cfg HubConfig) *Hub {
	h := &Hub{
		cfg:         cfg,
		leagues:     make(map[uuid.UUID]map[*client]struct{}),
		broadcastCh: make(chan broadcast, 1000),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range h.cfg.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// Run delivers queued broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.broadcastCh:
			h.deliver(msg)
		}
	}
}

// Broadcast queues data for every client of a league. It never blocks; when
// the queue is full the message is dropped.
func (h *Hub) Broadcast(leagueID uuid.UUID, data []byte) bool {
	select {
	case h.broadcastCh <- broadcast{leagueID: leagueID, data: data}:
		return true
	default:
		log.Warn().Str("league_id", leagueID.String()).Msg("broadcast queue full, dropping message")
		return false
	}
}

func (h *Hub) deliver(msg broadcast) {
	var slow []*client
	// sends happen under the read lock so unregister cannot close a channel mid-send
	h.mu.RLock()
	for c := range h.leagues[msg.leagueID] {
		select {
		case c.send <- msg.data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warn().Str("client_id", c.id).Msg("client send buffer full, disconnecting")
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.leagues[c.leagueID] == nil {
		h.leagues[c.leagueID] = make(map[*client]struct{})
	}
	h.leagues[c.leagueID][c] = struct{}{}
}

// unregister is idempotent; the first call closes the client's send channel.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.leagues[c.leagueID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.leagues, c.leagueID)
	}
	log.Debug().Str("client_id", c.id).Str("league_id", c.leagueID.String()).Msg("websocket client left")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for league, clients := range h.leagues {
		for c := range clients {
			close(c.send)
		}
		delete(h.leagues, league)
	}
}

// Stats is a point-in-time view of connected clients.
type Stats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveLeagues    int            `json:"active_leagues"`
	ByLeague         map[string]int `json:"by_league"`
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := Stats{ByLeague: make(map[string]int, len(h.leagues))}
	for league, clients := range h.leagues {
		s.TotalConnections += len(clients)
		s.ByLeague[league.String()] = len(clients)
	}
	s.ActiveLeagues = len(h.leagues)
	return s
}
