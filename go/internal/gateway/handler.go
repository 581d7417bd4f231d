package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/rpcutil"
	"github.com/rs/zerolog/log"
)

// ServeLeague upgrades GET /ws/market?league_id=... to a websocket that
// receives every event for that league. The caller is identified by the
// X-User-Id header or a user_id query parameter, since browsers cannot set
// headers on a websocket handshake.
func (h *Hub) ServeLeague(w http.ResponseWriter, r *http.Request) {
	leagueID, err := uuid.Parse(r.URL.Query().Get("league_id"))
	if err != nil {
		http.Error(w, "league_id is required", http.StatusBadRequest)
		return
	}

	if r.Header.Get(rpcutil.UserIDHeader) == "" {
		if q := r.URL.Query().Get("user_id"); q != "" {
			r.Header.Set(rpcutil.UserIDHeader, q)
		}
	}
	userID, err := rpcutil.CallerID(r.Header)
	if err != nil {
		http.Error(w, "user id is required", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		id:       uuid.NewString(),
		userID:   userID,
		leagueID: leagueID,
		conn:     conn,
		send:     make(chan []byte, h.cfg.SendBuffer),
		hub:      h,
	}
	h.register(c)
	go c.writePump()
	go c.readPump()

	log.Info().
		Str("client_id", c.id).
		Str("user_id", userID.String()).
		Str("league_id", leagueID.String()).
		Msg("websocket client joined")
}

func (h *Hub) ServeStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.Stats())
}

func (h *Hub) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/market", h.ServeLeague)
	mux.HandleFunc("GET /ws/stats", h.ServeStats)
}
