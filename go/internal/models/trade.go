package models

import (
	"time"

	"github.com/google/uuid"
)

type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "PENDING"
	TradeStatusAccepted  TradeStatus = "ACCEPTED"
	TradeStatusRejected  TradeStatus = "REJECTED"
	TradeStatusCancelled TradeStatus = "CANCELLED"
)

// Trade is a multi-party player swap proposal.
type Trade struct {
	ID          uuid.UUID         `json:"id"`
	LeagueID    uuid.UUID         `json:"league_id"`
	ProposerID  uuid.UUID         `json:"proposer_id"`
	Status      TradeStatus       `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
	Offers      []TradeOffer      `json:"offers"`
	Acceptances []TradeAcceptance `json:"acceptances"`
}

// TradeOffer moves one player from one manager to another.
type TradeOffer struct {
	ID         uuid.UUID `json:"id"`
	TradeID    uuid.UUID `json:"trade_id"`
	Ordinal    int       `json:"ordinal"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	PlayerID   uuid.UUID `json:"player_id"`
}

type TradeAcceptance struct {
	TradeID    uuid.UUID `json:"trade_id"`
	UserID     uuid.UUID `json:"user_id"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// Parties returns every distinct user referenced by an offer, in first-seen order.
func (t Trade) Parties() []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, o := range t.Offers {
		for _, u := range []uuid.UUID{o.FromUserID, o.ToUserID} {
			if !seen[u] {
				seen[u] = true
				out = append(out, u)
			}
		}
	}
	return out
}

// IsParty reports whether userID appears in any offer.
func (t Trade) IsParty(userID uuid.UUID) bool {
	for _, o := range t.Offers {
		if o.FromUserID == userID || o.ToUserID == userID {
			return true
		}
	}
	return false
}

// RequiredSigners is every party except the proposer.
func (t Trade) RequiredSigners() []uuid.UUID {
	var out []uuid.UUID
	for _, u := range t.Parties() {
		if u != t.ProposerID {
			out = append(out, u)
		}
	}
	return out
}

func (t Trade) HasSigned(userID uuid.UUID) bool {
	for _, a := range t.Acceptances {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// FullySigned reports whether every required signer has accepted.
func (t Trade) FullySigned() bool {
	for _, u := range t.RequiredSigners() {
		if !t.HasSigned(u) {
			return false
		}
	}
	return true
}

func (t Trade) IsTerminal() bool {
	return t.Status != TradeStatusPending
}
