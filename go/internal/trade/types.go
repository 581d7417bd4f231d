package trade

import (
	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
)

// OfferInput moves one player between two managers.
type OfferInput struct {
	FromUserID uuid.UUID `json:"from_user_id" validate:"required"`
	ToUserID   uuid.UUID `json:"to_user_id" validate:"required"`
	PlayerID   uuid.UUID `json:"player_id" validate:"required"`
}

type ProposeRequest struct {
	LeagueID   uuid.UUID    `json:"league_id" validate:"required"`
	ProposerID uuid.UUID    `json:"proposer_id" validate:"required"`
	Offers     []OfferInput `json:"offers" validate:"required,min=1,dive"`
}

// StatusResult reports where a trade stands after a signature or rejection.
type StatusResult struct {
	TradeID  uuid.UUID          `json:"trade_id"`
	Status   models.TradeStatus `json:"status"`
	Executed bool               `json:"executed"`
	// AwaitingSignatures lists the parties who still have to accept.
	AwaitingSignatures []uuid.UUID `json:"awaiting_signatures,omitempty"`
}
