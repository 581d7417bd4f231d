package rosterfit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/hoops/go/internal/models"
)

// PlayerReader loads players in bulk.
type PlayerReader interface {
	GetPlayers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Player, error)
}

// Positions resolves the position string of each player, in order.
func Positions(ctx context.Context, r PlayerReader, playerIDs []uuid.UUID) ([]string, error) {
	players, err := r.GetPlayers(ctx, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	out := make([]string, len(playerIDs))
	for i, id := range playerIDs {
		p, ok := players[id]
		if !ok {
			return nil, fmt.Errorf("player %s not found", id)
		}
		out[i] = p.Position
	}
	return out, nil
}

// Check loads the players and runs Feasible.
func Check(ctx context.Context, r PlayerReader, playerIDs []uuid.UUID, slots models.RosterSlots) (Result, error) {
	positions, err := Positions(ctx, r, playerIDs)
	if err != nil {
		return Result{}, err
	}
	return Feasible(positions, slots), nil
}
