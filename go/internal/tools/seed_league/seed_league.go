package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/hoops/go/internal/dbconfig"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/shopspring/decimal"
)

// LeagueFile describes a demo league and its owners.
type LeagueFile struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	CommissionerID uuid.UUID       `json:"commissioner_id"`
	CurrentSeason  int             `json:"current_season"`
	SalaryCap      decimal.Decimal `json:"salary_cap"`
	SalaryFloor    decimal.Decimal `json:"salary_floor"`
	Teams          []TeamRow       `json:"teams"`
}

type TeamRow struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Name    string    `json:"name"`
}

func main() {
	ctx := context.Background()

	path := "go/internal/assets/league.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		os.Exit(1)
	}
	var lf LeagueFile
	if err := json.Unmarshal(data, &lf); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal league: %v\n", err)
		os.Exit(1)
	}
	settings, err := json.Marshal(models.DefaultLeagueSettings())
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal settings: %v\n", err)
		os.Exit(1)
	}

	cfg, err := dbconfig.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid database config: %v\n", err)
		os.Exit(1)
	}
	poolCfg, err := cfg.PoolConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// league and teams land together or not at all
	var inserted int
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            INSERT INTO leagues (id, name, commissioner_id, current_season, status, settings)
            VALUES ($1,$2,$3,$4,$5,$6)
            ON CONFLICT (id) DO NOTHING
        `, lf.ID, lf.Name, lf.CommissionerID, lf.CurrentSeason, models.LeagueStatusActive, settings); err != nil {
			return fmt.Errorf("insert league: %w", err)
		}
		for _, t := range lf.Teams {
			tag, err := tx.Exec(ctx, `
                INSERT INTO fantasy_teams (id, league_id, owner_id, name, salary_cap, salary_floor)
                VALUES ($1,$2,$3,$4,$5,$6)
                ON CONFLICT (league_id, owner_id) DO NOTHING
            `, t.ID, lf.ID, t.OwnerID, t.Name, lf.SalaryCap, lf.SalaryFloor)
			if err != nil {
				return fmt.Errorf("insert team %s: %w", t.Name, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("League seed complete: %s, %d teams total, %d inserted\n", lf.Name, len(lf.Teams), inserted)
}
