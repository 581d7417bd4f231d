package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/hoops/go/internal/dbconfig"
)

// Player is one row of the NBA snapshot, with per-season box score totals.
type Player struct {
	ExternalID string      `json:"external_id"`
	FullName   string      `json:"full_name"`
	Position   string      `json:"position"`
	NBATeam    string      `json:"nba_team"`
	Seasons    []SeasonRow `json:"seasons"`
}

type SeasonRow struct {
	Season      int `json:"season"`
	GamesPlayed int `json:"games_played"`
	Points      int `json:"points"`
	Rebounds    int `json:"rebounds"`
	Assists     int `json:"assists"`
	Steals      int `json:"steals"`
	Blocks      int `json:"blocks"`
	Turnovers   int `json:"turnovers"`
	ThreesMade  int `json:"threes_made"`
}

func main() {
	ctx := context.Background()

	path := "go/internal/assets/nba_players.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		os.Exit(1)
	}
	var players []Player
	if err := json.Unmarshal(data, &players); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal players: %v\n", err)
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
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	total, inserted, skipped, errs, statRows := len(players), 0, 0, 0, 0
	for _, p := range players {
		// external_id is the natural key; re-running keeps the original uuid
		var (
			id      uuid.UUID
			created bool
		)
		err := pool.QueryRow(ctx, `
            INSERT INTO players (id, external_id, full_name, position, nba_team)
            VALUES ($1,$2,$3,$4,$5)
            ON CONFLICT (external_id) DO UPDATE SET nba_team = EXCLUDED.nba_team
            RETURNING id, (xmax = 0)
        `, uuid.New(), p.ExternalID, p.FullName, p.Position, p.NBATeam).Scan(&id, &created)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting player %s: %v\n", p.ExternalID, err)
			errs++
			continue
		}

		if created {
			inserted++
		} else {
			skipped++
		}

		for _, s := range p.Seasons {
			_, err := pool.Exec(ctx, `
                INSERT INTO player_season_stats (
                  player_id, season, games_played, points, rebounds,
                  assists, steals, blocks, turnovers, threes_made
                ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
                ON CONFLICT (player_id, season) DO UPDATE SET
                  games_played = EXCLUDED.games_played, points = EXCLUDED.points,
                  rebounds = EXCLUDED.rebounds, assists = EXCLUDED.assists,
                  steals = EXCLUDED.steals, blocks = EXCLUDED.blocks,
                  turnovers = EXCLUDED.turnovers, threes_made = EXCLUDED.threes_made
            `, id, s.Season, s.GamesPlayed, s.Points, s.Rebounds,
				s.Assists, s.Steals, s.Blocks, s.Turnovers, s.ThreesMade)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error upserting %s season %d: %v\n", p.ExternalID, s.Season, err)
				errs++
				continue
			}
			statRows++
		}
	}
	fmt.Printf(
		"Players seed: total=%d new=%d existing=%d stat_rows=%d errors=%d\n",
		total, inserted, skipped, statRows, errs,
	)
}
