package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mcdev12/hoops/go/internal/models"
	"github.com/mcdev12/hoops/go/internal/sqlutil"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries implements Querier over a pool or a transaction.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

var _ Querier = (*Queries)(nil)

type scanner interface {
	Scan(dest ...any) error
}

// Leagues and teams

const getLeague = `SELECT id, name, commissioner_id, current_season, status, settings, created_at
FROM leagues WHERE id = $1`

func (q *Queries) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	var l models.League
	var settings []byte
	err := q.db.QueryRow(ctx, getLeague, id).Scan(
		&l.ID, &l.Name, &l.CommissionerID, &l.CurrentSeason, &l.Status, &settings, &l.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "league")
	}
	l.Settings = models.DefaultLeagueSettings()
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &l.Settings); err != nil {
			return nil, fmt.Errorf("failed to decode league settings: %w", err)
		}
	}
	return &l, nil
}

const fantasyTeamColumns = `id, league_id, owner_id, name, salary_cap, salary_floor, created_at`

func scanFantasyTeam(row scanner) (*models.FantasyTeam, error) {
	var t models.FantasyTeam
	if err := row.Scan(&t.ID, &t.LeagueID, &t.OwnerID, &t.Name, &t.SalaryCap, &t.SalaryFloor, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (q *Queries) GetFantasyTeam(ctx context.Context, id uuid.UUID) (*models.FantasyTeam, error) {
	t, err := scanFantasyTeam(q.db.QueryRow(ctx,
		`SELECT `+fantasyTeamColumns+` FROM fantasy_teams WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "fantasy team")
	}
	return t, nil
}

func (q *Queries) GetFantasyTeamByOwner(ctx context.Context, leagueID, ownerID uuid.UUID) (*models.FantasyTeam, error) {
	t, err := scanFantasyTeam(q.db.QueryRow(ctx,
		`SELECT `+fantasyTeamColumns+` FROM fantasy_teams WHERE league_id = $1 AND owner_id = $2`, leagueID, ownerID))
	if err != nil {
		return nil, notFound(err, "fantasy team")
	}
	return t, nil
}

// Players

const playerColumns = `id, external_id, full_name, position, nba_team, created_at`

func scanPlayer(row scanner) (*models.Player, error) {
	var p models.Player
	if err := row.Scan(&p.ID, &p.ExternalID, &p.FullName, &p.Position, &p.NBATeam, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (q *Queries) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	p, err := scanPlayer(q.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "player")
	}
	return p, nil
}

func (q *Queries) GetPlayers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Player, error) {
	out := make(map[uuid.UUID]models.Player, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.db.Query(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = ANY($1::uuid[])`, sqlutil.UUIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		out[p.ID] = *p
	}
	return out, rows.Err()
}

const getPlayerStatLine = `SELECT player_id, season, games_played, points, rebounds, assists, steals, blocks, turnovers, threes_made
FROM player_season_stats WHERE player_id = $1 AND season = $2`

func (q *Queries) GetPlayerStatLine(ctx context.Context, playerID uuid.UUID, season int) (*models.StatLine, error) {
	var s models.StatLine
	err := q.db.QueryRow(ctx, getPlayerStatLine, playerID, season).Scan(
		&s.PlayerID, &s.Season, &s.GamesPlayed, &s.Points, &s.Rebounds, &s.Assists,
		&s.Steals, &s.Blocks, &s.Turnovers, &s.ThreesMade,
	)
	if err != nil {
		return nil, notFound(err, "stat line")
	}
	return &s, nil
}

// Contracts

const contractColumns = `id, league_id, team_id, player_id, start_season, years, year1, year2, year3,
total_value, is_rookie, acquisition_type, created_at`

func scanContract(row scanner) (*models.Contract, error) {
	var c models.Contract
	err := row.Scan(&c.ID, &c.LeagueID, &c.TeamID, &c.PlayerID, &c.StartSeason, &c.Years,
		&c.Year1, &c.Year2, &c.Year3, &c.TotalValue, &c.IsRookie, &c.AcquisitionType, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (q *Queries) CreateContract(ctx context.Context, c models.Contract) error {
	_, err := q.db.Exec(ctx, `INSERT INTO contracts (`+contractColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.LeagueID, c.TeamID, c.PlayerID, c.StartSeason, c.Years,
		c.Year1, c.Year2, c.Year3, c.TotalValue, c.IsRookie, c.AcquisitionType, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}
	return nil
}

func (q *Queries) GetContractByPlayer(ctx context.Context, leagueID, playerID uuid.UUID) (*models.Contract, error) {
	c, err := scanContract(q.db.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE league_id = $1 AND player_id = $2 FOR UPDATE`,
		leagueID, playerID))
	if err != nil {
		return nil, notFound(err, "contract")
	}
	return c, nil
}

func (q *Queries) ListContractsByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Contract, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE team_id = $1 ORDER BY created_at, id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()
	var out []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteContract(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("contract %s: %w", id, ErrNotFound)
	}
	return nil
}

const reassignContracts = `UPDATE contracts c
SET team_id = m.team_id, acquisition_type = 'TRADE'
FROM unnest($1::uuid[], $2::uuid[]) AS m(contract_id, team_id)
WHERE c.id = m.contract_id`

func (q *Queries) ReassignContracts(ctx context.Context, moves []ContractMove) error {
	if len(moves) == 0 {
		return nil
	}
	contractIDs := make([]uuid.UUID, len(moves))
	teamIDs := make([]uuid.UUID, len(moves))
	for i, m := range moves {
		contractIDs[i] = m.ContractID
		teamIDs[i] = m.ToTeamID
	}
	tag, err := q.db.Exec(ctx, reassignContracts, sqlutil.UUIDs(contractIDs), sqlutil.UUIDs(teamIDs))
	if err != nil {
		return fmt.Errorf("failed to reassign contracts: %w", err)
	}
	if int(tag.RowsAffected()) != len(moves) {
		return fmt.Errorf("reassigned %d of %d contracts", tag.RowsAffected(), len(moves))
	}
	return nil
}

// Dead cap

func (q *Queries) CreateDeadCap(ctx context.Context, rows []models.DeadCap) error {
	for _, d := range rows {
		_, err := q.db.Exec(ctx, `INSERT INTO dead_cap
(id, league_id, team_id, player_id, contract_id, season, amount, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			d.ID, d.LeagueID, d.TeamID, d.PlayerID, d.ContractID, d.Season, d.Amount, d.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to book dead cap for season %d: %w", d.Season, err)
		}
	}
	return nil
}

func (q *Queries) ListDeadCapByTeam(ctx context.Context, teamID uuid.UUID) ([]models.DeadCap, error) {
	rows, err := q.db.Query(ctx, `SELECT id, league_id, team_id, player_id, contract_id, season, amount, created_at
FROM dead_cap WHERE team_id = $1 ORDER BY season, created_at`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dead cap: %w", err)
	}
	defer rows.Close()
	var out []models.DeadCap
	for rows.Next() {
		var d models.DeadCap
		if err := rows.Scan(&d.ID, &d.LeagueID, &d.TeamID, &d.PlayerID, &d.ContractID, &d.Season, &d.Amount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dead cap: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Outbox

func (q *Queries) CreateOutboxEvent(ctx context.Context, e models.OutboxEvent) error {
	_, err := q.db.Exec(ctx, `INSERT INTO market_outbox (id, league_id, event_type, payload, created_at)
VALUES ($1, $2, $3, $4, $5)`, e.ID, e.LeagueID, e.EventType, []byte(e.Payload), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sqlutil.ToSqlTime(&t)
}
