package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/mcdev12/hoops/go/internal/config"
	"github.com/mcdev12/hoops/go/internal/store"
	"github.com/rs/zerolog/log"
)

// Infra holds the two Postgres handles: the pgx pool the engines commit
// through and a lib/pq handle for the outbox relay.
type Infra struct {
	Pool  *pgxpool.Pool
	Store *store.PgStore
	DB    *sql.DB
}

func setupDatabase(ctx context.Context, clock clockwork.Clock, cfg config.Config) (*Infra, error) {
	dsn := cfg.Database.DSN()
	poolCfg, err := cfg.Database.PoolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	st := store.NewPgStore(pool, clock, cfg.Retry)
	if err := st.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to open outbox connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		pool.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping outbox connection: %w", err)
	}

	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Database).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("connected to database")
	return &Infra{Pool: pool, Store: st, DB: db}, nil
}

func (i *Infra) Close() {
	_ = i.DB.Close()
	i.Pool.Close()
}
