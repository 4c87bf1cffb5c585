package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stemsi/learnhub-backend/internal/config"
)

// NewPostgresPool creates and validates a PostgreSQL connection pool for the LMS mirror schema.
func NewPostgresPool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxDBConns
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "learnhub-backend"

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Int32("max_conns", cfg.MaxDBConns).
		Str("database", poolCfg.ConnConfig.Database).
		Msg("PostgreSQL connected")

	return pool, nil
}
