package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/mcdev12/tierdraft/go/internal/dbconfig"
	"github.com/rs/zerolog/log"
)

// setupDatabase opens the pgx pool used by the division store and the database/sql
// handle used by the outbox and job tables.
func setupDatabase(ctx context.Context, dbConfig dbconfig.Config) (*pgxpool.Pool, *sql.DB, error) {
	poolConfig, err := dbConfig.PoolConfig()
	if err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	if err := database.PingContext(ctx); err != nil {
		pool.Close()
		_ = database.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("user", dbConfig.User).
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("connected to database")
	return pool, database, nil
}
