// Package db owns the PostgreSQL connection pool and the schema bootstrap.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linksmith/linksmith/internal/config"
)

// Schema is the persisted layout: links with a unique slug index, and
// visit_events owned by a link with cascade delete. The unique constraint is
// the authoritative guard for slug uniqueness; application code treats a
// violation of links_slug_unique as a conflict, never a pre-check.
const Schema = `
CREATE TABLE IF NOT EXISTS links (
	id          UUID PRIMARY KEY,
	original_url TEXT NOT NULL,
	slug        TEXT NOT NULL,
	owner_tag   TEXT NOT NULL DEFAULT '',
	visit_count BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT links_slug_unique UNIQUE (slug)
);

CREATE TABLE IF NOT EXISTS visit_events (
	id         UUID PRIMARY KEY,
	link_id    UUID NOT NULL REFERENCES links(id) ON DELETE CASCADE,
	visited_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS visit_events_link_id_visited_at_idx
	ON visit_events (link_id, visited_at);
`

// Connect creates a pgx connection pool, verifies it, and applies the schema.
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Migrate applies the schema. Idempotent; safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
