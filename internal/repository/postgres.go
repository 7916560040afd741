package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxConns        = 10
	minConns        = 2
	maxConnLifetime = 10 * time.Minute
	maxConnIdleTime = 5 * time.Minute
)

func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	config.MaxConns = maxConns
	config.MinConns = minConns
	config.MaxConnLifetime = maxConnLifetime
	config.MaxConnIdleTime = maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the tables the server needs if they do not exist yet,
// the same way the database itself is created on first boot.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			subtitle TEXT,
			body TEXT NOT NULL,
			is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
			last_event_at BIGINT NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL,
			user_id TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_updated_at ON posts (updated_at)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			post_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments (post_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_updated_at ON comments (updated_at)`,
		`CREATE TABLE IF NOT EXISTS tombstones (
			entity_kind TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			deleted_at BIGINT NOT NULL,
			PRIMARY KEY (entity_kind, entity_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	return nil
}
