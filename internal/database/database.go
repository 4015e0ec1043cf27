package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool using the provided DSN.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the submissions table if needed. The archive holds one
// row per completed session with the exported document as JSONB.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const stmt = `
CREATE TABLE IF NOT EXISTS submissions (
	session_id TEXT PRIMARY KEY,
	respondent_email TEXT NOT NULL,
	bucket TEXT NOT NULL,
	session_folder TEXT NOT NULL,
	document JSONB NOT NULL,
	delivery_status TEXT NOT NULL,
	delivery_error TEXT,
	submitted_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_email ON submissions(respondent_email);
CREATE INDEX IF NOT EXISTS idx_submissions_delivery ON submissions(delivery_status);`
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
