package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

type migration struct {
	name string
	sql  string
}

// migrations run in order; each is applied at most once, tracked by name in
// schema_migrations. The unique index on content_fingerprint is what gives
// concurrent ingest its at-most-once-per-fingerprint guarantee.
var migrations = []migration{
	{
		name: "001_resources",
		sql: `
			CREATE TABLE IF NOT EXISTS resources (
				id UUID PRIMARY KEY,
				source TEXT NOT NULL,
				url TEXT NOT NULL,
				canonical_url TEXT NOT NULL DEFAULT '',
				title TEXT NOT NULL DEFAULT '',
				abstract TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL DEFAULT '',
				ai_summary TEXT NOT NULL DEFAULT '',
				authors JSONB NOT NULL DEFAULT '[]',
				citation_count INTEGER NOT NULL DEFAULT 0,
				content_fingerprint TEXT NOT NULL DEFAULT '',
				published_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_resources_url ON resources (url);
			CREATE INDEX IF NOT EXISTS idx_resources_canonical_url ON resources (canonical_url);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_resources_content_fingerprint
				ON resources (content_fingerprint) WHERE content_fingerprint <> '';
		`,
	},
	{
		name: "002_dedup_records",
		sql: `
			CREATE TABLE IF NOT EXISTS dedup_records (
				id UUID PRIMARY KEY,
				task_id TEXT NOT NULL DEFAULT '',
				resource_id TEXT NOT NULL DEFAULT '',
				duplicate_of_id TEXT NOT NULL DEFAULT '',
				method TEXT NOT NULL DEFAULT '',
				similarity DOUBLE PRECISION NOT NULL DEFAULT 0,
				decision TEXT NOT NULL,
				url_hash TEXT NOT NULL,
				title_hash TEXT NOT NULL DEFAULT '',
				content_fingerprint TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_dedup_records_fingerprint
				ON dedup_records (content_fingerprint) WHERE content_fingerprint <> '';
			CREATE INDEX IF NOT EXISTS idx_dedup_records_created_at ON dedup_records (created_at);
		`,
	},
}

// RunMigrations applies all pending migrations in order.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.name] {
			continue
		}

		logger.Info("applying migration", "name", m.name)

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for %s: %w", m.name, err)
		}

		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", m.name, err)
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.name, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.name, err)
		}
	}

	return nil
}
