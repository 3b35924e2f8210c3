package db

import (
	"database/sql"
)

// MigrateUp creates the schema when missing. Idempotent; safe on every
// process start.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id           UUID PRIMARY KEY,
    title        TEXT NOT NULL,
    slug         TEXT NOT NULL UNIQUE,
    summary      TEXT NOT NULL,
    content      TEXT NOT NULL,
    hero_image   TEXT,
    tags         TEXT,
    author       TEXT NOT NULL,
    source       TEXT,
    source_url   TEXT NOT NULL UNIQUE,
    is_published BOOLEAN NOT NULL DEFAULT TRUE,
    date         TIMESTAMPTZ NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS generation_runs (
    id               UUID PRIMARY KEY,
    status           VARCHAR(20) NOT NULL,
    articles_created INTEGER NOT NULL DEFAULT 0,
    error_message    TEXT,
    error_details    TEXT,
    started_at       TIMESTAMPTZ NOT NULL,
    completed_at     TIMESTAMPTZ,
    duration_ms      BIGINT
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS scheduler_settings (
    id                          INTEGER PRIMARY KEY,
    generation_interval_minutes INTEGER NOT NULL,
    auto_generation_enabled     BOOLEAN NOT NULL,
    updated_at                  TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_generation_runs_started_at ON generation_runs(started_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_generation_runs_status ON generation_runs(status)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown rolls back the schema. Use with caution: this deletes all
// data in the affected tables.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS generation_runs`,
		`DROP TABLE IF EXISTS scheduler_settings`,
		`DROP TABLE IF EXISTS articles`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
