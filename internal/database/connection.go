package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/langportal/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a row addressed by key does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a guarded write lost a race
	ErrConflict = errors.New("record was modified concurrently")
)

// Connect opens the configured database and makes sure the schema exists
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Type {
	case "postgres":
		db, err = sqlx.Connect("postgres", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	case "sqlite", "":
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err = sqlx.Connect("sqlite3", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers; this also keeps :memory: on one connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// isUniqueViolation reports whether err is a UNIQUE/PRIMARY KEY violation in
// either backend
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// WithTx runs fn inside a transaction, committing on success
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	statements := []struct {
		name  string
		query string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				telegram_chat_id BIGINT,
				notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
				notification_hour INTEGER NOT NULL DEFAULT 9,
				words_per_day INTEGER NOT NULL DEFAULT 10,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"words", `
			CREATE TABLE IF NOT EXISTS words (
				id TEXT PRIMARY KEY,
				text TEXT NOT NULL UNIQUE,
				translation TEXT NOT NULL,
				diacritics TEXT NOT NULL DEFAULT '',
				category TEXT NOT NULL DEFAULT '',
				difficulty INTEGER NOT NULL DEFAULT 1,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"study_sessions", `
			CREATE TABLE IF NOT EXISTS study_sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				session_data TEXT NOT NULL,
				status TEXT NOT NULL CHECK (status IN ('in_progress', 'completed', 'interrupted')),
				performance TEXT NOT NULL,
				completed_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"study_sessions user index", `
			CREATE INDEX IF NOT EXISTS idx_study_sessions_user_created
			ON study_sessions (user_id, created_at)`},
		{"word_progress", `
			CREATE TABLE IF NOT EXISTS word_progress (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				word_id TEXT NOT NULL,
				mastery_level DOUBLE PRECISION NOT NULL DEFAULT 0,
				times_reviewed INTEGER NOT NULL DEFAULT 0,
				review_history TEXT NOT NULL,
				next_review_date TIMESTAMP,
				version INTEGER NOT NULL DEFAULT 1,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				UNIQUE (user_id, word_id)
			)`},
		{"word_progress due index", `
			CREATE INDEX IF NOT EXISTS idx_word_progress_due
			ON word_progress (user_id, next_review_date)`},
	}

	for _, s := range statements {
		if _, err := db.Exec(s.query); err != nil {
			return fmt.Errorf("failed to create %s: %w", s.name, err)
		}
	}
	return nil
}
