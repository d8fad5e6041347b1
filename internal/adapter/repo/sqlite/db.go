package sqliterepo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS learning_profiles (
		profile_id TEXT PRIMARY KEY,
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS learning_records (
		profile_id TEXT NOT NULL REFERENCES learning_profiles(profile_id) ON DELETE CASCADE,
		action_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		value REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (profile_id, action_id)
	);`,
	`CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		name TEXT NOT NULL,
		actions TEXT NOT NULL DEFAULT '[]',
		version INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_plans_profile_updated ON plans(profile_id, updated_at);`,
}

// Open opens (creating if needed) the local planner database at path and
// ensures the schema exists. path may be ":memory:".
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := "file::memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		dsn = "file:" + path
	}
	dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps :memory: databases shared and writes serialized.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create sqlite schema: %w", err)
		}
	}
	return db, nil
}
