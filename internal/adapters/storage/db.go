package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS client (
		id TEXT PRIMARY KEY,
		trainer_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		total_lessons INTEGER NOT NULL,
		weekly_days TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS lesson (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		trainer_id TEXT NOT NULL,
		planned_date TEXT NOT NULL,
		planned_time TEXT NOT NULL,
		planned_weekday TEXT NOT NULL,
		actual_date TEXT,
		actual_time TEXT,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		exercises TEXT NOT NULL DEFAULT '[]',
		difficulty_rating INTEGER NOT NULL DEFAULT 0,
		performance_rating INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT,
		FOREIGN KEY (client_id) REFERENCES client(id)
	);

	CREATE INDEX IF NOT EXISTS idx_lesson_client ON lesson(client_id);
	CREATE INDEX IF NOT EXISTS idx_lesson_planned_date ON lesson(planned_date);
	CREATE INDEX IF NOT EXISTS idx_lesson_status ON lesson(status);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
