package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// User profile (singleton row)
		`CREATE TABLE IF NOT EXISTS profile (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			gender TEXT,
			age INTEGER,
			height_inches INTEGER,
			weight_pounds REAL NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Workouts in the current shoe period.
		// Measurement columns are nullable; incomplete rows are rejected on load.
		`CREATE TABLE IF NOT EXISTS workouts (
			id INTEGER PRIMARY KEY,
			workout_date TEXT,
			distance_miles REAL,
			calories REAL,
			duration_minutes REAL,
			source TEXT NOT NULL DEFAULT 'manual',
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_date ON workouts(workout_date)`,

		// Archived shoe periods ("old sneaks")
		`CREATE TABLE IF NOT EXISTS shoe_periods (
			id INTEGER PRIMARY KEY,
			archived_at TEXT NOT NULL,
			total_miles REAL NOT NULL,
			workout_count INTEGER NOT NULL,
			synced_at TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_shoe_periods_synced ON shoe_periods(synced_at)`,

		`CREATE TABLE IF NOT EXISTS archived_workouts (
			id INTEGER PRIMARY KEY,
			period_id INTEGER NOT NULL,
			workout_date TEXT NOT NULL,
			distance_miles REAL NOT NULL,
			calories REAL NOT NULL,
			duration_minutes REAL NOT NULL,
			FOREIGN KEY (period_id) REFERENCES shoe_periods(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_archived_workouts_period ON archived_workouts(period_id)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
