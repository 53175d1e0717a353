// Package db opens the sqlite flight archive.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Register driver
)

// DB wraps the sql.DB connection.
type DB struct {
	*sql.DB
}

// Init opens the database and runs migrations.
func Init(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	d := &DB{db}
	// Single connection: pragmas are per-connection and writes are serialized anyway
	db.SetMaxOpenConns(1)

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return d, nil
}

// PruneFlights removes archived flights created before the cutoff. Their
// events go with them. Returns the number of flights removed.
func (d *DB) PruneFlights(olderThan time.Duration) (int64, error) {
	deadline := time.Now().Add(-olderThan).UTC()
	res, err := d.Exec("DELETE FROM flights WHERE created_at < ?", deadline)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS flights (
			id TEXT PRIMARY KEY,
			rocket_name TEXT,
			motor_used TEXT,
			flyer TEXT,
			flight_date TEXT,
			location TEXT,
			flight_computer TEXT,
			record_count INTEGER,
			duration REAL,
			apogee_time REAL,
			apogee_altitude REAL,
			max_velocity REAL,
			landing_time REAL,
			launch_cell TEXT,
			output_path TEXT,
			phases TEXT,
			telemetry BLOB,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_flights_launch_cell ON flights(launch_cell);`,
		`CREATE TABLE IF NOT EXISTS flight_events (
			flight_id TEXT NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			type TEXT,
			title TEXT,
			summary TEXT,
			time REAL,
			altitude REAL,
			velocity REAL,
			lat REAL,
			lon REAL,
			recorded_at DATETIME,
			PRIMARY KEY (flight_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS persistent_state (
			key TEXT PRIMARY KEY,
			value TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, q := range queries {
		if _, err := d.Exec(q); err != nil {
			return fmt.Errorf("exec error: %w query: %s", err, q)
		}
	}

	// Migration: archives created before phase entries were stored
	var colCount int
	err := d.QueryRow("SELECT count(*) FROM pragma_table_info('flights') WHERE name='phases'").Scan(&colCount)
	if err == nil && colCount == 0 {
		if _, err := d.Exec("ALTER TABLE flights ADD COLUMN phases TEXT"); err != nil {
			return fmt.Errorf("failed to add phases column: %w", err)
		}
	}

	return nil
}
