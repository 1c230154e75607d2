package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "params: namespaced key/value configuration (modulation rows)",
		SQL: `
CREATE TABLE params (
    path       TEXT NOT NULL,
    key        TEXT NOT NULL,
    -- no declared type: integers stay INTEGER, reals stay REAL
    value      NOT NULL,
    updated_at INTEGER NOT NULL,

    PRIMARY KEY (path, key)
);
`,
	},
	{
		Version:     2,
		Description: "snapshots: published emotion snapshot history",
		SQL: `
CREATE TABLE snapshots (
    id         INTEGER PRIMARY KEY,
    seq        INTEGER NOT NULL,
    taken_at   INTEGER NOT NULL,
    payload    TEXT NOT NULL
);

CREATE INDEX idx_snapshots_taken_at ON snapshots(taken_at DESC);
`,
	},
	{
		Version:     3,
		Description: "events: desire lifecycle event log",
		SQL: `
CREATE TABLE events (
    id          TEXT PRIMARY KEY,
    kind        TEXT NOT NULL CHECK (kind IN ('DESIRE_ON', 'DESIRE_OFF', 'EXPLOIT_ON', 'EXPLOIT_OFF', 'INTENTION_ON', 'INTENTION_OFF')),
    desire_type TEXT NOT NULL,
    received_at INTEGER NOT NULL
);

CREATE INDEX idx_events_received_at ON events(received_at DESC);
CREATE INDEX idx_events_desire      ON events(desire_type);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
