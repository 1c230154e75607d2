package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is one persisted emotion snapshot. Payload is the JSON the
// publisher produced; the store does not interpret it.
type Snapshot struct {
	ID      int64
	Seq     int64
	TakenAt int64 // unix millis
	Payload json.RawMessage
}

// SaveSnapshot appends a snapshot to the history.
func (db *DB) SaveSnapshot(seq int64, takenAt time.Time, payload []byte) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO snapshots (seq, taken_at, payload) VALUES (?, ?, ?)
	`, seq, takenAt.UnixMilli(), string(payload))
	if err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	return res.LastInsertId()
}

// RecentSnapshots returns up to limit snapshots, newest first.
func (db *DB) RecentSnapshots(limit int) ([]Snapshot, error) {
	rows, err := db.Query(`
		SELECT id, seq, taken_at, payload FROM snapshots ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var payload string
		if err := rows.Scan(&s.ID, &s.Seq, &s.TakenAt, &payload); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.Payload = json.RawMessage(payload)
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneSnapshots keeps the newest keep snapshots and deletes the rest.
func (db *DB) PruneSnapshots(keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := db.Exec(`
		DELETE FROM snapshots WHERE id <= (
			SELECT id FROM snapshots ORDER BY id DESC LIMIT 1 OFFSET ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

// CountSnapshots returns the number of stored snapshots.
func (db *DB) CountSnapshots() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}
