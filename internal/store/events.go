package store

import (
	"fmt"
	"time"
)

// Event is one logged desire lifecycle notification.
type Event struct {
	ID         string
	Kind       string
	DesireType string
	ReceivedAt int64 // unix millis
}

// LogEvent records an ingested event.
func (db *DB) LogEvent(id, kind, desireType string, receivedAt time.Time) error {
	_, err := db.Exec(`
		INSERT INTO events (id, kind, desire_type, received_at) VALUES (?, ?, ?, ?)
	`, id, kind, desireType, receivedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// RecentEvents returns up to limit events, newest first. A non-empty
// desireType restricts the result to that desire.
func (db *DB) RecentEvents(desireType string, limit int) ([]Event, error) {
	query := `SELECT id, kind, desire_type, received_at FROM events`
	args := []any{}
	if desireType != "" {
		query += ` WHERE desire_type = ?`
		args = append(args, desireType)
	}
	query += ` ORDER BY received_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.DesireType, &e.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
