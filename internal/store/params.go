package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Lookup returns the key/value entries stored under path, or nil if there
// are none. Values come back as int64 or float64 exactly as they were
// written. DB satisfies params.Provider.
func (db *DB) Lookup(ctx context.Context, path string) (map[string]any, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT key, value FROM params WHERE path = ?
	`, path)
	if err != nil {
		return nil, fmt.Errorf("lookup params %s: %w", path, err)
	}
	defer rows.Close()

	var out map[string]any
	for rows.Next() {
		var key string
		var value any
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan param: %w", err)
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[key] = value
	}
	return out, rows.Err()
}

// SetParam inserts or updates one entry.
func (db *DB) SetParam(path, key string, value any) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO params (path, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(path, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, path, key, value, now)
	if err != nil {
		return fmt.Errorf("set param %s/%s: %w", path, key, err)
	}
	return nil
}

// ReplaceParams swaps all entries under path for values in one transaction.
func (db *DB) ReplaceParams(path string, values map[string]any) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace params: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM params WHERE path = ?`, path); err != nil {
		return fmt.Errorf("clear params %s: %w", path, err)
	}

	now := time.Now().UnixMilli()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := tx.Exec(`
			INSERT INTO params (path, key, value, updated_at) VALUES (?, ?, ?, ?)
		`, path, k, values[k], now); err != nil {
			return fmt.Errorf("insert param %s/%s: %w", path, k, err)
		}
	}
	return tx.Commit()
}

// DeleteParams removes every entry under path and returns how many went.
func (db *DB) DeleteParams(path string) (int64, error) {
	res, err := db.Exec(`DELETE FROM params WHERE path = ?`, path)
	if err != nil {
		return 0, fmt.Errorf("delete params %s: %w", path, err)
	}
	return res.RowsAffected()
}

// ListParamPaths returns the distinct paths under prefix, sorted. Row names
// may contain '/'.
func (db *DB) ListParamPaths(prefix string) ([]string, error) {
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	rows, err := db.Query(`SELECT DISTINCT path FROM params ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list param paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan param path: %w", err)
		}
		if !strings.HasPrefix(p, prefix) || len(p) == len(prefix) {
			continue
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
