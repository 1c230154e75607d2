// Package params is the configuration lookup boundary for modulation rows.
// A Provider answers "which emotion factors are configured under this path";
// the engine never cares whether that is SQLite, a file or a test double.
package params

import (
	"context"
	"encoding/json"
	"path"
	"strings"
	"sync"
)

// Provider looks up the key/value entries stored under a path.
// A missing path returns (nil, nil), not an error.
type Provider interface {
	Lookup(ctx context.Context, path string) (map[string]any, error)
}

// Prefix returns the path under which all rows of one node live,
// e.g. Prefix("/", "emotion_generator") == "/emotion_generator".
func Prefix(namespace, node string) string {
	return path.Join("/", namespace, node)
}

// Path returns the full lookup path of a row. The row name is appended
// verbatim, so "x/../Eat" never resolves to Eat.
func Path(namespace, node, row string) string {
	return strings.TrimSuffix(Prefix(namespace, node), "/") + "/" + row
}

// Factor normalizes an integer or real encoded value to float64.
// Anything else is reported as malformed.
func Factor(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Static is an in-memory Provider. It records every lookup so tests can
// assert how often a path was fetched.
type Static struct {
	mu    sync.Mutex
	Rows  map[string]map[string]any
	Err   error
	Calls []string
}

// NewStatic creates a Static provider with no rows.
func NewStatic() *Static {
	return &Static{Rows: make(map[string]map[string]any)}
}

// Set stores the entries for a path, replacing any previous ones.
func (s *Static) Set(path string, entries map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Rows == nil {
		s.Rows = make(map[string]map[string]any)
	}
	s.Rows[path] = entries
}

// Lookup records the call and returns a copy of the stored entries.
func (s *Static) Lookup(ctx context.Context, path string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.Calls = append(s.Calls, path)
	if s.Err != nil {
		return nil, s.Err
	}
	row, ok := s.Rows[path]
	if !ok {
		return nil, nil
	}
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out, nil
}

// CallCount returns how many times path was looked up.
func (s *Static) CallCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		if c == path {
			n++
		}
	}
	return n
}
