// Package sink holds the destinations of published emotion snapshots.
package sink

import (
	"context"
	"sync"

	"github.com/lazypower/affect/internal/engine"
)

// Hub remembers the latest snapshot and fans every snapshot out to
// subscribers. A subscriber that is not keeping up misses snapshots
// rather than blocking the engine.
type Hub struct {
	mu     sync.RWMutex
	latest *engine.Snapshot
	subs   map[chan engine.Snapshot]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan engine.Snapshot]struct{})}
}

// Publish implements engine.Publisher.
func (h *Hub) Publish(ctx context.Context, snap engine.Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = &snap
	for ch := range h.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	return nil
}

// Latest returns the most recently published snapshot.
func (h *Hub) Latest() (engine.Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return engine.Snapshot{}, false
	}
	return *h.latest, true
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel func unregisters it and closes the channel.
func (h *Hub) Subscribe(buffer int) (<-chan engine.Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan engine.Snapshot, buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of registered subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
