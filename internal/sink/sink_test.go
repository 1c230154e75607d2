package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lazypower/affect/internal/engine"
	"github.com/lazypower/affect/internal/store"
)

func snapshot(seq uint64, joy float64) engine.Snapshot {
	return engine.Snapshot{
		Seq: seq,
		At:  time.UnixMilli(1_700_000_000_000 + int64(seq)*1000),
		Emotions: []engine.Intensity{
			{Name: "Anger", Value: 0},
			{Name: "Joy", Value: joy},
		},
		Desires: []engine.DesireStatus{
			{Name: "GoTo", Active: true, Exploited: false, Mode: engine.ModeActiveFrustrated},
		},
	}
}

func TestHubLatestAndFanOut(t *testing.T) {
	h := NewHub()

	if _, ok := h.Latest(); ok {
		t.Fatal("Latest before any publish reported ok")
	}

	ch, cancel := h.Subscribe(4)
	defer cancel()

	h.Publish(context.Background(), snapshot(1, 0.2))
	h.Publish(context.Background(), snapshot(2, 0.4))

	latest, ok := h.Latest()
	if !ok || latest.Seq != 2 {
		t.Errorf("Latest = %+v, want seq 2", latest)
	}
	for _, want := range []uint64{1, 2} {
		select {
		case s := <-ch:
			if s.Seq != want {
				t.Errorf("received seq %d, want %d", s.Seq, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("no snapshot %d delivered", want)
		}
	}
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := uint64(1); i <= 10; i++ {
			h.Publish(context.Background(), snapshot(i, 0.1))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(1)
	if h.Subscribers() != 1 {
		t.Fatalf("Subscribers = %d, want 1", h.Subscribers())
	}

	cancel()
	cancel() // idempotent

	if h.Subscribers() != 0 {
		t.Errorf("Subscribers = %d, want 0", h.Subscribers())
	}
	if _, open := <-ch; open {
		t.Error("channel still open after cancel")
	}
	h.Publish(context.Background(), snapshot(1, 0.1))
}

func TestStorePersists(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := NewStore(db, 0)
	if err := s.Publish(context.Background(), snapshot(7, 0.5)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got, err := db.RecentSnapshots(1)
	if err != nil || len(got) != 1 {
		t.Fatalf("RecentSnapshots = (%v, %v)", got, err)
	}
	if got[0].Seq != 7 {
		t.Errorf("Seq = %d, want 7", got[0].Seq)
	}

	var decoded engine.Snapshot
	if err := json.Unmarshal(got[0].Payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if v, _ := decoded.Value("Joy"); v != 0.5 {
		t.Errorf("Joy = %v, want 0.5", v)
	}
}

func TestStoreRetention(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := NewStore(db, 10)
	for i := 1; i <= pruneEvery; i++ {
		s.Publish(context.Background(), snapshot(uint64(i), 0.1))
	}

	n, _ := db.CountSnapshots()
	if n != 10 {
		t.Errorf("count = %d, want 10 after a prune sweep", n)
	}
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(ctx context.Context, snap engine.Snapshot) error {
	f.calls++
	return errors.New("offline")
}

func TestMultiContinuesPastErrors(t *testing.T) {
	bad := &failingPublisher{}
	hub := NewHub()
	m := Multi{bad, nil, hub, NewDebug([]string{"Joy"}, []string{"GoTo"})}

	err := m.Publish(context.Background(), snapshot(3, 0.3))
	if err == nil {
		t.Error("expected joined error")
	}
	if bad.calls != 1 {
		t.Errorf("failing sink calls = %d, want 1", bad.calls)
	}
	if latest, ok := hub.Latest(); !ok || latest.Seq != 3 {
		t.Errorf("hub did not receive snapshot after failing sink")
	}
}
