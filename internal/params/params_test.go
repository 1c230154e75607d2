package params

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestPath(t *testing.T) {
	cases := []struct {
		ns, node, row string
		want          string
	}{
		{"/", "emotion_generator", "Eat", "/emotion_generator/Eat"},
		{"", "emotion_generator", "not_Eat", "/emotion_generator/not_Eat"},
		{"/robot/", "emotion_generator", "GoTo", "/robot/emotion_generator/GoTo"},
		{"robot", "gen", "x", "/robot/gen/x"},
		{"/", "emotion_generator", "x/../Eat", "/emotion_generator/x/../Eat"},
		{"/", "emotion_generator", "go/to", "/emotion_generator/go/to"},
		{"", "", "Eat", "/Eat"},
	}
	for _, c := range cases {
		if got := Path(c.ns, c.node, c.row); got != c.want {
			t.Errorf("Path(%q, %q, %q) = %q, want %q", c.ns, c.node, c.row, got, c.want)
		}
	}
}

func TestFactor(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{int64(2), 2, true},
		{int(-1), -1, true},
		{float64(0.25), 0.25, true},
		{float32(0.5), 0.5, true},
		{json.Number("0.75"), 0.75, true},
		{uint8(3), 3, true},
		{"0.5", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		got, ok := Factor(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("Factor(%#v) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestStaticLookup(t *testing.T) {
	s := NewStatic()
	s.Set("/g/Eat", map[string]any{"Joy": 0.2})

	got, err := s.Lookup(context.Background(), "/g/Eat")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got["Joy"] != 0.2 {
		t.Errorf("Joy = %v, want 0.2", got["Joy"])
	}

	// Returned map is a copy
	got["Joy"] = 1.0
	again, _ := s.Lookup(context.Background(), "/g/Eat")
	if again["Joy"] != 0.2 {
		t.Errorf("stored row mutated through returned map: %v", again["Joy"])
	}

	missing, err := s.Lookup(context.Background(), "/g/Sleep")
	if err != nil || missing != nil {
		t.Errorf("missing path = (%v, %v), want (nil, nil)", missing, err)
	}

	if n := s.CallCount("/g/Eat"); n != 2 {
		t.Errorf("CallCount = %d, want 2", n)
	}
}

func TestStaticLookupHonorsCancel(t *testing.T) {
	s := NewStatic()
	s.Set("/g/Eat", map[string]any{"Joy": 0.2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Lookup(ctx, "/g/Eat"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if n := s.CallCount("/g/Eat"); n != 0 {
		t.Errorf("CallCount = %d, want 0", n)
	}
}

// flakyProvider fails a fixed number of times before succeeding.
type flakyProvider struct {
	failures int
	calls    int
}

func (f *flakyProvider) Lookup(ctx context.Context, path string) (map[string]any, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("unavailable")
	}
	return map[string]any{"Joy": int64(1)}, nil
}

func TestBoundedRetries(t *testing.T) {
	fp := &flakyProvider{failures: 2}
	b := NewBounded(fp, BoundedOptions{Attempts: 3, Backoff: time.Millisecond})

	got, err := b.Lookup(context.Background(), "/g/Eat")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got["Joy"] != int64(1) {
		t.Errorf("Joy = %v, want 1", got["Joy"])
	}
	if fp.calls != 3 {
		t.Errorf("calls = %d, want 3", fp.calls)
	}
}

func TestBoundedGivesUp(t *testing.T) {
	fp := &flakyProvider{failures: 10}
	b := NewBounded(fp, BoundedOptions{Attempts: 2, Backoff: time.Millisecond})

	if _, err := b.Lookup(context.Background(), "/g/Eat"); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if fp.calls != 2 {
		t.Errorf("calls = %d, want 2", fp.calls)
	}
}

// slowProvider blocks until its context is done.
type slowProvider struct{}

func (slowProvider) Lookup(ctx context.Context, path string) (map[string]any, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestBoundedTimeout(t *testing.T) {
	b := NewBounded(slowProvider{}, BoundedOptions{Timeout: 10 * time.Millisecond, Attempts: 2, Backoff: time.Millisecond})

	start := time.Now()
	_, err := b.Lookup(context.Background(), "/g/Eat")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("lookup took %v, want bounded", elapsed)
	}
}
