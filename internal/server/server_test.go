package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lazypower/affect/internal/engine"
	"github.com/lazypower/affect/internal/sink"
	"github.com/lazypower/affect/internal/store"
)

type testEnv struct {
	srv *Server
	db  *store.DB
	eng *engine.Engine
	hub *sink.Hub
}

func testServer(t *testing.T) *testEnv {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hub := sink.NewHub()
	opts := engine.DefaultOptions()
	opts.Clock = engine.NewManualClock(time.Unix(1_700_000_000, 0))
	eng := engine.New(opts, db, hub)

	return &testEnv{
		srv: New(db, eng, hub, "test-version"),
		db:  db,
		eng: eng,
		hub: hub,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	env := testServer(t)

	w := env.do(t, "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
	if body["engine"] != false {
		t.Errorf("engine = %v, want false before Start", body["engine"])
	}
}

func TestUIFallback(t *testing.T) {
	env := testServer(t)

	SetUI(fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<html>affect</html>")},
		"app.js":     &fstest.MapFile{Data: []byte("console.log(1)")},
	})
	t.Cleanup(func() { SetUI(nil) })

	w := env.do(t, "GET", "/some/client/route", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "affect") {
		t.Errorf("fallback = %d %q", w.Code, w.Body.String())
	}

	w = env.do(t, "GET", "/app.js", "")
	if !strings.Contains(w.Body.String(), "console.log") {
		t.Errorf("app.js body = %q", w.Body.String())
	}
}

func TestStreamSendsSnapshots(t *testing.T) {
	env := testServer(t)
	ts := httptest.NewServer(env.srv)
	defer ts.Close()

	env.db.ReplaceParams("/emotion_generator/not_Eat", map[string]any{"Anger": 0.1})
	env.do(t, "POST", "/api/events", `{"kind":"DESIRE_ON","desire_type":"Eat"}`)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait for the subscription before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for env.hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	env.eng.Generate(context.Background())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap engine.Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read: %v", err)
	}
	if snap.Seq != 1 {
		t.Errorf("seq = %d, want 1", snap.Seq)
	}
	if v, _ := snap.Value("Anger"); v < 0.0999 || v > 0.1001 {
		t.Errorf("Anger = %v, want 0.1", v)
	}
}

func TestStreamUnavailableWithoutHub(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := New(db, engine.New(engine.DefaultOptions(), db, nil), nil, "v")
	req := httptest.NewRequest("GET", "/api/stream", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
