package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lazypower/affect/internal/engine"
	"github.com/lazypower/affect/internal/params"
	"github.com/rs/zerolog/log"
)

func queryLimit(r *http.Request, def int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func (s *Server) handlePostEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind       string `json:"kind"`
		DesireType string `json:"desire_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	kind, err := engine.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ev := engine.NewEvent(kind, req.DesireType)
	if err := s.engine.Ingest(r.Context(), ev); err != nil {
		if errors.Is(err, engine.ErrUnknownKind) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Best effort: the event has already been applied.
	if err := s.db.LogEvent(ev.ID, string(ev.Kind), ev.DesireType, ev.ReceivedAt); err != nil {
		log.Warn().Err(err).Str("event", ev.ID).Msg("log event")
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     ev.ID,
		"status": "accepted",
	})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.db.RecentEvents(r.URL.Query().Get("desire"), queryLimit(r, 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type eventJSON struct {
		ID         string `json:"id"`
		Kind       string `json:"kind"`
		DesireType string `json:"desire_type"`
		ReceivedAt int64  `json:"received_at"`
	}
	out := make([]eventJSON, len(events))
	for i, e := range events {
		out[i] = eventJSON{e.ID, e.Kind, e.DesireType, e.ReceivedAt}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(out),
		"events": out,
	})
}

func (s *Server) handleEmotions(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"seq":        snap.Seq,
		"at":         snap.At,
		"decay_rate": s.engine.DecayRate(),
		"emotions":   snap.Emotions,
	})
}

func (s *Server) handleDesires(w http.ResponseWriter, r *http.Request) {
	desires := s.engine.Desires()
	if desires == nil {
		desires = []engine.DesireStatus{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(desires),
		"desires": desires,
	})
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.db.RecentSnapshots(queryLimit(r, 20))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type snapshotJSON struct {
		ID       int64           `json:"id"`
		Seq      int64           `json:"seq"`
		TakenAt  int64           `json:"taken_at"`
		Snapshot json.RawMessage `json:"snapshot"`
	}
	out := make([]snapshotJSON, len(snaps))
	for i, sn := range snaps {
		out[i] = snapshotJSON{sn.ID, sn.Seq, sn.TakenAt, sn.Payload}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(out),
		"snapshots": out,
	})
}

func (s *Server) handleListModulation(w http.ResponseWriter, r *http.Request) {
	loader := s.engine.Loader()
	paths, err := s.db.ListParamPaths(loader.Prefix())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rows := make([]string, 0, len(paths))
	prefix := strings.TrimSuffix(loader.Prefix(), "/") + "/"
	for _, p := range paths {
		rows = append(rows, strings.TrimPrefix(p, prefix))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"prefix": loader.Prefix(),
		"rows":   rows,
	})
}

func (s *Server) handleGetModulation(w http.ResponseWriter, r *http.Request) {
	row := chi.URLParam(r, "row")
	path := s.engine.Loader().Path(row)

	entries, err := s.db.Lookup(r.Context(), path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusNotFound, "row not configured: "+row)
		return
	}

	factors := make(map[string]float64, len(entries))
	var skipped []string
	for emotion, v := range entries {
		f, ok := params.Factor(v)
		if !ok {
			skipped = append(skipped, emotion)
			continue
		}
		factors[emotion] = f
	}
	sort.Strings(skipped)

	resp := map[string]any{
		"row":     row,
		"path":    path,
		"factors": factors,
	}
	if len(skipped) > 0 {
		resp["malformed"] = skipped
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePutModulation(w http.ResponseWriter, r *http.Request) {
	row := chi.URLParam(r, "row")

	var req struct {
		Factors map[string]float64 `json:"factors"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Factors) == 0 {
		writeError(w, http.StatusBadRequest, "factors required")
		return
	}

	values := make(map[string]any, len(req.Factors))
	for emotion, f := range req.Factors {
		if emotion == "" {
			writeError(w, http.StatusBadRequest, "empty emotion name")
			return
		}
		values[emotion] = f
	}

	path := s.engine.Loader().Path(row)
	if err := s.db.ReplaceParams(path, values); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Rows already loaded by the engine are not reloaded.
	writeJSON(w, http.StatusOK, map[string]any{
		"row":     row,
		"path":    path,
		"factors": req.Factors,
	})
}

func (s *Server) handleDeleteModulation(w http.ResponseWriter, r *http.Request) {
	row := chi.URLParam(r, "row")
	path := s.engine.Loader().Path(row)

	n, err := s.db.DeleteParams(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n == 0 {
		writeError(w, http.StatusNotFound, "row not configured: "+row)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"row":     row,
		"deleted": n,
	})
}
