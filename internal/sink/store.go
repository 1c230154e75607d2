package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lazypower/affect/internal/engine"
	"github.com/lazypower/affect/internal/store"
	"github.com/rs/zerolog/log"
)

// pruneEvery is how many writes pass between two retention sweeps.
const pruneEvery = 60

// Store persists snapshots into the database history.
type Store struct {
	db     *store.DB
	keep   int
	writes int
}

// NewStore creates a Store that keeps the newest keep snapshots (0 keeps all).
func NewStore(db *store.DB, keep int) *Store {
	return &Store{db: db, keep: keep}
}

// Publish implements engine.Publisher. Snapshots arrive from the engine's
// single dispatcher, so writes are never concurrent.
func (s *Store) Publish(ctx context.Context, snap engine.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := s.db.SaveSnapshot(int64(snap.Seq), snap.At, payload); err != nil {
		return err
	}

	s.writes++
	if s.keep > 0 && s.writes%pruneEvery == 0 {
		if n, err := s.db.PruneSnapshots(s.keep); err != nil {
			log.Warn().Err(err).Msg("prune snapshots")
		} else if n > 0 {
			log.Debug().Int64("removed", n).Msg("pruned snapshot history")
		}
	}
	return nil
}
