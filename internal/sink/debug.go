package sink

import (
	"context"

	"github.com/lazypower/affect/internal/engine"
	"github.com/rs/zerolog/log"
)

// Debug mirrors selected emotions and desire flags into the debug log.
type Debug struct {
	emotions map[string]bool
	desires  map[string]bool
}

// NewDebug watches the named emotions and desires.
func NewDebug(emotions, desires []string) *Debug {
	d := &Debug{
		emotions: make(map[string]bool, len(emotions)),
		desires:  make(map[string]bool, len(desires)),
	}
	for _, e := range emotions {
		d.emotions[e] = true
	}
	for _, ds := range desires {
		d.desires[ds] = true
	}
	return d
}

// Publish implements engine.Publisher.
func (d *Debug) Publish(ctx context.Context, snap engine.Snapshot) error {
	for _, e := range snap.Emotions {
		if d.emotions[e.Name] {
			log.Debug().Uint64("seq", snap.Seq).Str("emotion", e.Name).Float64("value", e.Value).Msg("emotion")
		}
	}
	for _, ds := range snap.Desires {
		if d.desires[ds.Name] {
			log.Debug().Uint64("seq", snap.Seq).Str("desire", ds.Name).
				Bool("active", ds.Active).Bool("exploited", ds.Exploited).Msg("desire")
		}
	}
	return nil
}
