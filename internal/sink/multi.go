package sink

import (
	"context"
	"errors"

	"github.com/lazypower/affect/internal/engine"
)

// Multi publishes to every sink in order. One failing sink does not stop
// the others; their errors are joined.
type Multi []engine.Publisher

// Publish implements engine.Publisher.
func (m Multi) Publish(ctx context.Context, snap engine.Snapshot) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
