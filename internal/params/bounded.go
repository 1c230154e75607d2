package params

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// BoundedOptions configures a Bounded provider.
type BoundedOptions struct {
	Timeout  time.Duration // per attempt
	Attempts int
	Rate     float64 // lookups per second
	Burst    int
	Backoff  time.Duration // base delay, grows linearly per attempt
}

// DefaultBoundedOptions returns limits suited to a local config store.
func DefaultBoundedOptions() BoundedOptions {
	return BoundedOptions{
		Timeout:  250 * time.Millisecond,
		Attempts: 3,
		Rate:     50,
		Burst:    10,
		Backoff:  50 * time.Millisecond,
	}
}

// Bounded wraps a Provider so a lookup can never hang: every attempt runs
// under a timeout, attempts are rate limited, and the number of retries is capped.
type Bounded struct {
	p        Provider
	lim      *rate.Limiter
	timeout  time.Duration
	attempts int
	backoff  time.Duration
}

// NewBounded wraps p. Zero or negative option values fall back to defaults.
func NewBounded(p Provider, opts BoundedOptions) *Bounded {
	def := DefaultBoundedOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Attempts <= 0 {
		opts.Attempts = def.Attempts
	}
	if opts.Rate <= 0 {
		opts.Rate = def.Rate
	}
	if opts.Burst <= 0 {
		opts.Burst = def.Burst
	}
	if opts.Backoff < 0 {
		opts.Backoff = 0
	}
	return &Bounded{
		p:        p,
		lim:      rate.NewLimiter(rate.Limit(opts.Rate), opts.Burst),
		timeout:  opts.Timeout,
		attempts: opts.Attempts,
		backoff:  opts.Backoff,
	}
}

// Lookup calls the wrapped provider, retrying failed attempts.
func (b *Bounded) Lookup(ctx context.Context, path string) (map[string]any, error) {
	var lastErr error
	for attempt := 1; attempt <= b.attempts; attempt++ {
		if err := b.lim.Wait(ctx); err != nil {
			return nil, fmt.Errorf("lookup %s: %w", path, err)
		}

		actx, cancel := context.WithTimeout(ctx, b.timeout)
		entries, err := b.p.Lookup(actx, path)
		cancel()
		if err == nil {
			return entries, nil
		}
		lastErr = err

		log.Debug().Err(err).Str("path", path).Int("attempt", attempt).Msg("param lookup failed")
		if attempt == b.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lookup %s: %w", path, ctx.Err())
		case <-time.After(b.backoff * time.Duration(attempt)):
		}
	}
	return nil, fmt.Errorf("lookup %s: %d attempts: %w", path, b.attempts, lastErr)
}
