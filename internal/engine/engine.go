package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lazypower/affect/internal/params"
	"github.com/rs/zerolog/log"
)

// Publisher receives the emotion snapshot produced by every Generator tick.
type Publisher interface {
	Publish(ctx context.Context, snap Snapshot) error
}

// Snapshot is the full emotion state at one point in time.
type Snapshot struct {
	Seq      uint64         `json:"seq"`
	At       time.Time      `json:"at"`
	Emotions []Intensity    `json:"emotions"`
	Desires  []DesireStatus `json:"desires,omitempty"`
}

// Value returns the intensity of a named emotion in the snapshot.
func (s Snapshot) Value(name string) (float64, bool) {
	for _, e := range s.Emotions {
		if e.Name == name {
			return e.Value, true
		}
	}
	return 0, false
}

// Options configures an Engine.
type Options struct {
	DecayRate      float64
	GeneratePeriod time.Duration
	DecayPeriod    time.Duration
	Namespace      string
	Node           string
	LoadTimeout    time.Duration // upper bound for one EnsureLoaded call
	PublishTimeout time.Duration
	Clock          Clock
}

// DefaultOptions returns the reference timing: generate every second,
// decay every two seconds, decay rate 0.01.
func DefaultOptions() Options {
	return Options{
		DecayRate:      DefaultDecayRate,
		GeneratePeriod: time.Second,
		DecayPeriod:    2 * time.Second,
		Namespace:      "/",
		Node:           "emotion_generator",
		LoadTimeout:    2 * time.Second,
		PublishTimeout: time.Second,
		Clock:          RealClock{},
	}
}

// Engine owns the affect state and runs the Generator and DecayEngine ticks.
// All state access goes through one mutex; the two periodic tasks run on a
// single dispatcher goroutine so their bodies never overlap.
type Engine struct {
	mu    sync.Mutex
	state State
	seq   uint64

	loader *Loader
	pub    Publisher
	opts   Options

	stopCh   chan struct{}
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

// New creates an Engine. Out-of-range options fall back to defaults with a
// warning. provider and pub may be nil.
func New(opts Options, provider params.Provider, pub Publisher) *Engine {
	def := DefaultOptions()

	rate, ok := NormalizeDecayRate(opts.DecayRate)
	if !ok {
		log.Warn().Float64("decay_rate", opts.DecayRate).Float64("fallback", rate).
			Msg("emotion decay must be between 0 and 1")
	}
	opts.DecayRate = rate

	if opts.GeneratePeriod <= 0 {
		opts.GeneratePeriod = def.GeneratePeriod
	}
	if opts.DecayPeriod <= 0 {
		opts.DecayPeriod = def.DecayPeriod
	}
	if opts.Node == "" {
		opts.Node = def.Node
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = def.LoadTimeout
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = def.PublishTimeout
	}
	if opts.Clock == nil {
		opts.Clock = def.Clock
	}

	return &Engine{
		loader: NewLoader(provider, opts.Namespace, opts.Node),
		pub:    pub,
		opts:   opts,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// DecayRate returns the effective decay rate.
func (e *Engine) DecayRate() float64 { return e.opts.DecayRate }

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Loader returns the loader used for modulation rows.
func (e *Engine) Loader() *Loader { return e.loader }

// Apply updates the desire flags for one event. It does not load rows.
func (e *Engine) Apply(ev Event) error {
	switch ev.Kind {
	case KindDesireOn, KindDesireOff, KindExploitOn, KindExploitOff:
	case KindIntentionOn, KindIntentionOff:
		log.Debug().Str("kind", string(ev.Kind)).Str("desire", ev.DesireType).Msg("intention event")
		if ev.DesireType != "" {
			e.mu.Lock()
			e.state.Desires.Track(ev.DesireType)
			e.mu.Unlock()
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.state.Desires.Track(ev.DesireType)
	switch ev.Kind {
	case KindDesireOn:
		e.state.Desires.SetActive(id, true)
	case KindDesireOff:
		e.state.Desires.SetActive(id, false)
	case KindExploitOn:
		e.state.Desires.SetExploited(id, true)
	case KindExploitOff:
		e.state.Desires.SetExploited(id, false)
	}
	return nil
}

// EnsureLoaded fetches the exploited and negated rows of a desire unless a
// fetch was already started for it. The provider is queried outside the
// state lock so ticks keep running while a lookup is in flight. The fetch
// is bounded by LoadTimeout only: cancelling ctx does not abandon a claimed
// row. It returns true if this call performed the lookup.
func (e *Engine) EnsureLoaded(ctx context.Context, desire string) bool {
	if desire == "" {
		return false
	}

	e.mu.Lock()
	id := e.state.Desires.Track(desire)
	claimed := e.state.Matrix.claim(id)
	e.mu.Unlock()
	if !claimed {
		return false
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.opts.LoadTimeout)
	defer cancel()

	exploited := e.loadRow(ctx, desire)
	frustrated := e.loadRow(ctx, NegatedName(desire))

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Matrix.store(id, e.buildRow(exploited), e.buildRow(frustrated))
	return true
}

func (e *Engine) loadRow(ctx context.Context, row string) map[string]float64 {
	factors, err := e.loader.Load(ctx, row)
	if err != nil {
		log.Warn().Err(err).Str("row", row).Msg("modulation row unavailable")
		return nil
	}
	if factors == nil {
		log.Debug().Str("row", row).Str("path", e.loader.Path(row)).Msg("no modulation defined")
	}
	return factors
}

// buildRow interns the emotions of a row, registering new ones at 0.
// Caller holds e.mu.
func (e *Engine) buildRow(factors map[string]float64) Row {
	if len(factors) == 0 {
		return nil
	}
	row := make(Row, 0, len(factors))
	for emotion, f := range factors {
		row = append(row, Term{Emotion: e.state.Emotions.Register(emotion), Factor: f})
	}
	return row
}

// Ingest applies an event and then makes sure its desire's rows are loaded.
func (e *Engine) Ingest(ctx context.Context, ev Event) error {
	if err := e.Apply(ev); err != nil {
		return err
	}
	e.EnsureLoaded(ctx, ev.DesireType)
	return nil
}

// Generate runs one Generator tick and publishes the resulting snapshot.
func (e *Engine) Generate(ctx context.Context) Snapshot {
	e.mu.Lock()
	generate(&e.state)
	e.seq++
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if e.pub != nil {
		pctx, cancel := context.WithTimeout(ctx, e.opts.PublishTimeout)
		defer cancel()
		if err := e.pub.Publish(pctx, snap); err != nil {
			log.Warn().Err(err).Uint64("seq", snap.Seq).Msg("publish snapshot")
		}
	}
	return snap
}

// Decay runs one DecayEngine tick.
func (e *Engine) Decay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	decay(&e.state.Emotions, e.opts.DecayRate)
}

// Snapshot returns the current state without ticking.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Seq:      e.seq,
		At:       e.opts.Clock.Now(),
		Emotions: e.state.Emotions.Intensities(),
		Desires:  e.state.Desires.Statuses(),
	}
}

// Desires returns the status of every tracked desire.
func (e *Engine) Desires() []DesireStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Desires.Statuses()
}

// Start launches the dispatcher goroutine. Calling it twice is a no-op.
func (e *Engine) Start() {
	if !e.started.CompareAndSwap(false, true) {
		return
	}

	gen := e.opts.Clock.NewTicker(e.opts.GeneratePeriod)
	dec := e.opts.Clock.NewTicker(e.opts.DecayPeriod)

	go func() {
		defer close(e.done)
		defer gen.Stop()
		defer dec.Stop()

		for {
			select {
			case <-gen.C():
				e.Generate(context.Background())
			case <-dec.C():
				e.Decay()
			case <-e.stopCh:
				return
			}
		}
	}()

	log.Info().
		Dur("generate_period", e.opts.GeneratePeriod).
		Dur("decay_period", e.opts.DecayPeriod).
		Float64("decay_rate", e.opts.DecayRate).
		Msg("emotion engine started")
}

// Running reports whether Start was called and Stop was not.
func (e *Engine) Running() bool {
	if !e.started.Load() {
		return false
	}
	select {
	case <-e.stopCh:
		return false
	default:
		return true
	}
}

// Stop shuts down the dispatcher and waits for it to exit. Safe to call
// more than once, and without Start.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
	if e.started.Load() {
		<-e.done
	}
}
