package script

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/lazypower/affect/internal/engine"
	"github.com/lazypower/affect/internal/params"
)

// DefaultTolerance is the allowed absolute error of an expectation.
const DefaultTolerance = 1e-9

// Failure is one unmet expectation.
type Failure struct {
	Line   int
	Target string // emotion or desire name
	Want   string
	Got    string
}

func (f Failure) String() string {
	return fmt.Sprintf("line %d: %s = %s, want %s", f.Line, f.Target, f.Got, f.Want)
}

// Result summarizes a scenario run.
type Result struct {
	Steps    int
	Ticks    int
	Failures []Failure
	Final    engine.Snapshot
	Provider *params.Static
}

// OK reports whether every expectation held.
func (r *Result) OK() bool { return len(r.Failures) == 0 }

// Options configures a Runner.
type Options struct {
	Namespace string
	Node      string
	Tolerance float64
	// Trace, when set, is called after every executed step.
	Trace func(Step, engine.Snapshot)
}

// Runner executes scenarios against a fresh engine driven by a manual
// clock. Ticks are run synchronously, one at a time.
type Runner struct {
	opts Options
}

// NewRunner creates a Runner. Zero options select the engine defaults.
func NewRunner(opts Options) *Runner {
	def := engine.DefaultOptions()
	if opts.Namespace == "" {
		opts.Namespace = def.Namespace
	}
	if opts.Node == "" {
		opts.Node = def.Node
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	return &Runner{opts: opts}
}

// Run executes steps in order. The engine is created at the first step that
// needs it, so a decay_rate step must come before any event or tick.
func (r *Runner) Run(ctx context.Context, steps []Step) (*Result, error) {
	provider := params.NewStatic()
	clock := engine.NewManualClock(time.Unix(0, 0).UTC())
	res := &Result{Provider: provider}

	opts := engine.DefaultOptions()
	opts.Namespace = r.opts.Namespace
	opts.Node = r.opts.Node
	opts.Clock = clock

	var eng *engine.Engine
	current := func() *engine.Engine {
		if eng == nil {
			eng = engine.New(opts, provider, nil)
		}
		return eng
	}

	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		switch st.Op {
		case OpDecayRate:
			if eng != nil {
				return res, fmt.Errorf("line %d: decay_rate after the engine started", st.Line)
			}
			opts.DecayRate = st.DecayRate

		case OpRow:
			provider.Set(params.Path(opts.Namespace, opts.Node, st.Row), st.Factors)

		case OpEvent:
			if err := current().Ingest(ctx, engine.NewEvent(st.Kind, st.Desire)); err != nil {
				return res, fmt.Errorf("line %d: %w", st.Line, err)
			}

		case OpTick:
			e := current()
			for i := 0; i < st.Repeat; i++ {
				switch st.Tick {
				case TickGenerate:
					clock.Advance(opts.GeneratePeriod)
					e.Generate(ctx)
				case TickDecay:
					e.Decay()
				}
				res.Ticks++
			}

		case OpExpect:
			snap := current().Snapshot()
			for _, name := range slices.Sorted(maps.Keys(st.Expect)) {
				want := st.Expect[name]
				got, _ := snap.Value(name)
				if math.Abs(got-want) > r.opts.Tolerance {
					res.Failures = append(res.Failures, Failure{
						Line:   st.Line,
						Target: name,
						Want:   formatFloat(want),
						Got:    formatFloat(got),
					})
				}
			}

		case OpExpectDesire:
			modes := make(map[string]engine.Mode)
			for _, d := range current().Desires() {
				modes[d.Name] = d.Mode
			}
			for _, name := range slices.Sorted(maps.Keys(st.ExpectDesire)) {
				want := st.ExpectDesire[name]
				got, ok := modes[name]
				if !ok {
					got = engine.ModeInactive
				}
				if got != want {
					res.Failures = append(res.Failures, Failure{
						Line:   st.Line,
						Target: name,
						Want:   string(want),
						Got:    string(got),
					})
				}
			}
		}

		res.Steps++
		if r.opts.Trace != nil && eng != nil {
			r.opts.Trace(st, eng.Snapshot())
		}
	}

	res.Final = current().Snapshot()
	return res, nil
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6g", v)
}
