// Package script parses and runs JSONL affect scenarios: modulation rows,
// lifecycle events, explicit ticks and expectations, one JSON object per line.
//
//	{"decay_rate":0.1}
//	{"row":"Eat","factors":{"Joy":0.25}}
//	{"event":"DESIRE_ON","desire":"Eat"}
//	{"tick":"generate"}
//	{"expect":{"Joy":0.25}}
//	{"expect_desire":{"Eat":"active_exploited"}}
//
// Blank lines and lines starting with # are ignored.
package script

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lazypower/affect/internal/engine"
)

// Op is the kind of a scenario step.
type Op string

const (
	OpDecayRate    Op = "decay_rate"
	OpRow          Op = "row"
	OpEvent        Op = "event"
	OpTick         Op = "tick"
	OpExpect       Op = "expect"
	OpExpectDesire Op = "expect_desire"
)

// Tick names accepted by a tick step.
const (
	TickGenerate = "generate"
	TickDecay    = "decay"
)

// Step is one parsed scenario line.
type Step struct {
	Line int
	Op   Op

	DecayRate    float64
	Row          string
	Factors      map[string]any // raw values; json.Number for numbers
	Kind         engine.Kind
	Desire       string
	Tick         string
	Repeat       int
	Expect       map[string]float64
	ExpectDesire map[string]engine.Mode
}

// rawStep is the on-disk shape of a line.
type rawStep struct {
	DecayRate    *float64           `json:"decay_rate"`
	Row          string             `json:"row"`
	Factors      map[string]any     `json:"factors"`
	Event        string             `json:"event"`
	Desire       string             `json:"desire"`
	Tick         string             `json:"tick"`
	Repeat       int                `json:"repeat"`
	Expect       map[string]float64 `json:"expect"`
	ExpectDesire map[string]string  `json:"expect_desire"`
}

// ParseFile reads a scenario file.
func ParseFile(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ParseString parses scenario content from a string.
func ParseString(content string) ([]Step, error) {
	return Parse(strings.NewReader(content))
}

// Parse reads scenario lines from r. Any malformed line is an error.
func Parse(r io.Reader) ([]Step, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		step, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		step.Line = n
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan scenario: %w", err)
	}
	return steps, nil
}

func parseLine(line []byte) (Step, error) {
	var raw rawStep
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return Step{}, fmt.Errorf("invalid json: %w", err)
	}

	var ops []Op
	if raw.DecayRate != nil {
		ops = append(ops, OpDecayRate)
	}
	if raw.Row != "" || raw.Factors != nil {
		ops = append(ops, OpRow)
	}
	if raw.Event != "" {
		ops = append(ops, OpEvent)
	}
	if raw.Tick != "" {
		ops = append(ops, OpTick)
	}
	if raw.Expect != nil {
		ops = append(ops, OpExpect)
	}
	if raw.ExpectDesire != nil {
		ops = append(ops, OpExpectDesire)
	}
	if len(ops) != 1 {
		return Step{}, fmt.Errorf("want exactly one step kind, got %v", ops)
	}

	step := Step{Op: ops[0]}
	switch step.Op {
	case OpDecayRate:
		step.DecayRate = *raw.DecayRate
	case OpRow:
		if raw.Row == "" {
			return Step{}, fmt.Errorf("row name required")
		}
		step.Row = raw.Row
		step.Factors = raw.Factors
	case OpEvent:
		kind, err := engine.ParseKind(raw.Event)
		if err != nil {
			return Step{}, err
		}
		step.Kind = kind
		step.Desire = raw.Desire
	case OpTick:
		if raw.Tick != TickGenerate && raw.Tick != TickDecay {
			return Step{}, fmt.Errorf("unknown tick %q", raw.Tick)
		}
		if raw.Repeat < 0 {
			return Step{}, fmt.Errorf("negative repeat")
		}
		step.Tick = raw.Tick
		step.Repeat = max(raw.Repeat, 1)
	case OpExpect:
		step.Expect = raw.Expect
	case OpExpectDesire:
		step.ExpectDesire = make(map[string]engine.Mode, len(raw.ExpectDesire))
		for d, m := range raw.ExpectDesire {
			mode := engine.Mode(m)
			switch mode {
			case engine.ModeInactive, engine.ModeActiveExploited, engine.ModeActiveFrustrated:
			default:
				return Step{}, fmt.Errorf("unknown desire mode %q", m)
			}
			step.ExpectDesire[d] = mode
		}
	}
	return step, nil
}
