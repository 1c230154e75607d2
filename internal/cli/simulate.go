package cli

import (
	"fmt"

	"github.com/lazypower/affect/internal/engine"
	"github.com/lazypower/affect/internal/script"
	"github.com/spf13/cobra"
)

var simulateTrace bool

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.jsonl>",
	Short: "Run a scenario against an in-memory engine",
	Long: "Run a JSONL scenario (rows, events, ticks and expectations) against a fresh engine " +
		"with a manual clock. Exits non-zero if any expectation fails.",
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().BoolVarP(&simulateTrace, "trace", "t", false, "Print the emotion state after every step")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	steps, err := script.ParseFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := script.Options{
		Namespace: cfg.Engine.Namespace,
		Node:      cfg.Engine.Node,
	}
	if simulateTrace {
		opts.Trace = func(st script.Step, snap engine.Snapshot) {
			if st.Op != script.OpTick {
				return
			}
			fmt.Fprintf(out, "line %d: %s x%d\n", st.Line, st.Tick, st.Repeat)
			printIntensities(out, snap.Emotions)
		}
	}

	res, err := script.NewRunner(opts).Run(cmd.Context(), steps)
	if err != nil {
		return err
	}

	for _, f := range res.Failures {
		fmt.Fprintln(out, "FAIL", f)
	}
	fmt.Fprintf(out, "%d steps, %d ticks, %d failures\n", res.Steps, res.Ticks, len(res.Failures))
	if !res.OK() {
		return fmt.Errorf("%d expectations failed", len(res.Failures))
	}
	return nil
}
