package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/affect/internal/engine"
	"github.com/spf13/cobra"
)

// --- event command ---

var eventCmd = &cobra.Command{
	Use:   "event <kind> [desire]",
	Short: "Send a desire lifecycle event",
	Long: "Send DESIRE_ON|DESIRE_OFF|EXPLOIT_ON|EXPLOIT_OFF|INTENTION_ON|INTENTION_OFF " +
		"(or DES_ON, EXP_OFF, INT_ON, ...) for a desire to the running server.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runEvent,
}

func runEvent(cmd *cobra.Command, args []string) error {
	kind, err := engine.ParseKind(args[0])
	if err != nil {
		return err
	}
	desire := ""
	if len(args) > 1 {
		desire = args[1]
	}

	id, err := newClient().SendEvent(string(kind), desire)
	if err != nil {
		return fmt.Errorf("send event: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s accepted (%s)\n", kind, desire, id)
	return nil
}

// --- emotions command ---

var emotionsCmd = &cobra.Command{
	Use:   "emotions",
	Short: "Show current emotion intensities",
	RunE: func(cmd *cobra.Command, args []string) error {
		em, err := newClient().Emotions()
		if err != nil {
			return fmt.Errorf("fetch emotions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(em.Emotions) == 0 {
			fmt.Fprintln(out, "No emotions registered yet. Send a DESIRE_ON event first.")
			return nil
		}
		fmt.Fprintf(out, "tick %d, %s (decay %.3g)\n\n", em.Seq, humanize.Time(em.At), em.DecayRate)
		printIntensities(out, em.Emotions)
		return nil
	},
}

const barWidth = 30

func bar(v float64) string {
	n := int(v*barWidth + 0.5)
	n = min(max(n, 0), barWidth)
	return strings.Repeat("█", n) + strings.Repeat("·", barWidth-n)
}

func printIntensities(w io.Writer, emotions []engine.Intensity) {
	width := 0
	for _, e := range emotions {
		width = max(width, len(e.Name))
	}
	for _, e := range emotions {
		fmt.Fprintf(w, "  %-*s %s %.3f\n", width, e.Name, bar(e.Value), e.Value)
	}
}

// --- desires command ---

var desiresCmd = &cobra.Command{
	Use:   "desires",
	Short: "Show tracked desires and their mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		desires, err := newClient().Desires()
		if err != nil {
			return fmt.Errorf("fetch desires: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(desires) == 0 {
			fmt.Fprintln(out, "No desires tracked yet.")
			return nil
		}
		for _, d := range desires {
			fmt.Fprintf(out, "  %-20s active=%-5t exploited=%-5t %s\n", d.Name, d.Active, d.Exploited, d.Mode)
		}
		return nil
	},
}

// --- events command ---

var (
	eventsLimit  int
	eventsDesire string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recently ingested events",
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := newClient().Events(eventsDesire, eventsLimit)
		if err != nil {
			return fmt.Errorf("fetch events: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No events logged.")
			return nil
		}
		for _, e := range events {
			fmt.Fprintf(out, "  %-14s %-13s %-20s %s\n",
				humanize.Time(e.Time()), e.Kind, e.DesireType, e.ID)
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 20, "Maximum number of events")
	eventsCmd.Flags().StringVarP(&eventsDesire, "desire", "d", "", "Only events for this desire")
}
