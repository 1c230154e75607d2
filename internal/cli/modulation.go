package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/lazypower/affect/internal/params"
	"github.com/spf13/cobra"
)

// Modulation commands edit the params table directly, so they work whether
// or not the server is running. A running engine keeps the rows it already
// loaded.

var modulationCmd = &cobra.Command{
	Use:     "modulation",
	Aliases: []string{"mod"},
	Short:   "Edit the modulation matrix",
	Long: "Each desire has two rows: <desire> applies while it is exploited and " +
		"not_<desire> while it is active but frustrated. Factors are added to the emotion on every tick.",
}

var modulationSetCmd = &cobra.Command{
	Use:   "set <row> <emotion=factor>...",
	Short: "Replace a row's factors",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		factors, err := parseFactors(args[1:])
		if err != nil {
			return err
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		path := rowPath(args[0])
		if err := db.ReplaceParams(path, toParams(factors)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d factors\n", path, len(factors))
		return nil
	},
}

var modulationGetCmd = &cobra.Command{
	Use:   "get <row>",
	Short: "Show a row's factors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		path := rowPath(args[0])
		entries, err := db.Lookup(cmd.Context(), path)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("row not configured: %s", path)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", path)
		for _, emotion := range slices.Sorted(maps.Keys(entries)) {
			if f, ok := params.Factor(entries[emotion]); ok {
				fmt.Fprintf(out, "  %-20s %+.4g\n", emotion, f)
			} else {
				fmt.Fprintf(out, "  %-20s malformed (%v)\n", emotion, entries[emotion])
			}
		}
		return nil
	},
}

var modulationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured rows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		prefix := params.Prefix(cfg.Engine.Namespace, cfg.Engine.Node)
		paths, err := db.ListParamPaths(prefix)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(paths) == 0 {
			fmt.Fprintf(out, "No rows under %s.\n", prefix)
			return nil
		}
		for _, p := range paths {
			fmt.Fprintln(out, strings.TrimPrefix(p, strings.TrimSuffix(prefix, "/")+"/"))
		}
		return nil
	},
}

var modulationDeleteCmd = &cobra.Command{
	Use:   "delete <row>",
	Short: "Remove a row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		path := rowPath(args[0])
		n, err := db.DeleteParams(path)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("row not configured: %s", path)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: removed %d factors\n", path, n)
		return nil
	},
}

var modulationImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Load rows from a JSON file",
	Long:  `The file maps row names to factors: {"Eat": {"Joy": 0.2}, "not_Eat": {"Anger": 0.1}}.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read matrix: %w", err)
		}
		var matrix map[string]map[string]float64
		if err := json.Unmarshal(data, &matrix); err != nil {
			return fmt.Errorf("parse matrix: %w", err)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		for _, row := range slices.Sorted(maps.Keys(matrix)) {
			if err := db.ReplaceParams(rowPath(row), toParams(matrix[row])); err != nil {
				return fmt.Errorf("import %s: %w", row, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows\n", len(matrix))
		return nil
	},
}

func init() {
	modulationCmd.AddCommand(modulationSetCmd)
	modulationCmd.AddCommand(modulationGetCmd)
	modulationCmd.AddCommand(modulationListCmd)
	modulationCmd.AddCommand(modulationDeleteCmd)
	modulationCmd.AddCommand(modulationImportCmd)
}

func rowPath(row string) string {
	return params.Path(cfg.Engine.Namespace, cfg.Engine.Node, row)
}

// parseFactors reads emotion=factor pairs.
func parseFactors(args []string) (map[string]float64, error) {
	factors := make(map[string]float64, len(args))
	for _, a := range args {
		emotion, value, ok := strings.Cut(a, "=")
		if !ok || emotion == "" {
			return nil, fmt.Errorf("want emotion=factor, got %q", a)
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("factor for %s: %w", emotion, err)
		}
		factors[emotion] = f
	}
	return factors, nil
}

func toParams(factors map[string]float64) map[string]any {
	out := make(map[string]any, len(factors))
	for k, v := range factors {
		out[k] = v
	}
	return out
}
