package cli

import (
	"fmt"

	"github.com/lazypower/affect/internal/client"
	"github.com/lazypower/affect/internal/config"
	"github.com/lazypower/affect/internal/logging"
	"github.com/lazypower/affect/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "affect",
	Short: "Emotion state engine for autonomous agents",
	Long: "Affect turns desire lifecycle events into emotion intensities. " +
		"Active desires push emotions up through a modulation matrix; decay pulls them back to rest.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfg       config.Config
	serverURL string
	logLevel  string
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "affect server URL (default $AFFECT_URL or "+client.DefaultServerURL+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override AFFECT_LOG_LEVEL")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(emotionsCmd)
	rootCmd.AddCommand(desiresCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(modulationCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(watchCmd)
}

// setup loads configuration and installs the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return logging.Setup(cfg.Log)
}

// openDB opens the configured database for commands that work offline.
func openDB() (*store.DB, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

func newClient() *client.Client {
	return client.NewClient(serverURL)
}
