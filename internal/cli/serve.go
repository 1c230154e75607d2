package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lazypower/affect/internal/engine"
	"github.com/lazypower/affect/internal/params"
	"github.com/lazypower/affect/internal/server"
	"github.com/lazypower/affect/internal/sink"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the emotion engine and its HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	provider := params.NewBounded(db, params.BoundedOptions{
		Timeout:  cfg.Params.Timeout,
		Attempts: cfg.Params.Attempts,
		Rate:     cfg.Params.Rate,
		Burst:    cfg.Params.Burst,
		Backoff:  params.DefaultBoundedOptions().Backoff,
	})

	hub := sink.NewHub()
	sinks := sink.Multi{hub, sink.NewStore(db, cfg.Engine.SnapshotRetention)}
	if cfg.Engine.Debug {
		if zerolog.GlobalLevel() > zerolog.DebugLevel {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		sinks = append(sinks, sink.NewDebug(cfg.Engine.DebugEmotions, cfg.Engine.DebugDesires))
	}

	opts := engine.DefaultOptions()
	opts.DecayRate = cfg.Engine.DecayRate
	opts.GeneratePeriod = cfg.Engine.GeneratePeriod
	opts.DecayPeriod = cfg.Engine.DecayPeriod
	opts.Namespace = cfg.Engine.Namespace
	opts.Node = cfg.Engine.Node

	eng := engine.New(opts, provider, sinks)
	eng.Start()
	defer eng.Stop()

	srv := server.New(db, eng, hub, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("db", db.Path).
			Str("params", eng.Loader().Prefix()).Msg("affect serving")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	eng.Stop()
	return httpServer.Shutdown(ctx)
}
