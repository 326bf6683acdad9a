package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/lead-sites-etl/internal/adapter/http"
	"github.com/couchcryptid/lead-sites-etl/internal/config"
	"github.com/couchcryptid/lead-sites-etl/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Clean and export the dataset, then serve it over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)

	a, err := newApp(ctx, cfg, logger, observability.NewMetrics(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := httpadapter.NewServer(cfg.HTTPAddr, a.pipeline, cfg.PopulationValue, logger.With("component", "http"))

	// Serve probes while the run is in progress; /readyz flips once it completes.
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	if _, err := a.pipeline.Run(ctx); err != nil {
		logger.Error("pipeline run failed", "error", err)
		shutdown(srv, cfg.ShutdownTimeout, logger)
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-srvErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdown(srv, cfg.ShutdownTimeout, logger)
	logger.Info("shutdown complete")
	return nil
}

func shutdown(srv *httpadapter.Server, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
}
