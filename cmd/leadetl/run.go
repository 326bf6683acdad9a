package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os/signal"
	"slices"
	"syscall"

	"github.com/couchcryptid/lead-sites-etl/internal/config"
	"github.com/couchcryptid/lead-sites-etl/internal/observability"
	"github.com/couchcryptid/lead-sites-etl/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Clean the inputs and export the dataset once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runOnce(ctx, cmd.OutOrStdout(), observability.NewMetrics())
		},
	}
}

func runOnce(ctx context.Context, out io.Writer, metrics *observability.Metrics) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)

	a, err := newApp(ctx, cfg, logger, metrics, true)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.pipeline.Run(ctx)
	if err != nil {
		return err
	}
	printReport(out, &res.Report)
	return nil
}

func printReport(out io.Writer, rep *pipeline.Report) {
	fmt.Fprintf(out, "Run %s (%s)\n\n", rep.RunID, rep.Duration())
	for _, s := range rep.Stages {
		fmt.Fprintf(out, "  %-20s %8d  (-%d)\n", s.Stage, s.Rows, s.Dropped)
	}
	if rep.Rejected > 0 {
		fmt.Fprintf(out, "\n  unparsable values: %d\n", rep.Rejected)
	}
	if len(rep.Exported) > 0 {
		fmt.Fprintln(out)
		for _, sink := range slices.Sorted(maps.Keys(rep.Exported)) {
			fmt.Fprintf(out, "  exported to %-10s %d records\n", sink, rep.Exported[sink])
		}
	}
}
