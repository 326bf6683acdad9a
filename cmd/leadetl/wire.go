package main

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/lead-sites-etl/internal/adapter/boundary"
	"github.com/couchcryptid/lead-sites-etl/internal/adapter/filesource"
	kafkaadapter "github.com/couchcryptid/lead-sites-etl/internal/adapter/kafka"
	"github.com/couchcryptid/lead-sites-etl/internal/adapter/postgres"
	"github.com/couchcryptid/lead-sites-etl/internal/adapter/table"
	"github.com/couchcryptid/lead-sites-etl/internal/config"
	"github.com/couchcryptid/lead-sites-etl/internal/observability"
	"github.com/couchcryptid/lead-sites-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

// app bundles a configured pipeline with the resources it holds open.
type app struct {
	pipeline *pipeline.Pipeline
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires the pipeline from cfg. With export false no sinks are created.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, export bool) (*app, error) {
	a := &app{}

	src := filesource.New(
		filesource.Paths{
			Sites:      cfg.SitesPath,
			Samples:    cfg.SamplesPath,
			Population: cfg.PopulationPath,
			Boundaries: cfg.BoundariesPath,
		},
		filesource.Columns{
			PopulationName:  cfg.PopulationName,
			PopulationValue: cfg.PopulationValue,
			BoundaryName:    cfg.BoundaryName,
		},
		logger.With("component", "source"),
	)

	var exporters []pipeline.Exporter
	if export {
		exporters = append(exporters, table.NewCSVWriter(cfg.OutputPath, logger.With("component", "csv")))

		if cfg.RegionsOutput != "" {
			exporters = append(exporters, boundary.NewWriter(cfg.RegionsOutput, cfg.PopulationValue, logger.With("component", "regions")))
		}

		if cfg.KafkaEnabled() {
			w := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaSinkTopic, logger.With("component", "kafka"))
			a.closers = append(a.closers, func() {
				if err := w.Close(); err != nil {
					logger.Error("kafka writer close error", "error", err)
				}
			})
			exporters = append(exporters, w)
			logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
		}

		if cfg.PostgresEnabled() {
			w, err := postgres.NewWriter(ctx, cfg.DatabaseURL, cfg.PostgresTable, logger.With("component", "postgres"))
			if err != nil {
				a.Close()
				return nil, err
			}
			a.closers = append(a.closers, w.Close)
			exporters = append(exporters, w)
			logger.Info("postgres sink enabled", "table", cfg.PostgresTable)
		}
	}

	a.pipeline = pipeline.New(src, exporters, pipeline.Options{
		BoundingBox:     cfg.BoundingBox,
		ExcludedRegions: cfg.ExcludedRegions,
	}, logger, metrics, clockwork.NewRealClock())

	return a, nil
}
