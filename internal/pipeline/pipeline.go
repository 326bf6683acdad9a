package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/lead-sites-etl/internal/domain"
	"github.com/couchcryptid/lead-sites-etl/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Inputs are the four raw tables a run consumes.
type Inputs struct {
	Sites       []domain.MonitoringSite
	Samples     []domain.MeasurementRecord
	Boundaries  []domain.RegionBoundary
	Populations []domain.RegionPopulationRow
}

// Source loads the run inputs. Implementations return an error wrapping
// ErrMissingInput, before loading anything, when an input is absent.
type Source interface {
	Load(ctx context.Context) (Inputs, error)
}

// Exporter writes a cleaned dataset to one sink.
type Exporter interface {
	Name() string
	Export(ctx context.Context, ds domain.Dataset) error
}

// Options configures the cleaning stages.
type Options struct {
	BoundingBox     domain.BoundingBox
	ExcludedRegions []string
}

// Result is the outcome of a successful run.
type Result struct {
	Dataset domain.Dataset
	Report  Report
}

// Pipeline orchestrates the load-clean-export run.
type Pipeline struct {
	source    Source
	exporters []Exporter
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	newID     func() string

	ready  atomic.Bool
	latest atomic.Pointer[Result]
}

// New creates a Pipeline. A nil clock uses the real clock.
func New(src Source, exporters []Exporter, opts Options, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		source:    src,
		exporters: exporters,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		newID:     uuid.NewString,
	}
}

// CheckReadiness returns nil once a run has completed and been exported.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return ErrNotReady
	}
	return nil
}

// Latest returns the result of the last successful run, or nil.
func (p *Pipeline) Latest() *Result {
	return p.latest.Load()
}

// Run loads, cleans and exports the dataset. Nothing is exported when any
// stage fails.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res, err := p.Process(ctx)
	if err != nil {
		p.metrics.Runs.WithLabelValues("error").Inc()
		return nil, err
	}

	res.Report.Exported = make(map[string]int, len(p.exporters))
	for _, e := range p.exporters {
		if err := ctx.Err(); err != nil {
			p.metrics.Runs.WithLabelValues("error").Inc()
			return nil, stageErr("export", err)
		}
		if err := e.Export(ctx, res.Dataset); err != nil {
			p.logger.Error("export failed", "sink", e.Name(), "error", err)
			p.metrics.Runs.WithLabelValues("error").Inc()
			return nil, stageErr("export", fmt.Errorf("%s: %w", e.Name(), err))
		}
		n := len(res.Dataset.Records)
		res.Report.Exported[e.Name()] = n
		p.metrics.RecordsExported.WithLabelValues(e.Name()).Add(float64(n))
		p.logger.Info("exported", "sink", e.Name(), "records", n, "regions", len(res.Dataset.Regions))
	}

	res.Report.FinishedAt = p.clock.Now()
	p.metrics.Runs.WithLabelValues("success").Inc()
	p.metrics.RunDuration.Observe(res.Report.Duration().Seconds())
	p.metrics.PipelineReady.Set(1)
	p.latest.Store(res)
	p.ready.Store(true)

	p.logger.Info("run complete",
		"run_id", res.Report.RunID,
		"records", len(res.Dataset.Records),
		"regions", len(res.Dataset.Regions),
		"duration", res.Report.Duration(),
	)
	return res, nil
}

// Process loads and cleans the inputs without exporting them.
func (p *Pipeline) Process(ctx context.Context) (*Result, error) {
	rep := Report{RunID: p.newID(), StartedAt: p.clock.Now()}
	p.logger.Info("run started", "run_id", rep.RunID)

	in, err := p.source.Load(ctx)
	if err != nil {
		return nil, stageErr("load", err)
	}

	records, err := p.cleanRecords(in, &rep)
	if err != nil {
		return nil, err
	}
	regions := p.cleanRegions(in, &rep)

	rep.FinishedAt = p.clock.Now()
	return &Result{
		Dataset: domain.Dataset{RunID: rep.RunID, Records: records, Regions: regions},
		Report:  rep,
	}, nil
}

func (p *Pipeline) cleanRecords(in Inputs, rep *Report) ([]domain.GeolocatedRecord, error) {
	p.stage(rep, StageSitesLoaded, len(in.Sites), len(in.Sites))
	sites := domain.DedupSites(in.Sites)
	p.stage(rep, StageSitesDeduped, len(sites), len(in.Sites))

	p.stage(rep, StageSamplesLoaded, len(in.Samples), len(in.Samples))
	clean, stats := domain.FilterMeasurements(in.Samples)
	p.stage(rep, StageWithValue, stats.WithValue, stats.Input)
	p.stage(rep, StageParsed, stats.Parsed, stats.WithValue)
	p.stage(rep, StagePositive, stats.Positive, stats.Parsed)
	p.stage(rep, StageRecognizedUnit, stats.RecognizedUnit, stats.Positive)
	rep.Rejected = stats.Rejected
	p.metrics.RejectedValues.Add(float64(stats.Rejected))
	if stats.Rejected > 0 {
		p.logger.Warn("unparsable measurement values excluded", "count", stats.Rejected)
	}

	joined := domain.JoinSites(clean, sites)
	p.stage(rep, StageJoined, len(joined), len(clean))

	deduped := domain.DedupMeasurements(joined)
	p.stage(rep, StageDeduped, len(deduped), len(joined))

	inBounds := domain.FilterBoundingBox(deduped, p.opts.BoundingBox)
	p.stage(rep, StageInBounds, len(inBounds), len(deduped))

	geo, err := domain.Geolocate(inBounds)
	if err != nil {
		return nil, stageErr("geometry", err)
	}
	p.stage(rep, StageGeolocated, len(geo), len(inBounds))
	return geo, nil
}

func (p *Pipeline) cleanRegions(in Inputs, rep *Report) []domain.RegionPopulation {
	p.stage(rep, StageBoundariesLoaded, len(in.Boundaries), len(in.Boundaries))
	joined := domain.JoinPopulation(in.Boundaries, in.Populations)
	p.stage(rep, StageRegionsJoined, len(joined), len(in.Boundaries))
	kept := domain.ExcludeRegions(joined, p.opts.ExcludedRegions)
	p.stage(rep, StageRegionsKept, len(kept), len(joined))
	return kept
}

func (p *Pipeline) stage(rep *Report, name string, rows, before int) {
	sc := rep.record(name, rows, before)
	p.metrics.StageRows.WithLabelValues(name).Set(float64(rows))
	p.logger.Info("stage complete", "stage", sc.Stage, "rows", sc.Rows, "dropped", sc.Dropped)
}
