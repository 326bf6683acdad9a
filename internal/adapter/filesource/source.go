// Package filesource loads pipeline inputs from local files.
package filesource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/couchcryptid/lead-sites-etl/internal/adapter/boundary"
	"github.com/couchcryptid/lead-sites-etl/internal/adapter/table"
	"github.com/couchcryptid/lead-sites-etl/internal/pipeline"
)

// Paths locates the four input files.
type Paths struct {
	Sites      string
	Samples    string
	Population string
	Boundaries string
}

// Columns names the configurable population and boundary fields.
type Columns struct {
	PopulationName  string
	PopulationValue string
	BoundaryName    string
}

// Source reads sites, samples and population tables (CSV or XLSX) and a
// GeoJSON boundary file. It implements pipeline.Source.
type Source struct {
	paths  Paths
	cols   Columns
	logger *slog.Logger
}

// New creates a file source.
func New(paths Paths, cols Columns, logger *slog.Logger) *Source {
	return &Source{paths: paths, cols: cols, logger: logger}
}

// Check verifies every input exists, reporting all missing inputs at once.
func (s *Source) Check() error {
	var errs []error
	for _, in := range s.inputs() {
		if _, err := os.Stat(in.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, fmt.Errorf("%w: %s (%s)", pipeline.ErrMissingInput, in.name, in.path))
				continue
			}
			errs = append(errs, fmt.Errorf("%s: %w", in.name, err))
		}
	}
	return errors.Join(errs...)
}

// Load checks all inputs, then reads them.
func (s *Source) Load(ctx context.Context) (pipeline.Inputs, error) {
	var in pipeline.Inputs
	if err := s.Check(); err != nil {
		return in, err
	}

	sitesTbl, err := table.ReadFile("sites", s.paths.Sites)
	if err != nil {
		return in, err
	}
	if in.Sites, err = table.Sites(sitesTbl); err != nil {
		return in, err
	}
	s.logger.Info("loaded input", "input", "sites", "path", s.paths.Sites, "rows", len(in.Sites))

	if err := ctx.Err(); err != nil {
		return in, err
	}
	samplesTbl, err := table.ReadFile("samples", s.paths.Samples)
	if err != nil {
		return in, err
	}
	if in.Samples, err = table.Samples(samplesTbl); err != nil {
		return in, err
	}
	s.logger.Info("loaded input", "input", "samples", "path", s.paths.Samples, "rows", len(in.Samples))

	if err := ctx.Err(); err != nil {
		return in, err
	}
	popTbl, err := table.ReadFile("population", s.paths.Population)
	if err != nil {
		return in, err
	}
	if in.Populations, err = table.Populations(popTbl, s.cols.PopulationName, s.cols.PopulationValue); err != nil {
		return in, err
	}
	s.logger.Info("loaded input", "input", "population", "path", s.paths.Population, "rows", len(in.Populations))

	if in.Boundaries, err = boundary.Load(s.paths.Boundaries, s.cols.BoundaryName); err != nil {
		return in, err
	}
	s.logger.Info("loaded input", "input", "boundaries", "path", s.paths.Boundaries, "features", len(in.Boundaries))

	return in, nil
}

type input struct {
	name string
	path string
}

func (s *Source) inputs() []input {
	return []input{
		{"sites", s.paths.Sites},
		{"samples", s.paths.Samples},
		{"population", s.paths.Population},
		{"boundaries", s.paths.Boundaries},
	}
}
