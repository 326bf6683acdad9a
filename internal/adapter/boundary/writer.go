package boundary

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/lead-sites-etl/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection renders regions as GeoJSON features carrying the original
// boundary properties plus the population under populationProperty.
func FeatureCollection(regions []domain.RegionPopulation, populationProperty string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range regions {
		f := geojson.NewFeature(regions[i].Geometry)
		for k, v := range regions[i].Properties {
			f.Properties[k] = v
		}
		f.Properties[populationProperty] = regions[i].Population
		fc.Append(f)
	}
	return fc
}

// Writer writes the regions of a dataset to a GeoJSON file.
// It implements pipeline.Exporter.
type Writer struct {
	path               string
	populationProperty string
	logger             *slog.Logger
}

// NewWriter creates a regions writer targeting path.
func NewWriter(path, populationProperty string, logger *slog.Logger) *Writer {
	return &Writer{path: path, populationProperty: populationProperty, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "regions" }

// Export marshals the regions and replaces the target file.
func (w *Writer) Export(_ context.Context, ds domain.Dataset) error {
	data, err := FeatureCollection(ds.Regions, w.populationProperty).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal regions: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write regions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}

	w.logger.Info("wrote regions", "path", w.path, "features", len(ds.Regions))
	return nil
}
