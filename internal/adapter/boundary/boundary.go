// Package boundary loads region boundary geometry from GeoJSON and writes the
// population-joined regions back out as a FeatureCollection.
package boundary

import (
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/lead-sites-etl/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// ErrMissingName is returned when a feature lacks the configured name property.
var ErrMissingName = errors.New("feature missing name property")

// Load reads a GeoJSON FeatureCollection and returns one boundary per feature,
// named by the string property nameProperty.
func Load(path, nameProperty string) ([]domain.RegionBoundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("boundaries: read: %w", err)
	}
	return Parse(data, nameProperty)
}

// Parse decodes a FeatureCollection already in memory.
func Parse(data []byte, nameProperty string) ([]domain.RegionBoundary, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("boundaries: decode: %w", err)
	}

	out := make([]domain.RegionBoundary, 0, len(fc.Features))
	for i, f := range fc.Features {
		name, ok := f.Properties[nameProperty].(string)
		if !ok {
			return nil, fmt.Errorf("boundaries: feature %d: %w %q", i, ErrMissingName, nameProperty)
		}
		out = append(out, domain.RegionBoundary{
			Name:       name,
			Geometry:   f.Geometry,
			Properties: map[string]any(f.Properties.Clone()),
		})
	}
	return out, nil
}
