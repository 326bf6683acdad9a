package filesource

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/lead-sites-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sitesCSV   = "MonitoringLocationIdentifier,MonitoringLocationName,MonitoringLocationTypeName,LatitudeMeasure,LongitudeMeasure,StateCode,CountyCode\nS1,One,Well,35,-90,47,1\nS1,One again,Well,35,-90,47,1\n"
	samplesCSV = "MonitoringLocationIdentifier,ActivityStartDate,ResultMeasureValue,ResultMeasure/MeasureUnitCode\nS1,2018-03-04,5,ug/l\n"
	popCSV     = "NAME,POPESTIMATE2018\nOhio,11689442\n"
	statesJSON = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"NAME":"Ohio"},"geometry":{"type":"Point","coordinates":[-82,40]}}]}`
)

var defaultColumns = Columns{PopulationName: "NAME", PopulationValue: "POPESTIMATE2018", BoundaryName: "NAME"}

func writeInputs(t *testing.T, dir string) Paths {
	t.Helper()
	p := Paths{
		Sites:      filepath.Join(dir, "sites.csv"),
		Samples:    filepath.Join(dir, "samples.csv"),
		Population: filepath.Join(dir, "pop.csv"),
		Boundaries: filepath.Join(dir, "states.geojson"),
	}
	for path, content := range map[string]string{
		p.Sites:      sitesCSV,
		p.Samples:    samplesCSV,
		p.Population: popCSV,
		p.Boundaries: statesJSON,
	} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return p
}

func newSource(p Paths) *Source {
	return New(p, defaultColumns, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoad(t *testing.T) {
	src := newSource(writeInputs(t, t.TempDir()))

	in, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, in.Sites, 2, "sites are deduplicated by the pipeline, not the loader")
	require.Len(t, in.Samples, 1)
	assert.Equal(t, "S1", in.Samples[0].SiteID)
	require.Len(t, in.Populations, 1)
	assert.Equal(t, int64(11689442), in.Populations[0].Population)
	require.Len(t, in.Boundaries, 1)
	assert.Equal(t, "Ohio", in.Boundaries[0].Name)
}

func TestLoad_MissingInputsReportedTogether(t *testing.T) {
	p := writeInputs(t, t.TempDir())
	require.NoError(t, os.Remove(p.Samples))
	require.NoError(t, os.Remove(p.Boundaries))

	_, err := newSource(p).Load(context.Background())
	require.ErrorIs(t, err, pipeline.ErrMissingInput)
	assert.Contains(t, err.Error(), "samples")
	assert.Contains(t, err.Error(), "boundaries")
	assert.NotContains(t, err.Error(), "population")
}

func TestLoad_CancelledContext(t *testing.T) {
	src := newSource(writeInputs(t, t.TempDir()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
