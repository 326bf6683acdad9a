package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/lead-sites-etl/internal/adapter/http"
	"github.com/couchcryptid/lead-sites-etl/internal/domain"
	"github.com/couchcryptid/lead-sites-etl/internal/pipeline"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockResults struct {
	err    error
	result *pipeline.Result
}

func (m *mockResults) CheckReadiness(_ context.Context) error { return m.err }
func (m *mockResults) Latest() *pipeline.Result               { return m.result }

func geoRecord(siteID, date string, month int) domain.GeolocatedRecord {
	return domain.GeolocatedRecord{
		JoinedRecord: domain.JoinedRecord{
			CleanRecord: domain.CleanRecord{
				MeasurementRecord: domain.MeasurementRecord{SiteID: siteID, ActivityStartDate: date},
				LeadValue:         5,
				LeadValueUGL:      5,
			},
			Site: domain.MonitoringSite{ID: siteID, Latitude: 35, Longitude: -90},
		},
		Point: orb.Point{-90, 35},
		Month: month,
	}
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Dataset: domain.Dataset{
			RunID: "run-1",
			Records: []domain.GeolocatedRecord{
				geoRecord("S1", "2018-03-04", 3),
				geoRecord("S2", "2018-07-01", 7),
				geoRecord("S3", "2018-07-09", 7),
			},
			Regions: []domain.RegionPopulation{
				{Name: "Ohio", Population: 11689442, Geometry: orb.Point{-82, 40}, Properties: map[string]any{"NAME": "Ohio"}},
			},
		},
		Report: pipeline.Report{RunID: "run-1", Stages: []pipeline.StageCount{{Stage: pipeline.StageGeolocated, Rows: 3}}},
	}
}

func newTestServer(readyErr error, result *pipeline.Result) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", &mockResults{err: readyErr, result: result}, "POPESTIMATE2018", logger)
}

func get(t *testing.T, srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(nil, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(nil, sampleResult()), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(fmt.Errorf("not ready yet"), nil), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(nil, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

type sitesBody struct {
	RunID   string              `json:"run_id"`
	Count   int                 `json:"count"`
	Records []map[string]string `json:"records"`
}

func TestSites(t *testing.T) {
	srv := newTestServer(nil, sampleResult())

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantCount int
	}{
		{"all months", "/v1/sites", http.StatusOK, 3},
		{"july", "/v1/sites?month=7", http.StatusOK, 2},
		{"empty month", "/v1/sites?month=12", http.StatusOK, 0},
		{"month zero", "/v1/sites?month=0", http.StatusBadRequest, 0},
		{"not a number", "/v1/sites?month=july", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, tt.target)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			var body sitesBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "run-1", body.RunID)
			assert.Equal(t, tt.wantCount, body.Count)
			assert.Len(t, body.Records, tt.wantCount)
		})
	}
}

func TestSites_RecordShape(t *testing.T) {
	rec := get(t, newTestServer(nil, sampleResult()), "/v1/sites?month=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var body sitesBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Records, 1)
	assert.Equal(t, "S1", body.Records[0]["MonitoringLocationIdentifier"])
	assert.Equal(t, "3", body.Records[0]["Month"])
	assert.Equal(t, "-90", body.Records[0]["x"])
}

func TestRegions(t *testing.T) {
	rec := get(t, newTestServer(nil, sampleResult()), "/v1/regions")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Ohio", fc.Features[0].Properties.MustString("NAME"))
	assert.InDelta(t, 11689442, fc.Features[0].Properties.MustFloat64("POPESTIMATE2018"), 0)
}

func TestReport(t *testing.T) {
	rec := get(t, newTestServer(nil, sampleResult()), "/v1/report")
	require.Equal(t, http.StatusOK, rec.Code)

	var rep pipeline.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "run-1", rep.RunID)
	n, ok := rep.Count(pipeline.StageGeolocated)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestDatasetRoutesUnavailableBeforeFirstRun(t *testing.T) {
	srv := newTestServer(pipeline.ErrNotReady, nil)
	for _, target := range []string{"/v1/sites", "/v1/regions", "/v1/report"} {
		rec := get(t, srv, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}
