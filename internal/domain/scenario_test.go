package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clean runs the measurement stages in pipeline order.
func clean(t *testing.T, samples []MeasurementRecord, sites []MonitoringSite) []GeolocatedRecord {
	t.Helper()
	filtered, _ := FilterMeasurements(samples)
	joined := JoinSites(filtered, DedupSites(sites))
	deduped := DedupMeasurements(joined)
	inBox := FilterBoundingBox(deduped, ContiguousUS)
	out, err := Geolocate(inBox)
	require.NoError(t, err)
	return out
}

func TestScenario_MixedUnitsAndRejection(t *testing.T) {
	sites := []MonitoringSite{
		{ID: "A", Longitude: -90, Latitude: 35},
		{ID: "B", Longitude: -100, Latitude: 40},
	}
	samples := []MeasurementRecord{
		sample("A", "5", testUGL, "2018-01-10"),
		sample("A", "abc", testUGL, "2018-01-11"),
		sample("B", "0.002", testMGL, "2018-02-05"),
	}

	out := clean(t, samples, sites)

	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].SiteID)
	assert.Equal(t, 5.0, out[0].LeadValueUGL)
	assert.Equal(t, 1, out[0].Month)
	assert.Equal(t, "B", out[1].SiteID)
	assert.InDelta(t, 2.0, out[1].LeadValueUGL, 1e-9)
	assert.Equal(t, 2, out[1].Month)
}

func TestScenario_SameSiteSameDay(t *testing.T) {
	sites := []MonitoringSite{{ID: "A", Longitude: -90, Latitude: 35}}
	samples := []MeasurementRecord{
		sample("A", "3", testUGL, "2018-06-01"),
		sample("A", "7", testUGL, "2018-06-01"),
	}

	out := clean(t, samples, sites)

	require.Len(t, out, 1)
	assert.Equal(t, 7.0, out[0].LeadValueUGL)
}

func TestScenario_OutsideContiguousRegion(t *testing.T) {
	sites := []MonitoringSite{{ID: "AK", Longitude: -150, Latitude: 60}}
	samples := []MeasurementRecord{sample("AK", "12", testUGL, "2018-06-01")}

	out := clean(t, samples, sites)

	assert.Empty(t, out)
}

func TestScenario_UnmatchedSiteDropped(t *testing.T) {
	sites := []MonitoringSite{{ID: "A", Longitude: -90, Latitude: 35}}
	samples := []MeasurementRecord{sample("Z", "12", testUGL, "2018-06-01")}

	out := clean(t, samples, sites)

	assert.Empty(t, out)
}
