package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()

	m.StageRows.WithLabelValues("dedup").Set(7)
	m.RecordsExported.WithLabelValues("csv").Add(7)
	m.PipelineReady.Set(1)

	assert.InDelta(t, 7, testutil.ToFloat64(m.StageRows.WithLabelValues("dedup")), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(m.RecordsExported.WithLabelValues("csv")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PipelineReady), 0)

	// A second set must not collide.
	assert.NotPanics(t, func() { NewMetricsForTesting() })
}
