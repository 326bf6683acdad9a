//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/lead-sites-etl/internal/adapter/filesource"
	"github.com/couchcryptid/lead-sites-etl/internal/adapter/kafka"
	"github.com/couchcryptid/lead-sites-etl/internal/domain"
	"github.com/couchcryptid/lead-sites-etl/internal/observability"
	"github.com/couchcryptid/lead-sites-etl/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "lead-measurements-test"

// fixtureDir holds the CLI fixtures, shared so the counts stay in one place.
var fixtureDir = filepath.Join("..", "..", "cmd", "leadetl", "testdata")

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("lead-etl-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPipelineExportsToKafka runs the fixture inputs through the pipeline with
// the Kafka sink and reads every record back from the topic.
func TestPipelineExportsToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := filesource.New(filesource.Paths{
		Sites:      filepath.Join(fixtureDir, "sites.csv"),
		Samples:    filepath.Join(fixtureDir, "samples.csv"),
		Population: filepath.Join(fixtureDir, "population.csv"),
		Boundaries: filepath.Join(fixtureDir, "states.geojson"),
	}, filesource.Columns{
		PopulationName:  "NAME",
		PopulationValue: "POPESTIMATE2018",
		BoundaryName:    "NAME",
	}, logger)

	writer := kafka.NewWriter([]string{broker}, testSinkTopic, logger)
	defer writer.Close()

	p := pipeline.New(src, []pipeline.Exporter{writer}, pipeline.Options{
		BoundingBox:     domain.ContiguousUS,
		ExcludedRegions: []string{"Alaska", "Hawaii"},
	}, logger, observability.NewMetricsForTesting(), nil)

	res, err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, res.Dataset.Records, 2)
	assert.Equal(t, 2, res.Report.Exported["kafka"])

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("lead-etl-test-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	defer reader.Close()

	for i, want := range res.Dataset.Records {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := reader.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read message %d", i)

		assert.Equal(t, kafka.MessageKey(want), string(msg.Key))

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, res.Report.RunID, headers["run_id"])
		assert.Equal(t, strconv.Itoa(want.Month), headers["month"])

		var row map[string]string
		require.NoError(t, json.Unmarshal(msg.Value, &row))
		assert.Equal(t, want.SiteID, row["MonitoringLocationIdentifier"])
		assert.Equal(t, want.ActivityStartDate, row["ActivityStartDate"])
		assert.Contains(t, row["geometry"], "POINT")
	}
}
