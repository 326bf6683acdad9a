package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/lead-sites-etl/internal/domain"
	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	batchSize    = 500
	maxAttempts  = 3
	maxBackoff   = 2 * time.Second
	startBackoff = 200 * time.Millisecond
)

// messageWriter is the subset of *kafkago.Writer the exporter uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes geolocated records to a Kafka topic, one message per record.
// It implements pipeline.Exporter.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	backoff time.Duration
}

// NewWriter creates a Kafka producer for the given brokers and sink topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, backoff: startBackoff}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Export serializes the records and publishes them in batches.
func (w *Writer) Export(ctx context.Context, ds domain.Dataset) error {
	msgs := make([]kafkago.Message, 0, batchSize)
	for i := range ds.Records {
		msg, err := serializeToMessage(ds.RunID, ds.Records[i])
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		if len(msgs) == batchSize {
			if err := w.write(ctx, msgs); err != nil {
				return err
			}
			msgs = msgs[:0]
		}
	}
	if len(msgs) > 0 {
		if err := w.write(ctx, msgs); err != nil {
			return err
		}
	}
	w.logger.Info("published records", "records", len(ds.Records), "run_id", ds.RunID)
	return nil
}

// write publishes one batch, retrying transient failures with exponential backoff.
func (w *Writer) write(ctx context.Context, msgs []kafkago.Message) error {
	backoff := w.backoff
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = w.writer.WriteMessages(ctx, msgs...); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		w.logger.Warn("write messages failed, retrying", "attempt", attempt, "messages", len(msgs), "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("write messages: %w", err)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// MessageKey identifies a record by site and sample date, the dataset's
// uniqueness key.
func MessageKey(r domain.GeolocatedRecord) string {
	return r.SiteID + "|" + r.ActivityStartDate
}

// serializeToMessage marshals a record's flat column map into a Kafka message.
func serializeToMessage(runID string, r domain.GeolocatedRecord) (kafkago.Message, error) {
	data, err := json.Marshal(r.RowMap())
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize lead record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(r)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "month", Value: []byte(strconv.Itoa(r.Month))},
		},
	}, nil
}
