package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
)

// Writer produces quake events to a Kafka topic.
// It implements pipeline.EventPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes quakes from one snapshot in a single
// WriteMessages call. Keys are the upstream event IDs, which are stable
// across feed regenerations, so downstream consumers can upsert idempotently.
func (w *Writer) PublishBatch(ctx context.Context, snap domain.FeedSnapshot, quakes []domain.Quake) error {
	if len(quakes) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(quakes))
	for i := range quakes {
		msg, err := serializeToMessage(snap, quakes[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Debug("published quake events", "count", len(msgs), "snapshot_id", snap.ID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a quake into a Kafka message with snapshot
// provenance headers.
func serializeToMessage(snap domain.FeedSnapshot, quake domain.Quake) (kafkago.Message, error) {
	data, err := json.Marshal(quake)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize quake event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(quake.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(quake.EventType)},
			{Key: "snapshot_id", Value: []byte(snap.ID)},
			{Key: "fetched_at", Value: []byte(snap.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
