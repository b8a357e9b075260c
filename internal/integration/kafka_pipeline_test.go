//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/quake-map/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map/internal/adapter/leaflet"
	"github.com/couchcryptid/quake-map/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/couchcryptid/quake-map/internal/pipeline"
)

const testEventsTopic = "test-quake-events"

// publishedEvent holds a deserialized message read from the events topic.
type publishedEvent struct {
	Quake   domain.Quake
	Key     string
	Headers map[string]string
}

// readPublished reads a single message from the consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedEvent {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from events topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var quake domain.Quake
	require.NoError(t, json.Unmarshal(msg.Value, &quake), "unmarshal event payload")

	return publishedEvent{
		Quake:   quake,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

// startKafka runs a single-node Kafka broker in a container and returns its
// bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID(fmt.Sprintf("quake-test-%d", time.Now().UnixNano())))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err, "resolve brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic so publish order is preserved.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}), "create topic")
}

func newConsumer(t *testing.T, broker, topic string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       topic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// serveFeed returns a test server that responds to every request with body.
func serveFeed(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func readMockFeed(t *testing.T) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "..", "data", "mock", "usgs_feed_260314.geojson"))
	require.NoError(t, err, "read mock feed fixture")
	return raw
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestWriterPublishesBatch verifies the adapter layer: kafka.Writer produces
// one message per quake with the ID as key and snapshot provenance headers.
func TestWriterPublishesBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testEventsTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testEventsTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	quakes := []domain.Quake{
		{
			ID: "us7000test1", EventType: "earthquake",
			Lat: 54.57, Lon: -160.23, Depth: 32.1, Magnitude: 4.6,
			Place: "83 km SSE of Sand Point, Alaska",
			Time:  time.Date(2026, time.March, 14, 15, 9, 21, 0, time.UTC),
		},
		{
			ID: "nc75test002", EventType: "earthquake",
			Lat: 38.825, Lon: -122.789, Depth: 2.3, Magnitude: 1.2,
			Place: "8km NW of The Geysers, CA",
			Time:  time.Date(2026, time.March, 14, 15, 12, 2, 0, time.UTC),
		},
	}
	snap := domain.FeedSnapshot{
		ID:        "snap-integration-1",
		FetchedAt: time.Date(2026, time.March, 14, 15, 10, 0, 0, time.UTC),
		Quakes:    quakes,
	}

	require.NoError(t, writer.PublishBatch(ctx, snap, quakes))

	consumer := newConsumer(t, broker, testEventsTopic)

	first := readPublished(ctx, t, consumer)
	assert.Equal(t, "us7000test1", first.Key)
	assert.Equal(t, "earthquake", first.Headers["event_type"])
	assert.Equal(t, "snap-integration-1", first.Headers["snapshot_id"])
	fetchedAt, err := time.Parse(time.RFC3339, first.Headers["fetched_at"])
	require.NoError(t, err, "fetched_at should be valid RFC3339")
	assert.True(t, fetchedAt.Equal(snap.FetchedAt), "fetched_at header mismatch")
	assert.Equal(t, quakes[0], first.Quake)

	second := readPublished(ctx, t, consumer)
	assert.Equal(t, "nc75test002", second.Key)
	assert.Equal(t, quakes[1], second.Quake)
}

// TestPipelinePublishesFeedEndToEnd wires the full flow (feed fetch, view
// build, Kafka publish) against real Kafka and verifies every mock feed event
// lands on the topic exactly once.
func TestPipelinePublishesFeedEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testEventsTopic)

	raw := readMockFeed(t)
	srv := serveFeed(t, raw)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testEventsTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	fetcher := usgs.NewClient(srv.URL, 5*time.Second, discardLogger())
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(fetcher, leaflet.NewRenderer(""), writer, discardLogger(), metrics, 0)

	require.NoError(t, p.Refresh(ctx))
	cur := p.Current()
	require.NotNil(t, cur)

	wantIDs := []string{
		"us7000m9xa", "nc75091286", "ak0267mkzvtq", "us7000m9yb", "hv74613057",
		"pr71459118", "nn00912447", "ci41130243", "us7000m9zc", "uw62091773",
	}

	consumer := newConsumer(t, broker, testEventsTopic)
	received := make(map[string]publishedEvent, len(wantIDs))
	for len(received) < len(wantIDs) {
		pe := readPublished(ctx, t, consumer)
		received[pe.Key] = pe
	}

	for _, id := range wantIDs {
		pe, ok := received[id]
		require.True(t, ok, "expected event %s on the topic", id)
		assert.Equal(t, id, pe.Quake.ID)
		assert.Equal(t, "earthquake", pe.Headers["event_type"])
		assert.Equal(t, cur.SnapshotID, pe.Headers["snapshot_id"])
	}

	// Spot-check a known event: the Sand Point M4.6.
	sandPoint := received["us7000m9xa"]
	assert.Equal(t, 4.6, sandPoint.Quake.Magnitude)
	assert.Equal(t, 32.1, sandPoint.Quake.Depth)
	assert.Equal(t, "83 km SSE of Sand Point, Alaska", sandPoint.Quake.Place)
	assert.True(t, sandPoint.Quake.Time.Equal(time.Date(2026, time.March, 14, 0, 0, 1, 0, time.UTC)),
		"unexpected origin time %s", sandPoint.Quake.Time)

	// A second refresh over an unchanged feed publishes nothing new.
	require.NoError(t, p.Refresh(ctx))
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no messages after refreshing an unchanged feed")
}
