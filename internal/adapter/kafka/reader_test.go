package kafka

import (
	"io"
	"log/slog"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-animation-service/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewReaderConfig(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:   []string{"broker1:9092", "broker2:9092"},
		KafkaFeedTopic: "hazard-events",
		KafkaGroupID:   "hazard-animation",
	}
	r := NewReader(cfg, discardLogger())
	defer r.Close()

	rc := r.reader.Config()
	assert.Equal(t, cfg.KafkaBrokers, rc.Brokers)
	assert.Equal(t, "hazard-events", rc.Topic)
	assert.Equal(t, "hazard-animation", rc.GroupID)
}

func TestToRecord(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:   []string{"localhost:9092"},
		KafkaFeedTopic: "hazard-events",
		KafkaGroupID:   "hazard-animation",
	}
	r := NewReader(cfg, discardLogger())
	defer r.Close()

	msg := kafkago.Message{
		Topic:     "hazard-events",
		Partition: 2,
		Offset:    41,
		Value:     []byte(`{"dataset":"quakes"}`),
	}
	rec := r.toRecord(msg)

	assert.Equal(t, msg.Value, rec.Value)
	assert.Equal(t, "hazard-events", rec.Topic)
	assert.Equal(t, 2, rec.Partition)
	assert.Equal(t, int64(41), rec.Offset)
	require.NotNil(t, rec.Commit)
}
