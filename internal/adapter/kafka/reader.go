// Package kafka adapts a Kafka topic into the orchestrator's feed source.
package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/hazard-animation-service/internal/config"
	"github.com/couchcryptid/hazard-animation-service/internal/orchestrator"
)

// fetchWait bounds how long one FetchBatch call blocks waiting for the
// first message, so an idle topic still lets the feed loop observe
// cancellation.
const fetchWait = 2 * time.Second

// Reader consumes hazard feed records from Kafka.
// It implements orchestrator.BatchSource.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a consumer-group reader for the configured feed topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaFeedTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
	return &Reader{reader: r, logger: logger}
}

// FetchBatch blocks for up to fetchWait for the first message, then drains
// whatever else is immediately available up to max. Each record carries a
// commit hook bound to its own message so the feed acknowledges exactly
// what it applied.
func (r *Reader) FetchBatch(ctx context.Context, max int) ([]orchestrator.RawRecord, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchWait)
	defer cancel()

	records := make([]orchestrator.RawRecord, 0, max)
	for len(records) < max {
		msg, err := r.reader.FetchMessage(fetchCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				break
			}
			if len(records) > 0 {
				break
			}
			return nil, err
		}
		records = append(records, r.toRecord(msg))
	}
	return records, nil
}

func (r *Reader) toRecord(msg kafkago.Message) orchestrator.RawRecord {
	return orchestrator.RawRecord{
		Value:     msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		},
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}
