package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/observability"
)

// RawRecord is one message from the hazard feed before parsing. Commit, when
// set, acknowledges the record at the source after it has been applied.
type RawRecord struct {
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
	Commit    func(ctx context.Context) error
}

// BatchSource reads up to max raw records from the feed transport.
type BatchSource interface {
	FetchBatch(ctx context.Context, max int) ([]RawRecord, error)
}

// feedEnvelope is the wire shape of one feed record: which dataset it belongs
// to, how to classify and time-parse it, and the GeoJSON feature itself.
type feedEnvelope struct {
	Dataset   string          `json:"dataset"`
	EventType string          `json:"event_type"`
	TimeField string          `json:"time_field,omitempty"`
	Feature   json.RawMessage `json:"feature"`
}

// Feed consumes hazard records from a source and grows cached datasets.
// Parse failures skip and commit the record so one malformed message cannot
// wedge the feed.
type Feed struct {
	source    BatchSource
	cache     *Cache
	logger    *slog.Logger
	metrics   *observability.Metrics
	batchSize int
	ready     atomic.Bool
}

// NewFeed wires a feed to its source and the orchestrator's cache.
func NewFeed(source BatchSource, cache *Cache, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Feed {
	return &Feed{
		source:    source,
		cache:     cache,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil once the feed has applied at least one record.
func (f *Feed) CheckReadiness(_ context.Context) error {
	if !f.ready.Load() {
		return errors.New("feed has not applied any records yet")
	}
	return nil
}

// Run consumes the feed until the context is cancelled. Fetch errors retry
// with exponential backoff, 200ms doubling to a 5s cap.
func (f *Feed) Run(ctx context.Context) error {
	f.logger.Info("feed started", "batch_size", f.batchSize)

	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("feed stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !f.consumeBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// consumeBatch runs one fetch-parse-apply cycle. Returns false if the feed
// should stop.
func (f *Feed) consumeBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	batch, err := f.source.FetchBatch(ctx, f.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		f.logger.Error("fetch batch failed", "error", err)
		return f.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(batch) == 0 {
		return ctx.Err() == nil
	}
	*backoff = 200 * time.Millisecond

	applied := 0
	for _, raw := range batch {
		if f.applyRecord(raw) {
			applied++
		}
		f.commitRecord(ctx, raw)
	}
	if applied > 0 {
		f.ready.Store(true)
	}
	return true
}

// applyRecord parses one raw record and appends it to its dataset. Returns
// false when the record was skipped.
func (f *Feed) applyRecord(raw RawRecord) bool {
	var env feedEnvelope
	if err := json.Unmarshal(raw.Value, &env); err != nil {
		f.skipRecord(raw, "envelope", err)
		return false
	}
	if env.Dataset == "" {
		f.skipRecord(raw, "envelope", errors.New("missing dataset"))
		return false
	}
	typ := domain.HazardType(env.EventType)
	if !typ.Valid() {
		f.skipRecord(raw, "event_type", errors.New("unknown hazard type "+env.EventType))
		return false
	}
	feature, err := geojson.UnmarshalFeature(env.Feature)
	if err != nil {
		f.skipRecord(raw, "feature", err)
		return false
	}

	event := domain.NormalizeFeature(feature, env.TimeField, typ, f.logger)
	f.cache.Append(env.Dataset, event)
	f.metrics.FeedEventsConsumed.Inc()
	return true
}

func (f *Feed) skipRecord(raw RawRecord, stage string, err error) {
	f.logger.Warn("feed record skipped",
		"stage", stage,
		"error", err,
		"topic", raw.Topic,
		"partition", raw.Partition,
		"offset", raw.Offset,
	)
	f.metrics.FeedParseErrors.Inc()
}

func (f *Feed) commitRecord(ctx context.Context, raw RawRecord) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		f.logger.Warn("commit record failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func (f *Feed) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
