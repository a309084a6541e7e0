// Command animator runs the hazard animation service: it loads hazard
// datasets, optionally tails a Kafka feed, and exposes the animation control
// API plus a websocket frame stream.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	geojson "github.com/paulmach/go.geojson"

	httpadapter "github.com/couchcryptid/hazard-animation-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hazard-animation-service/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-animation-service/internal/animation"
	"github.com/couchcryptid/hazard-animation-service/internal/config"
	"github.com/couchcryptid/hazard-animation-service/internal/cursor"
	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/observability"
	"github.com/couchcryptid/hazard-animation-service/internal/orchestrator"
	"github.com/couchcryptid/hazard-animation-service/internal/render"
	"github.com/couchcryptid/hazard-animation-service/internal/track"
)

// datasetFile is the on-disk dataset shape: a GeoJSON collection plus the
// metadata needed to normalize it.
type datasetFile struct {
	EventType  string                     `json:"event_type"`
	TimeField  string                     `json:"time_field,omitempty"`
	Collection *geojson.FeatureCollection `json:"collection,omitempty"`
	Track      []domain.TrackPosition     `json:"track,omitempty"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	hub := httpadapter.NewHub(logger, metrics)
	registry := render.NewRegistry()
	registry.Register("map", render.NewBroadcast(hub, nil))
	registry.Register("log", &render.Log{Logger: logger})

	slider := cursor.NewSlider(domain.Now().UTC())
	anim := animation.NewSession(registry, slider, logger, metrics, nil)
	tracks := track.NewSession(registry, slider, logger, metrics)
	cache := orchestrator.NewCache(cfg.CacheSize)
	orch := orchestrator.New(cache, slider, registry, anim, tracks, logger, metrics)

	if cfg.DatasetDir != "" {
		if err := loadDatasets(cfg.DatasetDir, orch, logger); err != nil {
			logger.Error("dataset load failed", "dir", cfg.DatasetDir, "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reader *kafkaadapter.Reader
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		feed := orchestrator.NewFeed(reader, cache, logger, metrics, cfg.FeedBatchSize)
		go func() {
			if err := feed.Run(ctx); err != nil {
				logger.Error("feed error", "error", err)
			}
		}()
		logger.Info("kafka feed enabled", "topic", cfg.KafkaFeedTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka feed disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, orch, orch, hub, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	orch.StopAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// loadDatasets reads every .json file in dir as a dataset; the file's base
// name becomes the dataset id.
func loadDatasets(dir string, orch *orchestrator.Orchestrator, logger *slog.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var file datasetFile
		if err := json.Unmarshal(data, &file); err != nil {
			logger.Warn("skipping unreadable dataset", "file", path, "error", err)
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")

		switch {
		case len(file.Track) > 0:
			orch.LoadTrack(id, file.Track)
		case file.Collection != nil:
			typ := domain.HazardType(file.EventType)
			if !typ.Valid() {
				logger.Warn("skipping dataset with unknown event type",
					"file", path, "event_type", file.EventType)
				continue
			}
			orch.LoadEvents(id, domain.NormalizeCollection(file.Collection, file.TimeField, typ, logger))
		default:
			logger.Warn("skipping empty dataset", "file", path)
		}
	}
	return nil
}
