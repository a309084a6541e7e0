package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/hazard-animation-service/internal/adapter/http"
	"github.com/couchcryptid/hazard-animation-service/internal/animation"
	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/observability"
	"github.com/couchcryptid/hazard-animation-service/internal/track"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

// mockEngine records control calls and returns scripted results.
type mockEngine struct {
	datasets     []string
	startOK      bool
	lastAnimCfg  animation.Config
	lastTrackCfg track.Config
	lastDataset  string
	seeks        []time.Time
	steps        []int
	plays        int
	pauses       int
	stops        int
	snapshotNow  time.Time
}

func (m *mockEngine) Datasets() []string { return m.datasets }

func (m *mockEngine) StartAnimation(dataset string, cfg animation.Config) bool {
	m.lastDataset = dataset
	m.lastAnimCfg = cfg
	return m.startOK
}

func (m *mockEngine) StartTrack(dataset string, cfg track.Config) bool {
	m.lastDataset = dataset
	m.lastTrackCfg = cfg
	return m.startOK
}

func (m *mockEngine) Seek(ts time.Time) { m.seeks = append(m.seeks, ts) }
func (m *mockEngine) Step(delta int)    { m.steps = append(m.steps, delta) }
func (m *mockEngine) Play()             { m.plays++ }
func (m *mockEngine) Pause()            { m.pauses++ }
func (m *mockEngine) StopAll()          { m.stops++ }

func (m *mockEngine) Snapshot(dataset string, _ domain.HazardType, now time.Time) (*geojson.FeatureCollection, bool) {
	m.snapshotNow = now
	if dataset != "quakes" {
		return nil, false
	}
	fc := geojson.NewFeatureCollection()
	fc.AddFeature(geojson.NewPointFeature([]float64{142.37, 38.32}))
	return fc, true
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(engine *mockEngine, readyErr error) *httpadapter.Server {
	hub := httpadapter.NewHub(discardLogger(), observability.NewMetricsForTesting())
	return httpadapter.NewServer(":0", engine, &mockReadiness{err: readyErr}, hub, discardLogger())
}

func doRequest(srv *httpadapter.Server, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&mockEngine{}, nil)
	rec := doRequest(srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz(t *testing.T) {
	t.Run("200 when ready", func(t *testing.T) {
		srv := newTestServer(&mockEngine{}, nil)
		rec := doRequest(srv, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("503 when not ready", func(t *testing.T) {
		srv := newTestServer(&mockEngine{}, fmt.Errorf("no datasets cached yet"))
		rec := doRequest(srv, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "no datasets cached yet", body["error"])
	})
}

func TestDatasets(t *testing.T) {
	engine := &mockEngine{datasets: []string{"quakes", "idalia"}}
	srv := newTestServer(engine, nil)
	rec := doRequest(srv, http.MethodGet, "/datasets", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"quakes", "idalia"}, body["datasets"])
}

func TestSnapshot(t *testing.T) {
	srv := newTestServer(&mockEngine{}, nil)

	t.Run("returns the feature collection", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/datasets/quakes/snapshot?type=earthquake", "")
		require.Equal(t, http.StatusOK, rec.Code)

		fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
		require.NoError(t, err)
		assert.Len(t, fc.Features, 1)
	})

	t.Run("404 for unknown dataset", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/datasets/missing/snapshot?type=earthquake", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("400 for bad hazard type", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/datasets/quakes/snapshot?type=asteroid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("evaluates at the injected clock's now", func(t *testing.T) {
		frozen := time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)
		domain.SetClock(clockwork.NewFakeClockAt(frozen))
		t.Cleanup(func() { domain.SetClock(nil) })

		engine := &mockEngine{}
		rec := doRequest(newTestServer(engine, nil), http.MethodGet,
			"/datasets/quakes/snapshot?type=earthquake", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, frozen, engine.snapshotNow)
	})
}

func TestStartAnimation(t *testing.T) {
	t.Run("201 and config mapped through", func(t *testing.T) {
		engine := &mockEngine{startOK: true}
		srv := newTestServer(engine, nil)
		rec := doRequest(srv, http.MethodPost, "/animations", `{
			"dataset": "quakes",
			"id": "tohoku",
			"label": "Tohoku sequence",
			"mode": "accumulative",
			"granularity": "2h",
			"window": "48h",
			"renderer": "map",
			"event_type": "earthquake"
		}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "quakes", engine.lastDataset)
		assert.Equal(t, animation.ModeAccumulative, engine.lastAnimCfg.Mode)
		assert.Equal(t, 2*time.Hour, engine.lastAnimCfg.Granularity)
		assert.Equal(t, 48*time.Hour, engine.lastAnimCfg.Window)
		assert.Equal(t, domain.Earthquake, engine.lastAnimCfg.Type)
	})

	t.Run("422 when the engine refuses", func(t *testing.T) {
		srv := newTestServer(&mockEngine{startOK: false}, nil)
		rec := doRequest(srv, http.MethodPost, "/animations",
			`{"dataset":"quakes","id":"x","mode":"accumulative","renderer":"map"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("400 on malformed body or duration", func(t *testing.T) {
		srv := newTestServer(&mockEngine{startOK: true}, nil)
		assert.Equal(t, http.StatusBadRequest,
			doRequest(srv, http.MethodPost, "/animations", `{not json`).Code)
		assert.Equal(t, http.StatusBadRequest,
			doRequest(srv, http.MethodPost, "/animations", `{"granularity":"fast"}`).Code)
	})
}

func TestStartTrack(t *testing.T) {
	engine := &mockEngine{startOK: true}
	srv := newTestServer(engine, nil)
	rec := doRequest(srv, http.MethodPost, "/tracks", `{
		"dataset": "idalia",
		"id": "idalia",
		"mode": "focused",
		"renderer": "map",
		"zoom": 7
	}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "idalia", engine.lastDataset)
	assert.Equal(t, track.ModeFocused, engine.lastTrackCfg.Mode)
	assert.Equal(t, 7.0, engine.lastTrackCfg.Zoom)
}

func TestCursorCommands(t *testing.T) {
	engine := &mockEngine{}
	srv := newTestServer(engine, nil)

	rec := doRequest(srv, http.MethodPost, "/cursor/seek", `{"time":"2011-03-11T05:46:24Z"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, engine.seeks, 1)
	assert.Equal(t, time.Date(2011, time.March, 11, 5, 46, 24, 0, time.UTC), engine.seeks[0])

	assert.Equal(t, http.StatusBadRequest,
		doRequest(srv, http.MethodPost, "/cursor/seek", `{}`).Code)

	rec = doRequest(srv, http.MethodPost, "/cursor/step", `{"steps":-3}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, engine.steps, 1)
	assert.Equal(t, -3, engine.steps[0])

	assert.Equal(t, http.StatusBadRequest,
		doRequest(srv, http.MethodPost, "/cursor/step", `{}`).Code)

	assert.Equal(t, http.StatusNoContent, doRequest(srv, http.MethodPost, "/cursor/play", "").Code)
	assert.Equal(t, http.StatusNoContent, doRequest(srv, http.MethodPost, "/cursor/pause", "").Code)
	assert.Equal(t, 1, engine.plays)
	assert.Equal(t, 1, engine.pauses)
}

func TestStopAll(t *testing.T) {
	engine := &mockEngine{}
	srv := newTestServer(engine, nil)
	rec := doRequest(srv, http.MethodDelete, "/animations", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, engine.stops)
}
