// Command validate performs integrity checks over a directory of hazard
// dataset fixtures: parseability, time-field coverage, radial source and
// distance requirements, timeline construction, and storm-track ordering.
//
// Usage:
//
//	go run ./cmd/validate -dataset-dir data/mock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/hazard-animation-service/internal/animation"
	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/lifecycle"
)

// datasetFile matches the shape cmd/animator loads from DATASET_DIR.
type datasetFile struct {
	EventType  string                     `json:"event_type"`
	TimeField  string                     `json:"time_field,omitempty"`
	Collection *geojson.FeatureCollection `json:"collection,omitempty"`
	Track      []domain.TrackPosition     `json:"track,omitempty"`
}

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	datasetDir := flag.String("dataset-dir", "", "directory containing dataset fixtures")
	flag.Parse()

	if *datasetDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	phases, err := validateDir(*datasetDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validate: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("      %s\n", e)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func validateDir(dir string) ([]*phase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var phases []*phase

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		p := &phase{name: entry.Name()}
		phases = append(phases, p)

		data, err := os.ReadFile(path)
		if err != nil {
			p.errorf("read: %v", err)
			continue
		}
		var file datasetFile
		if err := json.Unmarshal(data, &file); err != nil {
			p.errorf("parse: %v", err)
			continue
		}

		switch {
		case len(file.Track) > 0:
			validateTrack(p, file.Track)
		case file.Collection != nil:
			validateCollection(p, file, logger)
		default:
			p.errorf("dataset carries neither a collection nor a track")
		}
	}
	return phases, nil
}

func validateCollection(p *phase, file datasetFile, logger *slog.Logger) {
	typ := domain.HazardType(file.EventType)
	if !typ.Valid() {
		p.errorf("unknown event type %q", file.EventType)
		return
	}
	events := domain.NormalizeCollection(file.Collection, file.TimeField, typ, logger)
	if len(events) == 0 {
		p.errorf("no features")
		return
	}

	unparseable := 0
	sources := 0
	for _, e := range events {
		if !e.TimeValid {
			unparseable++
		}
		if e.IsSource {
			sources++
		}
	}
	if unparseable > 0 {
		p.errorf("%d of %d features have unparseable times", unparseable, len(events))
	}

	if typ == domain.Tsunami {
		validateRadial(p, events, sources)
		return
	}
	if sources > 0 {
		p.errorf("%d features marked is_source in a non-radial dataset", sources)
	}

	tl := animation.BuildBucketed(events, time.Hour)
	if tl.Empty() {
		p.errorf("hourly timeline construction produced no steps")
	}
}

func validateRadial(p *phase, events []domain.HazardEvent, sources int) {
	if sources != 1 {
		p.errorf("radial dataset needs exactly one is_source feature, found %d", sources)
	}
	maxKm := 0.0
	for _, e := range events {
		if e.IsSource {
			continue
		}
		if e.DistanceKm <= 0 {
			p.errorf("target %q missing a positive distance", e.ID)
			continue
		}
		if e.DistanceKm > maxKm {
			maxKm = e.DistanceKm
		}
	}
	if maxKm > 0 {
		travel := time.Duration(maxKm / lifecycle.TsunamiWaveSpeedKmh * float64(time.Hour))
		if travel > 48*time.Hour {
			p.errorf("farthest target implies %.0fh of travel, check dist_km units", travel.Hours())
		}
	}
}

func validateTrack(p *phase, fixes []domain.TrackPosition) {
	for i, f := range fixes {
		if f.Time.IsZero() {
			p.errorf("fix %d has no time", i)
		}
		if i > 0 && !fixes[i].Time.After(fixes[i-1].Time) {
			p.errorf("fix %d time does not advance", i)
		}
		if f.Lat < -90 || f.Lat > 90 || f.Lon < -180 || f.Lon > 180 {
			p.errorf("fix %d has out-of-range coordinates", i)
		}
		for kt, radii := range f.WindRadii {
			if kt != 34 && kt != 50 && kt != 64 {
				p.errorf("fix %d has unknown wind threshold %d", i, kt)
			}
			if radii.IsZero() {
				p.errorf("fix %d has an all-zero %d kt extent", i, kt)
			}
		}
	}
}
