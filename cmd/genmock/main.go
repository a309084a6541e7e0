// Command genmock generates mock hazard dataset fixtures for local
// development and the test suites: a mainshock-plus-aftershocks earthquake
// sequence, a tsunami radial dataset with distance-tagged runups, a
// hurricane track with quadrant wind radii, and daily wildfire perimeters.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
)

var baseDate = time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)

// datasetFile matches the shape cmd/animator loads from DATASET_DIR.
type datasetFile struct {
	EventType  string                     `json:"event_type"`
	TimeField  string                     `json:"time_field,omitempty"`
	Collection *geojson.FeatureCollection `json:"collection,omitempty"`
	Track      []domain.TrackPosition     `json:"track,omitempty"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for dataset fixtures")
	seed := flag.Int64("seed", 1, "random seed, fixed for reproducible fixtures")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))

	fixtures := map[string]datasetFile{
		"earthquake-sequence.json": earthquakeSequence(rng),
		"tsunami-runups.json":      tsunamiRunups(rng),
		"hurricane-track.json":     hurricaneTrack(),
		"wildfire-perimeters.json": wildfirePerimeters(rng),
	}

	for name, file := range fixtures {
		path := filepath.Join(*outDir, name)
		if err := writeJSON(path, file); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		log.Printf("wrote %s", path)
	}
	return nil
}

// earthquakeSequence is a M7.1 mainshock followed by decaying aftershocks
// spread over ten days.
func earthquakeSequence(rng *rand.Rand) datasetFile {
	fc := geojson.NewFeatureCollection()

	main := geojson.NewPointFeature([]float64{142.37, 38.32})
	main.Properties = map[string]interface{}{
		"id":   "mainshock",
		"mag":  7.1,
		"time": baseDate.UnixMilli(),
	}
	fc.AddFeature(main)

	for i := 0; i < 40; i++ {
		// Aftershock rate decays roughly hyperbolically with time.
		offsetHours := math.Pow(float64(i+1), 1.7) * rng.Float64() * 2
		f := geojson.NewPointFeature([]float64{
			142.37 + rng.Float64()*0.8 - 0.4,
			38.32 + rng.Float64()*0.8 - 0.4,
		})
		f.Properties = map[string]interface{}{
			"id":   fmt.Sprintf("aftershock-%02d", i),
			"mag":  3.5 + rng.Float64()*2.5,
			"time": baseDate.Add(time.Duration(offsetHours * float64(time.Hour))).UnixMilli(),
		}
		fc.AddFeature(f)
	}
	return datasetFile{EventType: "earthquake", Collection: fc}
}

// tsunamiRunups is one source event plus distance-tagged runup observations
// for the radial mode.
func tsunamiRunups(rng *rand.Rand) datasetFile {
	fc := geojson.NewFeatureCollection()

	src := geojson.NewPointFeature([]float64{142.37, 38.32})
	src.Properties = map[string]interface{}{
		"id":        "source",
		"mag":       9.0,
		"time":      baseDate.UnixMilli(),
		"is_source": true,
	}
	fc.AddFeature(src)

	stations := []struct {
		id       string
		lon, lat float64
		distKm   float64
	}{
		{"miyako", 141.96, 39.64, 160},
		{"hilo", -155.07, 19.73, 6250},
		{"crescent-city", -124.20, 41.76, 7800},
		{"valparaiso", -71.63, -33.05, 17000},
	}
	for _, s := range stations {
		f := geojson.NewPointFeature([]float64{s.lon, s.lat})
		f.Properties = map[string]interface{}{
			"id":          s.id,
			"time":        baseDate.UnixMilli(),
			"dist_km":     s.distKm,
			"max_runup_m": 1 + rng.Float64()*9,
		}
		fc.AddFeature(f)
	}
	return datasetFile{EventType: "tsunami", Collection: fc}
}

// hurricaneTrack is a five-day track intensifying to category 4 with
// quadrant wind radii once the storm organizes.
func hurricaneTrack() datasetFile {
	fixes := []domain.TrackPosition{
		{Lat: 14.2, Lon: -48.0, WindSpeedKt: 35},
		{Lat: 14.9, Lon: -51.3, WindSpeedKt: 45},
		{Lat: 15.8, Lon: -54.6, WindSpeedKt: 60},
		{Lat: 16.9, Lon: -57.8, WindSpeedKt: 75, Category: "1"},
		{Lat: 18.2, Lon: -60.7, WindSpeedKt: 90, Category: "2",
			WindRadii: map[int]domain.QuadrantRadii{
				34: {NE: 110, SE: 100, SW: 60, NW: 80},
				50: {NE: 50, SE: 40, SW: 25, NW: 35},
			}},
		{Lat: 19.8, Lon: -63.2, WindSpeedKt: 105, Category: "3",
			WindRadii: map[int]domain.QuadrantRadii{
				34: {NE: 130, SE: 120, SW: 70, NW: 95},
				50: {NE: 60, SE: 50, SW: 30, NW: 45},
				64: {NE: 30, SE: 25, SW: 15, NW: 20},
			}},
		{Lat: 21.7, Lon: -65.4, WindSpeedKt: 120, Category: "4",
			WindRadii: map[int]domain.QuadrantRadii{
				34: {NE: 150, SE: 140, SW: 85, NW: 110},
				50: {NE: 70, SE: 60, SW: 40, NW: 50},
				64: {NE: 35, SE: 30, SW: 20, NW: 25},
			}},
		{Lat: 24.0, Lon: -67.1, WindSpeedKt: 110, Category: "3",
			WindRadii: map[int]domain.QuadrantRadii{
				34: {NE: 160, SE: 140, SW: 90, NW: 120},
				50: {NE: 65, SE: 55, SW: 35, NW: 45},
			}},
		{Lat: 26.8, Lon: -68.3, WindSpeedKt: 85, Category: "2"},
		{Lat: 30.1, Lon: -68.9, WindSpeedKt: 60},
	}
	for i := range fixes {
		fixes[i].Time = baseDate.Add(time.Duration(i) * 12 * time.Hour)
		fixes[i].PressureMb = 1010 - fixes[i].WindSpeedKt/2
	}
	return datasetFile{EventType: "hurricane", Track: fixes}
}

// wildfirePerimeters is a week of daily fire perimeter polygons growing
// around an origin.
func wildfirePerimeters(rng *rand.Rand) datasetFile {
	fc := geojson.NewFeatureCollection()
	const originLon, originLat = -119.45, 37.10

	for day := 0; day < 7; day++ {
		radius := 0.02 * float64(day+1)
		ring := make([][]float64, 0, 13)
		for i := 0; i < 12; i++ {
			angle := float64(i) * math.Pi / 6
			r := radius * (0.7 + rng.Float64()*0.6)
			ring = append(ring, []float64{
				originLon + r*math.Cos(angle),
				originLat + r*math.Sin(angle),
			})
		}
		ring = append(ring, ring[0])

		f := geojson.NewPolygonFeature([][][]float64{ring})
		f.Properties = map[string]interface{}{
			"id":       fmt.Sprintf("perimeter-day%d", day),
			"area_km2": math.Pi * math.Pow(radius*111.32, 2),
			"time":     baseDate.Add(time.Duration(day) * 24 * time.Hour).UnixMilli(),
		}
		fc.AddFeature(f)
	}
	return datasetFile{EventType: "wildfire", Collection: fc}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
