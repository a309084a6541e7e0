package domain

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	geojson "github.com/paulmach/go.geojson"
)

var (
	timeAliases     = []string{"time", "datetime", "date", "timestamp", "origin_time"}
	endAliases      = []string{"end_time", "endtime", "end_date", "expires"}
	distanceAliases = []string{"distance_km", "dist_km", "distance"}
	sourceAliases   = []string{"is_source", "isSource", "source_event"}
)

// NormalizeFeature converts a GeoJSON feature into the canonical HazardEvent.
// timeField overrides the alias search when the dataset names its time column
// explicitly; pass "" to search the aliases. A feature whose time field does
// not parse is returned with TimeValid=false, never dropped.
func NormalizeFeature(f *geojson.Feature, timeField string, typ HazardType, logger *slog.Logger) HazardEvent {
	e := HazardEvent{
		Type:       typ,
		Geometry:   f.Geometry,
		Properties: f.Properties,
	}
	e.ID = featureID(f)

	if ts, ok := lookupTime(f.Properties, timeField, timeAliases); ok {
		e.Time = ts
		e.TimeValid = true
	} else {
		logger.Warn("event time field unparseable, rendering fail-open",
			"event_id", e.ID, "time_field", timeField)
	}
	if end, ok := lookupTime(f.Properties, "", endAliases); ok {
		e.EndTime = end
	}

	for _, key := range sourceAliases {
		if b, ok := propBool(f.Properties, key); ok && b {
			e.IsSource = true
			break
		}
	}
	for _, key := range distanceAliases {
		if v, ok := propFloat(f.Properties, key); ok {
			e.DistanceKm = v
			break
		}
	}
	return e
}

// NormalizeCollection normalizes every feature in a collection.
func NormalizeCollection(fc *geojson.FeatureCollection, timeField string, typ HazardType, logger *slog.Logger) []HazardEvent {
	events := make([]HazardEvent, 0, len(fc.Features))
	for _, f := range fc.Features {
		events = append(events, NormalizeFeature(f, timeField, typ, logger))
	}
	return events
}

// NormalizePosition converts a flat storm-track position into the canonical
// record, so mode algorithms handle exactly one event shape.
func NormalizePosition(p TrackPosition, typ HazardType) HazardEvent {
	props := map[string]interface{}{
		"wind_speed_kt": p.WindSpeedKt,
	}
	if p.PressureMb != 0 {
		props["pressure_mb"] = p.PressureMb
	}
	if p.Category != "" {
		props["category"] = p.Category
	}
	return HazardEvent{
		ID:         fmt.Sprintf("%s-%d", typ, p.Time.Unix()),
		Type:       typ,
		Geometry:   geojson.NewPointGeometry([]float64{p.Lon, p.Lat}),
		Properties: props,
		Time:       p.Time,
		TimeValid:  !p.Time.IsZero(),
	}
}

// ParseEventTime parses a property value as a point in time. Strings are
// tried against RFC 3339 and the common catalog layouts; numbers are epoch
// seconds or milliseconds (>= 1e11 means milliseconds).
func ParseEventTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		return parseTimeString(t)
	case float64:
		return epochToTime(t), true
	case int64:
		return epochToTime(float64(t)), true
	case int:
		return epochToTime(float64(t)), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return epochToTime(f), true
	case time.Time:
		return t, true
	}
	return time.Time{}, false
}

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	// Bare epoch in a string column.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return epochToTime(f), true
	}
	return time.Time{}, false
}

func epochToTime(v float64) time.Time {
	const msThreshold = 1e11
	if v >= msThreshold || v <= -msThreshold {
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Unix(int64(v), 0).UTC()
}

func lookupTime(props map[string]interface{}, explicit string, aliases []string) (time.Time, bool) {
	if explicit != "" {
		v, ok := props[explicit]
		if !ok {
			return time.Time{}, false
		}
		return ParseEventTime(v)
	}
	for _, key := range aliases {
		if v, ok := props[key]; ok {
			if ts, ok := ParseEventTime(v); ok {
				return ts, true
			}
			return time.Time{}, false
		}
	}
	return time.Time{}, false
}

func featureID(f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	if v, ok := f.Properties["id"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func propFloat(props map[string]interface{}, key string) (float64, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func propBool(props map[string]interface{}, key string) (bool, bool) {
	v, ok := props[key]
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		return b == "true" || b == "1", true
	case float64:
		return b != 0, true
	}
	return false, false
}
