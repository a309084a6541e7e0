// Package domain models natural-hazard events as they arrive from upstream
// feeds and normalizes them into the single canonical record the animation
// engine operates on.
//
// # Data Source
//
// Event datasets are GeoJSON FeatureCollections assembled upstream from
// public hazard catalogs (USGS earthquake feeds, Smithsonian volcano reports,
// NOAA/NHC storm advisories, NIFC fire perimeters). Storm tracks additionally
// arrive as flat position records carrying per-quadrant wind radii. Both
// shapes are normalized at this boundary so the mode algorithms never have to
// sniff the input shape again.
//
// # Property Conventions
//
// Upstream catalogs disagree on property names, so lookups accept aliases:
//
//	time field:  "time", "datetime", "date", "timestamp", "origin_time"
//	end field:   "end_time", "endtime", "end_date", "expires"
//	magnitude:   "mag", "magnitude"
//	distance:    "distance_km", "dist_km", "distance"
//	source flag: "is_source", "isSource", "source_event"
//
// Time values may be ISO-8601 strings or epoch numbers. Epoch values at or
// above 1e11 are interpreted as milliseconds, smaller ones as seconds (1e11
// seconds is the year 5138, well past any plausible observation).
//
// # Fail-Open Parsing
//
// A record whose time field cannot be parsed is never dropped here. It is
// normalized with TimeValid=false and the lifecycle filter renders it at full
// opacity instead of hiding data behind a parse bug. Visibility errors are
// loud; silent data loss is not.
package domain
