// Package trace owns the per-frame tracking data model.
//
// Responsibilities: raw sample ingestion (CSV), frame deduplication,
// optional centered moving-average smoothing, and the error kinds shared
// by every pipeline stage.
// Key types: Sample, TrackPoint, Cost, FieldError.
//
// Dependency rule: trace is the leaf of the pipeline. It must not import
// simplify, segment, exo or any storage package.
package trace
