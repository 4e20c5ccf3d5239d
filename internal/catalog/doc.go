// Package catalog holds the per-detection record shared by every merge
// stage, the whitespace table format used between stages, and the final
// assembly step (filter, sort, re-index).
//
// It never imports dedupe, pipeline, writers, or app.
package catalog
