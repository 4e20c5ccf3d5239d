// Package pipeline runs the per-tile stages of a survey: cut the tile out of
// the cube, run the source finder on it, and adapt its catalogue to
// detection records.
//
// The external tools sit behind Runner. ExecRunner shells out; tests use
// a mock. Run fans tiles out over a bounded worker group and returns the
// results in tile order.
package pipeline
