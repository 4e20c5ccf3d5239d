// Package dedupe removes duplicate detections produced by overlapping tiles.
//
// Two records are a duplicate pair when one is the other's nearest
// neighbour on the sky and both the angular and the spectral offsets are
// under their thresholds. A record is dropped when it is noisier than its
// own match (equal noise: the higher index loses); of two records that are
// each other's match exactly one is dropped, and a record that others match
// is never dropped on their account.
// Resolve is pure: no I/O, no logging; callers report Result themselves.
package dedupe
