// Package sky holds the spherical geometry used to match detections across
// tiles. Positions are (ra, dec) in degrees and separations are great-circle
// angles. It never imports catalog, dedupe, or anything under app; keep it
// geometry-only.
package sky
