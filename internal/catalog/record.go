package catalog

import (
	"errors"
	"fmt"
	"math"

	"hicat/internal/sky"
)

var (
	// ErrMalformedRecord marks a detection that cannot be trusted for matching.
	ErrMalformedRecord = errors.New("malformed detection record")
	// ErrEmptyCatalog is returned when no detection survives filtering.
	ErrEmptyCatalog = errors.New("empty catalog")
)

// RecordError locates a malformed record. Line is 1-based for table input
// and 0 when the record did not come from a file; Index is the position in
// the record slice (or -1 when it never made it into one).
type RecordError struct {
	Source string
	Line   int
	Index  int
	Reason string
}

func (e *RecordError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.Source, e.Line, ErrMalformedRecord, e.Reason)
	case e.Index >= 0:
		return fmt.Sprintf("record %d: %s: %s", e.Index, ErrMalformedRecord, e.Reason)
	default:
		return fmt.Sprintf("%s: %s", ErrMalformedRecord, e.Reason)
	}
}

func (e *RecordError) Unwrap() error { return ErrMalformedRecord }

// DetectionRecord is one candidate source found in one tile.
type DetectionRecord struct {
	TileID  int
	LocalID int

	RA          float64 // deg
	Dec         float64 // deg
	CentralFreq float64 // Hz

	Size          float64 // arcsec
	Flux          float64 // Jy Hz
	PositionAngle float64 // deg
	Inclination   float64 // deg
	LineWidth     float64 // km/s

	NoiseRMS float64
}

// Position returns the record's sky position.
func (r DetectionRecord) Position() sky.Position { return sky.Position{RA: r.RA, Dec: r.Dec} }

// Validate reports why a record cannot take part in matching, or nil.
func (r DetectionRecord) Validate() error {
	switch {
	case !isFinite(r.RA):
		return fmt.Errorf("non-finite ra %v", r.RA)
	case !isFinite(r.Dec):
		return fmt.Errorf("non-finite dec %v", r.Dec)
	case r.Dec < -90 || r.Dec > 90:
		return fmt.Errorf("dec %v outside [-90, 90]", r.Dec)
	case !isFinite(r.CentralFreq):
		return fmt.Errorf("non-finite central_freq %v", r.CentralFreq)
	}
	return nil
}

// FinalCatalogEntry is a surviving detection with its global id.
type FinalCatalogEntry struct {
	ID int

	RA          float64
	Dec         float64
	Size        float64
	Flux        float64
	CentralFreq float64

	PositionAngle float64
	Inclination   float64
	LineWidth     float64
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
