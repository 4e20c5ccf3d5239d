package dedupe

import (
	"fmt"
	"math"
	"sort"

	"hicat/internal/catalog"
	"hicat/internal/sky"
)

// Default thresholds for SKA-like HI cubes.
const (
	DefaultMaxSeparationArcsec = 3.0
	DefaultMaxFreqDiffHz       = 20e6
)

// Config holds the per-axis proximity thresholds. Both comparisons are
// strict: a pair exactly on a threshold is not a duplicate.
type Config struct {
	MaxSeparationArcsec float64
	MaxFreqDiffHz       float64
}

// DefaultConfig returns the 3 arcsec / 20 MHz thresholds.
func DefaultConfig() Config {
	return Config{MaxSeparationArcsec: DefaultMaxSeparationArcsec, MaxFreqDiffHz: DefaultMaxFreqDiffHz}
}

// Validate rejects thresholds that could never match anything.
func (c Config) Validate() error {
	if !(c.MaxSeparationArcsec > 0) {
		return fmt.Errorf("max separation must be > 0 arcsec (got %v)", c.MaxSeparationArcsec)
	}
	if !(c.MaxFreqDiffHz > 0) {
		return fmt.Errorf("max frequency difference must be > 0 Hz (got %v)", c.MaxFreqDiffHz)
	}
	return nil
}

// Match is one directed nearest-neighbour hit that passed both thresholds.
type Match struct {
	From, To   int
	SepArcsec  float64
	FreqDiffHz float64
}

// Edge is an undirected duplicate pair with the tie-break outcome. Mutual
// is set when each record is the other's match. Drop is -1 when the edge
// removed nothing: a record is only ever dropped by its own match, never
// because something else matched it.
type Edge struct {
	A, B   int // A < B
	Mutual bool
	Keep   int
	Drop   int
}

// Result is everything Resolve decided.
type Result struct {
	Drop     map[int]struct{}
	Matches  []Match
	Edges    []Edge
	Rejected []*catalog.RecordError
}

// Pairs is the number of duplicate pairs: each pair is discovered once from
// each side, so it is half the directed matches.
func (r Result) Pairs() int { return len(r.Matches) / 2 }

// Dropped returns the drop set as a sorted slice.
func (r Result) Dropped() []int {
	out := make([]int, 0, len(r.Drop))
	for i := range r.Drop {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Resolve finds duplicate pairs among records and returns the indices to
// drop. Each valid record has at most one match, its nearest other record
// within the thresholds, and is dropped when it loses the tie-break against
// that match. The record it matched is never dropped on its behalf, so of a
// mutual pair exactly one member goes. Records with a non-finite position or
// frequency are rejected up front: they are dropped and never matched against.
func Resolve(records []catalog.DetectionRecord, cfg Config) Result {
	res := Result{Drop: make(map[int]struct{})}

	valid := make([]int, 0, len(records))
	pos := make([]sky.Position, 0, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			res.Rejected = append(res.Rejected, &catalog.RecordError{Index: i, Reason: err.Error()})
			res.Drop[i] = struct{}{}
			continue
		}
		valid = append(valid, i)
		pos = append(pos, r.Position())
	}

	maxDeg := cfg.MaxSeparationArcsec / sky.ArcsecPerDeg
	idx := sky.NewIndex(pos)
	g := newGraph()
	for k, i := range valid {
		nb, ok := idx.NearestOther(k, maxDeg)
		if !ok {
			continue
		}
		j := valid[nb.Index]
		sep := nb.Sep * sky.ArcsecPerDeg
		df := math.Abs(records[i].CentralFreq - records[j].CentralFreq)
		if sep >= cfg.MaxSeparationArcsec || df >= cfg.MaxFreqDiffHz {
			continue
		}
		res.Matches = append(res.Matches, Match{From: i, To: j, SepArcsec: sep, FreqDiffHz: df})
		g.add(i, j)
	}

	for _, m := range res.Matches {
		if _, drop := tieBreak(records, m.From, m.To); drop == m.From {
			res.Drop[m.From] = struct{}{}
		}
	}
	for _, e := range g.edges() {
		keep, drop := tieBreak(records, e[0], e[1])
		ed := Edge{A: e[0], B: e[1], Mutual: g.mutual(e[0], e[1]), Keep: keep, Drop: -1}
		if g.has(drop, keep) {
			ed.Drop = drop
		}
		res.Edges = append(res.Edges, ed)
	}
	return res
}

// tieBreak keeps the lower-noise record. Equal noise keeps the lower index.
func tieBreak(records []catalog.DetectionRecord, a, b int) (keep, drop int) {
	if a > b {
		a, b = b, a
	}
	if records[b].NoiseRMS < records[a].NoiseRMS {
		return b, a
	}
	return a, b
}
