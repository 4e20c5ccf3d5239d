package sky

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// radiusSlack widens the chord radius so rounding in the chord/angle
// conversion can never exclude a neighbour that passes the angular test.
const radiusSlack = 1 + 1e-9

// point is a unit vector tagged with the caller's index.
type point struct {
	v   Vec
	idx int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	return p.v[d] - q.v[d]
}

func (p point) Dims() int { return 3 }

func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	var s float64
	for k := range p.v {
		d := p.v[k] - q.v[k]
		s += d * d
	}
	return s
}

type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{dim: d, points: p}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

type plane struct {
	dim kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool { return p.points[i].v[p.dim] < p.points[j].v[p.dim] }
func (p plane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Swap(i, j int)      { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{dim: p.dim, points: p.points[start:end]}
}

// Neighbour is one result of a radius query.
type Neighbour struct {
	Index int
	Sep   float64 // degrees
}

// Index answers "nearest other position" queries over a fixed set of
// positions using a k-d tree on the unit sphere.
type Index struct {
	vecs []Vec
	tree *kdtree.Tree
}

// NewIndex builds an index over pos. Callers must pass only valid positions.
func NewIndex(pos []Position) *Index {
	vecs := make([]Vec, len(pos))
	pts := make(points, len(pos))
	for i, p := range pos {
		vecs[i] = UnitVector(p.RA, p.Dec)
		pts[i] = point{v: vecs[i], idx: i}
	}
	x := &Index{vecs: vecs}
	if len(pts) > 0 {
		x.tree = kdtree.New(pts, false)
	}
	return x
}

// Len is the number of indexed positions.
func (x *Index) Len() int { return len(x.vecs) }

// Within returns every position other than i that lies within maxDeg of
// position i, ordered by separation and then by index.
func (x *Index) Within(i int, maxDeg float64) []Neighbour {
	if x.tree == nil || i < 0 || i >= len(x.vecs) {
		return nil
	}
	keep := kdtree.NewDistKeeper(ChordSq(maxDeg) * radiusSlack)
	x.tree.NearestSet(keep, point{v: x.vecs[i], idx: i})

	out := make([]Neighbour, 0, keep.Len())
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		p := c.Comparable.(point)
		if p.idx == i {
			continue
		}
		s := Angle(x.vecs[i], p.v)
		if s > maxDeg {
			continue
		}
		out = append(out, Neighbour{Index: p.idx, Sep: s})
	}
	sortNeighbours(out)
	return out
}

// NearestOther returns the closest position to i other than i itself,
// provided it lies within maxDeg. Distance ties go to the lower index.
func (x *Index) NearestOther(i int, maxDeg float64) (Neighbour, bool) {
	nb := x.Within(i, maxDeg)
	if len(nb) == 0 {
		return Neighbour{}, false
	}
	return nb[0], true
}

// ScanNearestOther is the O(N) linear counterpart of Index.NearestOther with
// identical tie rules. It is the reference the tree is checked against.
func ScanNearestOther(pos []Position, i int, maxDeg float64) (Neighbour, bool) {
	if i < 0 || i >= len(pos) {
		return Neighbour{}, false
	}
	vi := UnitVector(pos[i].RA, pos[i].Dec)
	best := Neighbour{Index: -1}
	for j, p := range pos {
		if j == i {
			continue
		}
		s := Angle(vi, UnitVector(p.RA, p.Dec))
		if s > maxDeg {
			continue
		}
		if best.Index < 0 || s < best.Sep || (s == best.Sep && j < best.Index) {
			best = Neighbour{Index: j, Sep: s}
		}
	}
	return best, best.Index >= 0
}

func sortNeighbours(nb []Neighbour) {
	sort.Slice(nb, func(a, b int) bool {
		if nb[a].Sep != nb[b].Sep {
			return nb[a].Sep < nb[b].Sep
		}
		return nb[a].Index < nb[b].Index
	})
}
