package dedupe

import "sort"

// graph is the transient duplicate graph: nodes are record indices and an
// edge joins two records matched from either side. The edge value records
// which directions were matched.
type graph struct {
	set map[[2]int]direction
}

type direction uint8

const (
	lowToHigh direction = 1 << iota // the lower index matched the higher
	highToLow
)

func newGraph() *graph { return &graph{set: make(map[[2]int]direction)} }

// add records the directed match from -> to.
func (g *graph) add(from, to int) {
	if from < to {
		g.set[[2]int{from, to}] |= lowToHigh
		return
	}
	g.set[[2]int{to, from}] |= highToLow
}

// has reports whether the directed match from -> to was added.
func (g *graph) has(from, to int) bool {
	if from < to {
		return g.set[[2]int{from, to}]&lowToHigh != 0
	}
	return g.set[[2]int{to, from}]&highToLow != 0
}

// mutual reports whether a and b are each other's match.
func (g *graph) mutual(a, b int) bool {
	if a > b {
		a, b = b, a
	}
	return g.set[[2]int{a, b}] == lowToHigh|highToLow
}

// edges returns every edge once, ordered by (a, b).
func (g *graph) edges() [][2]int {
	out := make([][2]int, 0, len(g.set))
	for e := range g.set {
		out = append(out, e)
	}
	sort.Slice(out, func(x, y int) bool {
		if out[x][0] != out[y][0] {
			return out[x][0] < out[y][0]
		}
		return out[x][1] < out[y][1]
	})
	return out
}
