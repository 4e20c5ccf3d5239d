// Package grid plans the overlapping tile layout over the spatial plane of a
// cube and persists it as the coordinate file read by extraction jobs.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGridConfig is returned for grid parameters that cannot form a
// square grid of non-degenerate tiles. It is an operator error; never retry.
var ErrInvalidGridConfig = errors.New("invalid grid config")

// PixelToWorld maps 0-based pixel coordinates to (ra, dec) in degrees.
type PixelToWorld func(x, y float64) (ra, dec float64)

// Config describes the grid to build.
type Config struct {
	NPix        int // spatial side of the cube in pixels
	NumSubcubes int // total tiles; must be a perfect square
	OverlapPix  int // pixels shared by neighbouring tiles
}

// TileSpec is one tile: its position in planner order and its sky bounding
// box. Pix* keep the overlap-expanded pixel corners for provenance.
type TileSpec struct {
	Index int

	XLo, YLo, XHi, YHi float64

	PixX0, PixY0, PixX1, PixY1 float64
}

// Layout is the integer geometry behind a plan.
type Layout struct {
	Side    int   // tile side in pixels, before overlap
	PerAxis int   // tiles per axis
	Steps   []int // starting offsets along each axis
}

// NewLayout validates cfg and derives the tile side and offsets.
func NewLayout(cfg Config) (Layout, error) {
	if cfg.NumSubcubes <= 0 {
		return Layout{}, fmt.Errorf("%w: num_subcubes must be > 0 (got %d)", ErrInvalidGridConfig, cfg.NumSubcubes)
	}
	m := isqrt(cfg.NumSubcubes)
	if m*m != cfg.NumSubcubes {
		return Layout{}, fmt.Errorf("%w: num_subcubes %d is not a perfect square", ErrInvalidGridConfig, cfg.NumSubcubes)
	}
	if cfg.OverlapPix < 0 {
		return Layout{}, fmt.Errorf("%w: overlap must be ≥ 0 (got %d)", ErrInvalidGridConfig, cfg.OverlapPix)
	}
	side := cfg.NPix / m
	if side <= 0 || cfg.NPix < side {
		return Layout{}, fmt.Errorf("%w: %d pixels cannot hold %d tiles per axis", ErrInvalidGridConfig, cfg.NPix, m)
	}
	if cfg.OverlapPix >= side {
		return Layout{}, fmt.Errorf("%w: overlap %d must be smaller than tile side %d", ErrInvalidGridConfig, cfg.OverlapPix, side)
	}
	// Exactly m offsets per axis, even when NPix%m leaves room for one more
	// tile: the grid size is what the caller asked for.
	steps := make([]int, m)
	for i := range steps {
		steps[i] = i * side
	}
	return Layout{Side: side, PerAxis: m, Steps: steps}, nil
}

// Plan computes the tile grid. Tiles are enumerated with the x offset in the
// outer loop and the y offset in the inner loop; that order is the tile
// index used for file names and for every detection's tile id.
func Plan(cfg Config, p2w PixelToWorld) ([]TileSpec, error) {
	lay, err := NewLayout(cfg)
	if err != nil {
		return nil, err
	}
	if p2w == nil {
		return nil, fmt.Errorf("%w: nil pixel-to-world transform", ErrInvalidGridConfig)
	}
	half := float64(cfg.OverlapPix) / 2
	side := float64(lay.Side)

	tiles := make([]TileSpec, 0, lay.PerAxis*lay.PerAxis)
	for _, sx := range lay.Steps {
		for _, sy := range lay.Steps {
			x0, y0 := float64(sx)-half, float64(sy)-half
			x1, y1 := float64(sx)+side+half, float64(sy)+side+half
			ra0, dec0 := p2w(x0, y0)
			ra1, dec1 := p2w(x1, y1)
			if !finite(ra0, dec0, ra1, dec1) {
				return nil, fmt.Errorf("%w: tile %d corners do not project (%g,%g)-(%g,%g)",
					ErrInvalidGridConfig, len(tiles), x0, y0, x1, y1)
			}
			tiles = append(tiles, TileSpec{
				Index: len(tiles),
				XLo:   math.Min(ra0, ra1), XHi: math.Max(ra0, ra1),
				YLo: math.Min(dec0, dec1), YHi: math.Max(dec0, dec1),
				PixX0: x0, PixY0: y0, PixX1: x1, PixY1: y1,
			})
		}
	}
	return tiles, nil
}

func isqrt(n int) int {
	r := int(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
