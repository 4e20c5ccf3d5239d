package grid

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linear is a flat projection: 1 pixel = scale degrees, origin at (ra0, dec0).
func linear(ra0, dec0, scale float64) PixelToWorld {
	return func(x, y float64) (float64, float64) {
		return ra0 + x*scale, dec0 + y*scale
	}
}

func TestPlan_CountOrderAndIndex(t *testing.T) {
	tiles, err := Plan(Config{NPix: 100, NumSubcubes: 16, OverlapPix: 10}, linear(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, tiles, 16)

	for i, tl := range tiles {
		assert.Equal(t, i, tl.Index)
	}
	// y varies fastest for a fixed x
	assert.Equal(t, -5.0, tiles[0].PixX0)
	assert.Equal(t, -5.0, tiles[0].PixY0)
	assert.Equal(t, -5.0, tiles[1].PixX0)
	assert.Equal(t, 20.0, tiles[1].PixY0)
	assert.Equal(t, 20.0, tiles[4].PixX0)
	assert.Equal(t, -5.0, tiles[4].PixY0)
	assert.Equal(t, 105.0, tiles[15].PixX1)
	assert.Equal(t, 105.0, tiles[15].PixY1)
}

func TestPlan_Coverage(t *testing.T) {
	cases := []Config{
		{NPix: 100, NumSubcubes: 16, OverlapPix: 0},
		{NPix: 101, NumSubcubes: 16, OverlapPix: 4},
		{NPix: 1286, NumSubcubes: 36, OverlapPix: 40},
		{NPix: 7, NumSubcubes: 1, OverlapPix: 0},
		{NPix: 11, NumSubcubes: 16, OverlapPix: 1},
	}
	for _, cfg := range cases {
		lay, err := NewLayout(cfg)
		require.NoError(t, err, "%+v", cfg)
		tiles, err := Plan(cfg, linear(0, 0, 1))
		require.NoError(t, err)

		half := float64(cfg.OverlapPix) / 2
		covered := make([]int, lay.Side*lay.PerAxis)
		seen := map[[4]float64]bool{}
		for _, tl := range tiles {
			x0 := int(tl.PixX0 + half)
			x1 := int(tl.PixX1 - half)
			assert.Equal(t, lay.Side, x1-x0)
			assert.Less(t, x0, cfg.NPix)
			for x := x0; x < x1; x++ {
				covered[x]++
			}
			key := [4]float64{tl.XLo, tl.YLo, tl.XHi, tl.YHi}
			assert.False(t, seen[key], "duplicate tile %+v", tl)
			seen[key] = true
		}
		// Each x column is hit once per tile row along y.
		for x, n := range covered {
			assert.Equal(t, lay.PerAxis, n, "cfg %+v pixel %d", cfg, x)
		}
	}
}

func TestPlan_OverlapExactness(t *testing.T) {
	const scale = 2.8 / 3600
	cfg := Config{NPix: 120, NumSubcubes: 9, OverlapPix: 6}
	tiles, err := Plan(cfg, linear(10, -30, scale))
	require.NoError(t, err)
	m := 3
	for ix := 0; ix < m-1; ix++ {
		for iy := 0; iy < m; iy++ {
			left := tiles[ix*m+iy]
			right := tiles[(ix+1)*m+iy]
			assert.InDelta(t, float64(cfg.OverlapPix), left.PixX1-right.PixX0, 1e-12)
			assert.InDelta(t, float64(cfg.OverlapPix)*scale, left.XHi-right.XLo, 1e-12)
			assert.InDelta(t, left.YLo, right.YLo, 1e-12)
		}
	}
}

func TestPlan_NormalizesFlippedAxis(t *testing.T) {
	tiles, err := Plan(Config{NPix: 40, NumSubcubes: 4}, linear(50, 0, -0.1))
	require.NoError(t, err)
	for _, tl := range tiles {
		assert.Less(t, tl.XLo, tl.XHi)
		assert.Less(t, tl.YLo, tl.YHi)
	}
}

func TestPlan_InvalidConfig(t *testing.T) {
	cases := map[string]Config{
		"zero subcubes":     {NPix: 100, NumSubcubes: 0},
		"negative subcubes": {NPix: 100, NumSubcubes: -4},
		"not square":        {NPix: 100, NumSubcubes: 8},
		"too many tiles":    {NPix: 3, NumSubcubes: 16},
		"overlap >= side":   {NPix: 100, NumSubcubes: 4, OverlapPix: 50},
		"negative overlap":  {NPix: 100, NumSubcubes: 4, OverlapPix: -2},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Plan(cfg, linear(0, 0, 1))
			assert.ErrorIs(t, err, ErrInvalidGridConfig)
		})
	}
	_, err := Plan(Config{NPix: 100, NumSubcubes: 4}, nil)
	assert.ErrorIs(t, err, ErrInvalidGridConfig)

	nan := func(x, y float64) (float64, float64) { return math.NaN(), 0 }
	_, err = Plan(Config{NPix: 100, NumSubcubes: 4}, nan)
	assert.ErrorIs(t, err, ErrInvalidGridConfig)
}

func TestPlan_KeepsRequestedCountWithWideRemainder(t *testing.T) {
	// 11 px over 4 tiles per axis leaves a 3 px strip after four 2 px steps;
	// the plan still has exactly the 16 tiles asked for.
	cfg := Config{NPix: 11, NumSubcubes: 16, OverlapPix: 1}
	lay, err := NewLayout(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, lay.Side)
	assert.Equal(t, []int{0, 2, 4, 6}, lay.Steps)

	tiles, err := Plan(cfg, linear(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, tiles, 16)
	assert.Equal(t, 8.5, tiles[15].PixX1)
}

func TestPlan_Deterministic(t *testing.T) {
	cfg := Config{NPix: 326, NumSubcubes: 16, OverlapPix: 20}
	a, err := Plan(cfg, linear(0, -30, 1e-3))
	require.NoError(t, err)
	b, err := Plan(cfg, linear(0, -30, 1e-3))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCoordFile(t *testing.T) {
	tiles, err := Plan(Config{NPix: 100, NumSubcubes: 4, OverlapPix: 2}, linear(1, 2, 0.01))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCoords(&buf, tiles))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, CoordHeader, lines[0])
	assert.Equal(t, "0.990000,1.990000,1.510000,2.510000", lines[1])

	fn := filepath.Join(t.TempDir(), "coord_subcubes.csv")
	require.NoError(t, os.WriteFile(fn, buf.Bytes(), 0o644))
	got, err := ReadCoordFile(fn)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := range got {
		assert.Equal(t, i, got[i].Index)
		assert.InDelta(t, tiles[i].XLo, got[i].XLo, 1e-6)
		assert.InDelta(t, tiles[i].YHi, got[i].YHi, 1e-6)
	}
}

func TestReadCoords_SingleRowAndErrors(t *testing.T) {
	got, err := ReadCoords(strings.NewReader("xlo,ylo,xhi,yhi\n1,2,3,4\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, TileSpec{XLo: 1, YLo: 2, XHi: 3, YHi: 4}, got[0])

	_, err = ReadCoords(strings.NewReader("xlo,ylo,xhi,yhi\n1,2,x,4\n"))
	assert.Error(t, err)
	_, err = ReadCoords(strings.NewReader("1,2,3\n"))
	assert.Error(t, err)
}
