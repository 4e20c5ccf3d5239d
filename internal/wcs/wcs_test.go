package wcs

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hicat/internal/sky"
)

func testHeader(proj string) Header {
	return Header{
		CType1: "RA---" + proj, CType2: "DEC--" + proj,
		NAxis1: 1286, NAxis2: 1286,
		CRVal1: 0, CRVal2: -30,
		CRPix1: 644, CRPix2: 644,
		CDelt1: -7.7778e-4, CDelt2: 7.7778e-4, CDelt3: 30000,
		BMaj: 1.9444e-3, BMin: 1.9444e-3,
	}
}

func TestPixelToWorld_ReferencePixel(t *testing.T) {
	for _, p := range []string{ProjTAN, ProjSIN} {
		h := testHeader(p)
		ra, dec := h.PixelToWorld(h.CRPix1-1, h.CRPix2-1)
		assert.InDelta(t, 0, math.Min(ra, 360-ra), 1e-10, p)
		assert.InDelta(t, -30, dec, 1e-10, p)
	}
}

func TestPixelToWorld_OnePixelStep(t *testing.T) {
	h := testHeader(ProjTAN)
	x0, y0 := h.CRPix1-1, h.CRPix2-1
	ra0, dec0 := h.PixelToWorld(x0, y0)
	ra1, dec1 := h.PixelToWorld(x0, y0+1)
	sep := sky.Separation(ra0, dec0, ra1, dec1) * 3600
	assert.InDelta(t, h.PixelScaleArcsec(), sep, 1e-6)
	assert.Greater(t, dec1, dec0)

	// Negative CDELT1: increasing x moves east-to-west (RA decreases).
	ra2, _ := h.PixelToWorld(x0+1, y0)
	assert.Greater(t, ra2, 359.0)
	assert.Less(t, ra2, 360.0)
	assert.InDelta(t, ra0, ra1, 1e-12)
}

func TestProjection(t *testing.T) {
	assert.Equal(t, ProjTAN, Header{}.Projection())
	assert.Equal(t, ProjSIN, Header{CType1: "RA---SIN"}.Projection())
	assert.Equal(t, "CAR", Header{CType1: "ra---car"}.Projection())
}

func TestValidate(t *testing.T) {
	require.NoError(t, testHeader(ProjSIN).Validate())

	h := testHeader(ProjTAN)
	h.CDelt2 = 0
	assert.ErrorIs(t, h.Validate(), ErrBadHeader)

	h = testHeader(ProjTAN)
	h.CType1 = "RA---CAR"
	assert.ErrorIs(t, h.Validate(), ErrBadHeader)
}

func TestBeamAreaPixels(t *testing.T) {
	h := testHeader(ProjTAN)
	// 7" beam on 2.8" pixels: pi*2.5^2/(4 ln 2) ≈ 7.08 pixels.
	assert.InDelta(t, math.Pi*2.5*2.5/(4*math.Ln2), h.BeamAreaPixels(), 1e-3)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "cube.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(`ctype1: RA---SIN
ctype2: DEC--SIN
ctype3: FREQ
naxis1: 326
naxis2: 326
naxis3: 1601
crval1: 0.0
crval2: -30.0
crval3: 1.16e9
crpix1: 163
crpix2: 163
crpix3: 1
cdelt1: -7.7778e-4
cdelt2: 7.7778e-4
cdelt3: 30000
bmaj: 1.9444e-3
bmin: 1.9444e-3
`), 0o644))
	h, err := Load(fn)
	require.NoError(t, err)
	assert.Equal(t, 326, h.NPix())
	assert.Equal(t, ProjSIN, h.Projection())
	assert.InDelta(t, 30000, h.ChannelWidthHz(), 0)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestCutout_SameSky(t *testing.T) {
	h := testHeader(ProjTAN)
	c := h.Cutout(100, 200, 50, 60)
	assert.Equal(t, 50, c.NAxis1)
	assert.Equal(t, 60, c.NAxis2)

	ra0, dec0 := h.PixelToWorld(110, 230)
	ra1, dec1 := c.PixelToWorld(10, 30)
	assert.InDelta(t, ra0, ra1, 1e-12)
	assert.InDelta(t, dec0, dec1, 1e-12)

	assert.Equal(t, h.NAxis1, h.Cutout(1, 1, 0, 0).NAxis1)
}
