// Package wcs is a minimal celestial WCS for HI cubes: the header keywords
// the pipeline needs, read from a YAML sidecar, and the pixel→world
// transforms for the TAN and SIN projections.
package wcs

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Projection codes taken from the last three characters of CTYPE1.
const (
	ProjTAN = "TAN"
	ProjSIN = "SIN"
)

// ErrBadHeader marks a header that cannot drive a projection.
var ErrBadHeader = errors.New("invalid WCS header")

// Header holds the FITS keywords used downstream. Pixel reference values
// follow the FITS 1-based convention; all pixel arguments to Header methods
// are 0-based.
type Header struct {
	CType1 string  `yaml:"ctype1"`
	CType2 string  `yaml:"ctype2"`
	CType3 string  `yaml:"ctype3"`
	NAxis1 int     `yaml:"naxis1"`
	NAxis2 int     `yaml:"naxis2"`
	NAxis3 int     `yaml:"naxis3"`
	CRVal1 float64 `yaml:"crval1"`
	CRVal2 float64 `yaml:"crval2"`
	CRVal3 float64 `yaml:"crval3"`
	CRPix1 float64 `yaml:"crpix1"`
	CRPix2 float64 `yaml:"crpix2"`
	CRPix3 float64 `yaml:"crpix3"`
	CDelt1 float64 `yaml:"cdelt1"`
	CDelt2 float64 `yaml:"cdelt2"`
	CDelt3 float64 `yaml:"cdelt3"`
	BMaj   float64 `yaml:"bmaj"` // degrees
	BMin   float64 `yaml:"bmin"` // degrees
}

// Load reads a YAML header sidecar.
func Load(path string) (Header, error) {
	var h Header
	b, err := os.ReadFile(path)
	if err != nil {
		return h, fmt.Errorf("read wcs header %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &h); err != nil {
		return h, fmt.Errorf("parse wcs header %s: %w", path, err)
	}
	if err := h.Validate(); err != nil {
		return h, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// Validate checks that the spatial axes are usable.
func (h Header) Validate() error {
	if h.CDelt1 == 0 || h.CDelt2 == 0 {
		return fmt.Errorf("%w: cdelt1/cdelt2 must be non-zero", ErrBadHeader)
	}
	if h.CRVal2 < -90 || h.CRVal2 > 90 {
		return fmt.Errorf("%w: crval2 %g outside [-90, 90]", ErrBadHeader, h.CRVal2)
	}
	switch h.Projection() {
	case ProjTAN, ProjSIN:
	default:
		return fmt.Errorf("%w: unsupported projection %q", ErrBadHeader, h.CType1)
	}
	return nil
}

// Projection returns the projection code; an empty CTYPE1 means TAN.
func (h Header) Projection() string {
	c := strings.TrimSpace(strings.ToUpper(h.CType1))
	if c == "" {
		return ProjTAN
	}
	if len(c) >= 3 {
		return c[len(c)-3:]
	}
	return c
}

// NPix is the spatial side length used for gridding (NAXIS2, as the
// planner assumes square images).
func (h Header) NPix() int { return h.NAxis2 }

// PixelToWorld converts 0-based pixel coordinates to (ra, dec) in degrees.
func (h Header) PixelToWorld(x, y float64) (ra, dec float64) {
	xi := (x + 1 - h.CRPix1) * h.CDelt1 * math.Pi / 180
	eta := (y + 1 - h.CRPix2) * h.CDelt2 * math.Pi / 180
	ra0 := h.CRVal1 * math.Pi / 180
	dec0 := h.CRVal2 * math.Pi / 180
	sd, cd := math.Sincos(dec0)

	var a, d float64
	switch h.Projection() {
	case ProjSIN:
		r2 := xi*xi + eta*eta
		if r2 > 1 {
			return math.NaN(), math.NaN()
		}
		z := math.Sqrt(1 - r2)
		d = math.Asin(eta*cd + sd*z)
		a = ra0 + math.Atan2(xi, cd*z-eta*sd)
	default:
		den := cd - eta*sd
		d = math.Atan2(sd+eta*cd, math.Hypot(xi, den))
		a = ra0 + math.Atan2(xi, den)
	}
	ra = math.Mod(a*180/math.Pi, 360)
	if ra < 0 {
		ra += 360
	}
	return ra, d * 180 / math.Pi
}

// PixelScaleArcsec is the size of one spatial pixel in arcsec. Square pixels
// are assumed, so only CDELT2 is used.
func (h Header) PixelScaleArcsec() float64 { return math.Abs(h.CDelt2) * 3600 }

// ChannelWidthHz is the spectral channel width (CDELT3).
func (h Header) ChannelWidthHz() float64 { return h.CDelt3 }

// BeamAreaPixels is the Gaussian beam solid angle expressed in pixels.
func (h Header) BeamAreaPixels() float64 {
	beam := math.Pi * math.Abs(h.BMaj*h.BMin) / (4 * math.Ln2)
	return beam / (math.Abs(h.CDelt1) * math.Abs(h.CDelt2))
}

// Cutout returns the header of a sub-image whose 0-based origin in this
// image is (x0, y0) and whose size is nx by ny. Non-positive sizes keep the
// parent's axis lengths.
func (h Header) Cutout(x0, y0, nx, ny int) Header {
	c := h
	c.CRPix1 -= float64(x0)
	c.CRPix2 -= float64(y0)
	if nx > 0 {
		c.NAxis1 = nx
	}
	if ny > 0 {
		c.NAxis2 = ny
	}
	return c
}
