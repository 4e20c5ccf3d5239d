package hiphys

import "math"

// Wang et al. 2016 (MNRAS 460, 2143) HI size–mass relation:
// log D = 0.506 log M − 3.293.
const (
	sizeMassSlope     = 0.506
	sizeMassIntercept = -3.293

	// DefaultUpperDev and DefaultLowerDev bound the accepted offset in log D.
	DefaultUpperDev = 0.45
	DefaultLowerDev = -0.15
)

// hubbleLittleH is the dimensionless Hubble parameter of the mass formula.
const hubbleLittleH = 0.7

// Source is the subset of a catalogue row the estimate needs.
type Source struct {
	SizeArcsec  float64 // hi_size
	FluxJyHz    float64 // line_flux_integral
	CentralFreq float64 // Hz
}

// MassDiameter is log10 of the HI mass (Msun) and of the HI diameter (kpc).
type MassDiameter struct {
	LogM float64
	LogD float64
}

// Deviation is the offset of LogD from the size–mass relation.
func (md MassDiameter) Deviation() float64 {
	return md.LogD - (sizeMassSlope*md.LogM + sizeMassIntercept)
}

// Estimate derives the HI mass and diameter of s under cosmology c. The
// distance for the mass uses the radio velocity over H0.
func (c Cosmology) Estimate(s Source) MassDiameter {
	z := Redshift(s.CentralFreq)
	dKpc := c.ArcsecToKpc(z, s.SizeArcsec)

	fluxJyKms := s.FluxJyHz * (CKms * (1 + z) * (1 + z)) / F0HI
	distMpc := RadioVelocityKms(s.CentralFreq) / c.H0
	h := hubbleLittleH
	mass := (1 / (h * h)) * 235600 * fluxJyKms * (distMpc * h) * (distMpc * h)
	return MassDiameter{LogM: math.Log10(mass), LogD: math.Log10(dKpc)}
}

// Filter is the accepted band of deviations from the size–mass relation.
type Filter struct {
	Upper float64
	Lower float64
}

// DefaultFilter is [-0.15, +0.45].
func DefaultFilter() Filter { return Filter{Upper: DefaultUpperDev, Lower: DefaultLowerDev} }

// Keep reports whether md falls inside the band. A NaN deviation is kept:
// it cannot be shown to be an outlier.
func (f Filter) Keep(md MassDiameter) bool {
	d := md.Deviation()
	return !(d < f.Lower || d > f.Upper)
}
