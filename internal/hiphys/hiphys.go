// Package hiphys holds the HI line physics used around the merge: Doppler
// conversions, flat ΛCDM distances, and the HI mass / diameter estimate
// used to reject implausible detections.
package hiphys

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

const (
	// F0HI is the HI 21 cm rest frequency in Hz.
	F0HI = 1420405751.786
	// C is the speed of light in m/s.
	C = 299792458.0
	// CKms is the speed of light in km/s.
	CKms = C / 1000
)

// RelativisticVelocity converts an observed frequency (Hz) to a
// relativistic velocity (m/s). The numerator is factored so the rest
// frequency maps to exactly zero; F0HI*F0HI alone would fold as an exact
// constant against a rounded freq*freq.
func RelativisticVelocity(freq float64) float64 {
	f0 := float64(F0HI)
	return C * (f0 - freq) * (f0 + freq) / (f0*f0 + freq*freq)
}

// FreqFromVelocity inverts a relativistic velocity (m/s) to frequency (Hz).
func FreqFromVelocity(v float64) float64 {
	return F0HI * math.Sqrt((1-v/C)/(1+v/C))
}

// RadioVelocityKms is the radio-convention velocity in km/s.
func RadioVelocityKms(freq float64) float64 {
	return CKms * (1 - freq/F0HI)
}

// Redshift of the HI line observed at freq.
func Redshift(freq float64) float64 { return (F0HI - freq) / freq }

// Cosmology is a flat ΛCDM model without radiation.
type Cosmology struct {
	H0  float64 // km/s/Mpc
	Om0 float64
}

// DefaultCosmology is H0 = 70, Ωm = 0.3.
func DefaultCosmology() Cosmology { return Cosmology{H0: 70, Om0: 0.3} }

// quadPoints is the Gauss–Legendre order; E(z) is smooth so this is far
// beyond what catalogue precision needs.
const quadPoints = 64

func (c Cosmology) invE(z float64) float64 {
	zp := 1 + z
	return 1 / math.Sqrt(c.Om0*zp*zp*zp+(1-c.Om0))
}

// HubbleDistance is c/H0 in Mpc.
func (c Cosmology) HubbleDistance() float64 { return CKms / c.H0 }

// ComovingDistance in Mpc.
func (c Cosmology) ComovingDistance(z float64) float64 {
	switch {
	case z == 0 || math.IsNaN(z):
		return 0 * z
	case z < 0:
		return -c.HubbleDistance() * quad.Fixed(c.invE, z, 0, quadPoints, nil, 1)
	}
	return c.HubbleDistance() * quad.Fixed(c.invE, 0, z, quadPoints, nil, 1)
}

// AngularDiameterDistance in Mpc.
func (c Cosmology) AngularDiameterDistance(z float64) float64 {
	return c.ComovingDistance(z) / (1 + z)
}

// ArcsecToKpc converts an angular size at redshift z to a linear size.
func (c Cosmology) ArcsecToKpc(z, arcsec float64) float64 {
	theta := arcsec / 3600 * math.Pi / 180
	return theta * c.AngularDiameterDistance(z) * 1000
}
