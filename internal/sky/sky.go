package sky

import "math"

// ArcsecPerDeg converts degrees to arcseconds.
const ArcsecPerDeg = 3600.0

// Vec is a point on the unit sphere.
type Vec [3]float64

// Position is an equatorial sky position in degrees.
type Position struct {
	RA  float64
	Dec float64
}

// Valid reports whether p can be placed on the sphere.
func (p Position) Valid() bool {
	if math.IsNaN(p.RA) || math.IsInf(p.RA, 0) || math.IsNaN(p.Dec) || math.IsInf(p.Dec, 0) {
		return false
	}
	return p.Dec >= -90 && p.Dec <= 90
}

// UnitVector returns the cartesian unit vector for (ra, dec) in degrees.
func UnitVector(raDeg, decDeg float64) Vec {
	ra := raDeg * math.Pi / 180
	dec := decDeg * math.Pi / 180
	cd := math.Cos(dec)
	return Vec{cd * math.Cos(ra), cd * math.Sin(ra), math.Sin(dec)}
}

// Angle returns the angle between two unit vectors in degrees. The
// atan2 form stays accurate for both tiny and near-antipodal separations.
func Angle(a, b Vec) float64 {
	cx := a[1]*b[2] - a[2]*b[1]
	cy := a[2]*b[0] - a[0]*b[2]
	cz := a[0]*b[1] - a[1]*b[0]
	cross := math.Sqrt(cx*cx + cy*cy + cz*cz)
	dot := a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
	return math.Atan2(cross, dot) * 180 / math.Pi
}

// Separation returns the great-circle distance between two positions in degrees.
func Separation(ra1, dec1, ra2, dec2 float64) float64 {
	return Angle(UnitVector(ra1, dec1), UnitVector(ra2, dec2))
}

// ChordSq converts an angle in degrees to the squared chord length between
// two unit vectors separated by that angle.
func ChordSq(angleDeg float64) float64 {
	c := 2 * math.Sin(angleDeg*math.Pi/360)
	return c * c
}
