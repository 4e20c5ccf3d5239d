package sofia

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"hicat/internal/catalog"
	"hicat/internal/hiphys"
	"hicat/internal/wcs"
)

var requiredColumns = []string{"id", "x", "y", "f_sum", "kin_pa", "ell_maj", "ell_min", "w20", "rms"}

// Spectral columns, in order of preference when "freq" is absent.
var velocityColumns = []string{"v_app", "v_opt"}

// Convert turns raw SoFiA rows into detection records for tile tileID.
// Rows with kin_pa <= 0 are discarded; the rest are ordered by f_sum,
// brightest first. A row missing a needed value is reported in the second
// return value and skipped.
func Convert(cat RawCatalog, hdr wcs.Header, tileID int) ([]catalog.DetectionRecord, []*catalog.RecordError, error) {
	for _, c := range requiredColumns {
		if !cat.Has(c) {
			return nil, nil, fmt.Errorf("%s: missing column %q", cat.Source, c)
		}
	}
	spectral, err := spectralColumn(cat)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]Row, 0, len(cat.Rows))
	var skipped []*catalog.RecordError
	for i, r := range cat.Rows {
		if miss := missing(r, spectral); miss != "" {
			skipped = append(skipped, &catalog.RecordError{Source: cat.Source, Index: i, Reason: "no value for " + miss})
			continue
		}
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i]["f_sum"] > rows[j]["f_sum"] })

	pixArcsec := hdr.PixelScaleArcsec()
	chanHz := hdr.ChannelWidthHz()
	pixPerBeam := hdr.BeamAreaPixels()

	out := make([]catalog.DetectionRecord, 0, len(rows))
	for _, r := range rows {
		if !(r["kin_pa"] > 0) {
			continue
		}
		ra, dec := hdr.PixelToWorld(r["x"], r["y"])
		rec := catalog.DetectionRecord{
			TileID:        tileID,
			LocalID:       int(r["id"]),
			RA:            ra,
			Dec:           dec,
			Size:          r["ell_maj"] * pixArcsec,
			Flux:          r["f_sum"] / pixPerBeam * chanHz,
			PositionAngle: r["kin_pa"],
			Inclination:   Inclination(r["ell_maj"], r["ell_min"]),
			NoiseRMS:      r["rms"],
		}
		if spectral == "freq" {
			f := r["freq"]
			half := r["w20"] / 2 * chanHz
			rec.CentralFreq = f
			rec.LineWidth = hiphys.RelativisticVelocity(f-half) - hiphys.RelativisticVelocity(f+half)
		} else {
			rec.CentralFreq = hiphys.FreqFromVelocity(r[spectral])
			rec.LineWidth = r["w20"] * chanHz
		}
		rec.LineWidth *= 1e-3
		out = append(out, rec)
	}
	return out, skipped, nil
}

func spectralColumn(cat RawCatalog) (string, error) {
	if cat.Has("freq") {
		return "freq", nil
	}
	for _, c := range velocityColumns {
		if cat.Has(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%s: no freq, v_app or v_opt column", cat.Source)
}

func missing(r Row, spectral string) string {
	for _, c := range requiredColumns {
		if _, ok := r[c]; !ok {
			return c
		}
	}
	if _, ok := r[spectral]; !ok {
		return spectral
	}
	return ""
}

// Inclination estimates the inclination in degrees from the fitted ellipse
// axes, assuming an intrinsically thick circular disc (Staveley-Smith et
// al. 1992, eq. A7). An undefined cosine is taken as edge-on.
func Inclination(maj, min float64) float64 {
	p := min / maj
	q := 0.65*p - 0.072*math.Pow(p, 3.9)
	cosi := math.Sqrt((p*p - q*q) / (1 - q*q))
	if math.IsNaN(cosi) {
		cosi = 0
	}
	return math.Acos(cosi) * 180 / math.Pi
}

// TileIDFromName extracts N from cube names like "subcube_N.fits".
func TileIDFromName(path string) (int, error) {
	base := filepath.Base(path)
	_, rest, ok := strings.Cut(base, "_")
	if !ok {
		return 0, fmt.Errorf("no tile id in %q", base)
	}
	rest, _, _ = strings.Cut(rest, ".fits")
	rest, _, _ = strings.Cut(rest, "_")
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("no tile id in %q: %w", base, err)
	}
	return n, nil
}
