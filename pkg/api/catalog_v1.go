// Package api holds the stable JSON wire schema of hicat outputs.
package api

// CatalogEntryV1 is the stable JSON/JSONL schema for one merged catalogue
// row. Keep fields, names, and types stable. Add new fields only with
// ",omitempty".
type CatalogEntryV1 struct {
	ID               int     `json:"id"`
	RA               float64 `json:"ra"`                 // deg
	Dec              float64 `json:"dec"`                // deg
	HISize           float64 `json:"hi_size"`            // arcsec
	LineFluxIntegral float64 `json:"line_flux_integral"` // Jy Hz
	CentralFreq      float64 `json:"central_freq"`       // Hz
	PA               float64 `json:"pa"`                 // deg
	I                float64 `json:"i"`                  // deg
	W20              float64 `json:"w20"`                // km/s
}

// TileV1 describes one planned tile.
type TileV1 struct {
	Index int     `json:"index"`
	XLo   float64 `json:"xlo"`
	YLo   float64 `json:"ylo"`
	XHi   float64 `json:"xhi"`
	YHi   float64 `json:"yhi"`
}

// ManifestV1 summarises one run.
type ManifestV1 struct {
	RunID      string   `json:"run_id"`
	Version    string   `json:"version"`
	Cube       string   `json:"cube,omitempty"`
	Tiles      []TileV1 `json:"tiles,omitempty"`
	Detections int      `json:"detections"`
	Rejected   int      `json:"rejected"`
	Pairs      int      `json:"duplicate_pairs"`
	Dropped    int      `json:"dropped"`
	Sources    int      `json:"sources"`
	Filtered   int      `json:"filtered,omitempty"`
	Catalog    string   `json:"catalog,omitempty"`
}
