package output

import (
	"encoding/json"
	"io"

	"hicat/internal/catalog"
	"hicat/internal/grid"
	"hicat/pkg/api"
)

// ToAPIEntry converts a catalogue entry to the stable wire schema (v1).
func ToAPIEntry(e catalog.FinalCatalogEntry) api.CatalogEntryV1 {
	return api.CatalogEntryV1{
		ID:               e.ID,
		RA:               e.RA,
		Dec:              e.Dec,
		HISize:           e.Size,
		LineFluxIntegral: e.Flux,
		CentralFreq:      e.CentralFreq,
		PA:               e.PositionAngle,
		I:                e.Inclination,
		W20:              e.LineWidth,
	}
}

// ToAPITiles converts a grid plan to its wire form.
func ToAPITiles(tiles []grid.TileSpec) []api.TileV1 {
	out := make([]api.TileV1, 0, len(tiles))
	for _, t := range tiles {
		out = append(out, api.TileV1{Index: t.Index, XLo: t.XLo, YLo: t.YLo, XHi: t.XHi, YHi: t.YHi})
	}
	return out
}

// WriteJSON writes a single JSON array of v1 entries (pretty-indented).
func WriteJSON(w io.Writer, list []catalog.FinalCatalogEntry) error {
	out := make([]api.CatalogEntryV1, 0, len(list))
	for _, e := range list {
		out = append(out, ToAPIEntry(e))
	}
	return WriteDocument(w, out)
}

// WriteManifest writes m as indented JSON.
func WriteManifest(w io.Writer, m api.ManifestV1) error {
	return WriteDocument(w, m)
}

// WriteTiles writes a grid plan as indented JSON.
func WriteTiles(w io.Writer, tiles []grid.TileSpec) error {
	return WriteDocument(w, ToAPITiles(tiles))
}

// WriteDocument writes v as one two-space indented JSON document. HTML
// escaping is off: work directories and cube paths may contain '&' or '<'.
func WriteDocument(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
