package hiphys

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"hicat/internal/catalog"
)

// Scored is a catalogue entry with its mass/diameter estimate.
type Scored struct {
	catalog.FinalCatalogEntry
	MassDiameter
}

// FilterResult splits a catalogue by the size–mass band.
type FilterResult struct {
	Kept     []catalog.FinalCatalogEntry
	Rejected []Scored
	All      []Scored
}

// FilterCatalog scores every entry and keeps the ones inside f. Entry ids
// are carried through unchanged.
func FilterCatalog(entries []catalog.FinalCatalogEntry, c Cosmology, f Filter) FilterResult {
	res := FilterResult{All: make([]Scored, 0, len(entries))}
	for _, e := range entries {
		md := c.Estimate(Source{SizeArcsec: e.Size, FluxJyHz: e.Flux, CentralFreq: e.CentralFreq})
		s := Scored{FinalCatalogEntry: e, MassDiameter: md}
		res.All = append(res.All, s)
		if f.Keep(md) {
			res.Kept = append(res.Kept, e)
		} else {
			res.Rejected = append(res.Rejected, s)
		}
	}
	return res
}

// WriteMassDiameter writes the scored table: the final catalogue columns
// followed by log_m and log_d.
func WriteMassDiameter(w io.Writer, rows []Scored) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, strings.Join(catalog.FinalColumns, " ")+" log_m log_d"); err != nil {
		return err
	}
	for _, r := range rows {
		_, err := fmt.Fprintf(bw, "%s %s %s\n", catalog.FinalRow(r.FinalCatalogEntry),
			catalog.FormatFloat(r.LogM), catalog.FormatFloat(r.LogD))
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
