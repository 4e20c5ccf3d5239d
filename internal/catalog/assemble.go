package catalog

import "sort"

// LessEntry orders final entries by ra, then dec.
func LessEntry(a, b FinalCatalogEntry) bool {
	if a.RA != b.RA {
		return a.RA < b.RA
	}
	return a.Dec < b.Dec
}

// Assemble drops the records listed in drop, sorts the survivors by
// (ra, dec) and numbers them from 0. Records with equal positions keep
// their input order. It returns ErrEmptyCatalog when nothing survives.
func Assemble(records []DetectionRecord, drop map[int]struct{}) ([]FinalCatalogEntry, error) {
	out := make([]FinalCatalogEntry, 0, max(len(records)-len(drop), 0))
	for i, r := range records {
		if _, gone := drop[i]; gone {
			continue
		}
		out = append(out, FinalCatalogEntry{
			RA:            r.RA,
			Dec:           r.Dec,
			Size:          r.Size,
			Flux:          r.Flux,
			CentralFreq:   r.CentralFreq,
			PositionAngle: r.PositionAngle,
			Inclination:   r.Inclination,
			LineWidth:     r.LineWidth,
		})
	}
	if len(out) == 0 {
		return nil, ErrEmptyCatalog
	}
	sort.SliceStable(out, func(i, j int) bool { return LessEntry(out[i], out[j]) })
	for i := range out {
		out[i].ID = i
	}
	return out, nil
}
