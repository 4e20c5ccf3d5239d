package app

import (
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hicat/internal/catalog"
	"hicat/internal/cliutil"
	"hicat/internal/dedupe"
	"hicat/internal/hiphys"
	"hicat/internal/metrics"
	"hicat/internal/writers"
)

func newMergeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge DETECTIONS...",
		Short: "Merge per-tile detection tables into one deduplicated catalogue",
		Long: `merge reads detection tables (globs are expanded), removes the duplicate
detections that neighbouring tiles produce in their overlap, and writes the
catalogue sorted by position with fresh ids.`,
		Args: argsRange(1, -1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.checkFormat(); err != nil {
				return err
			}
			paths, err := cliutil.ExpandPositionals(args)
			if err != nil {
				return usageError{err}
			}
			in, err := catalog.Concat(paths, nil)
			if err != nil {
				return err
			}
			e.logSkipped(in.Skipped)
			m := metrics.NewRun(e.runID)
			m.Detections.Add(float64(len(in.Records)))
			m.Rejected.Add(float64(len(in.Skipped)))

			entries, _, err := e.merge(in.Records, m)
			if err != nil {
				return err
			}
			if e.cfg.Filter {
				if entries, err = e.filter(entries, m); err != nil {
					return err
				}
			}
			if err := e.writeCatalog(entries); err != nil {
				return err
			}
			e.writeMetrics(m)
			return nil
		},
	}
	addMergeFlags(cmd.Flags())
	addFilterFlags(cmd.Flags(), true)
	addOutputFlags(cmd.Flags())
	cmd.Flags().String("metrics-file", "", "write Prometheus textfile metrics here")
	return cmd
}

// merge resolves duplicates among records and assembles the catalogue.
func (e *env) merge(records []catalog.DetectionRecord, m *metrics.Run) ([]catalog.FinalCatalogEntry, dedupe.Result, error) {
	cfg := dedupe.Config{MaxSeparationArcsec: e.cfg.MaxSepArcsec, MaxFreqDiffHz: e.cfg.MaxFreqDiffHz}
	if err := cfg.Validate(); err != nil {
		return nil, dedupe.Result{}, usageError{err}
	}
	res := dedupe.Resolve(records, cfg)
	for _, r := range res.Rejected {
		e.log.Warn("rejected detection", zap.Error(r))
	}
	for _, ed := range res.Edges {
		a, b := records[ed.A], records[ed.B]
		e.log.Debug("duplicate",
			zap.Int("a", ed.A), zap.Int("a_tile", a.TileID),
			zap.Int("b", ed.B), zap.Int("b_tile", b.TileID),
			zap.Bool("mutual", ed.Mutual),
			zap.Int("drop", ed.Drop))
	}
	m.Rejected.Add(float64(len(res.Rejected)))
	m.Pairs.Set(float64(res.Pairs()))
	m.Dropped.Set(float64(len(res.Drop)))

	entries, err := catalog.Assemble(records, res.Drop)
	if err != nil {
		return nil, res, err
	}
	m.Sources.Set(float64(len(entries)))
	e.log.Info("merged",
		zap.String("detections", humanize.Comma(int64(len(records)))),
		zap.Int("duplicate_pairs", res.Pairs()),
		zap.Int("dropped", len(res.Drop)),
		zap.String("sources", humanize.Comma(int64(len(entries)))))
	return entries, res, nil
}

// filter applies the size-mass band and writes the scored table when
// --logmd-file is set.
func (e *env) filter(entries []catalog.FinalCatalogEntry, m *metrics.Run) ([]catalog.FinalCatalogEntry, error) {
	cosmo := hiphys.Cosmology{H0: e.cfg.H0, Om0: e.cfg.Om0}
	if !(cosmo.H0 > 0) || cosmo.Om0 < 0 || cosmo.Om0 > 1 {
		return nil, usagef("cosmology out of range: h0=%v om0=%v", cosmo.H0, cosmo.Om0)
	}
	band := hiphys.Filter{Upper: e.cfg.UpperDev, Lower: e.cfg.LowerDev}
	if band.Lower > band.Upper {
		return nil, usagef("--lower-dev %v is above --upper-dev %v", band.Lower, band.Upper)
	}
	res := hiphys.FilterCatalog(entries, cosmo, band)
	if e.cfg.LogMDFile != "" {
		w, done, err := e.create(e.cfg.LogMDFile)
		if err != nil {
			return nil, err
		}
		err = hiphys.WriteMassDiameter(w, res.All)
		if cerr := done(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
	}
	if m != nil {
		m.Filtered.Set(float64(len(res.Rejected)))
		m.Sources.Set(float64(len(res.Kept)))
	}
	e.log.Info("filtered", zap.Int("kept", len(res.Kept)), zap.Int("removed", len(res.Rejected)))
	if len(res.Kept) == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	return res.Kept, nil
}

func (e *env) checkFormat() error {
	if !slices.Contains(writers.Formats(), e.cfg.Format) {
		return usagef("unknown --format %q (want one of %v)", e.cfg.Format, writers.Formats())
	}
	return nil
}

// writeCatalog streams entries to --output in --format.
func (e *env) writeCatalog(entries []catalog.FinalCatalogEntry) error {
	w, done, err := e.create(e.cfg.Output)
	if err != nil {
		return err
	}
	in, errCh := writers.StartCatalogWriter(w, e.cfg.Format, !e.cfg.NoHeader, 0)
	for _, en := range entries {
		in <- en
	}
	close(in)
	err = <-errCh
	if cerr := done(); err == nil {
		err = cerr
	}
	return err
}

func (e *env) logSkipped(skipped []*catalog.RecordError) {
	for _, s := range skipped {
		e.log.Warn("skipped row", zap.Error(s))
	}
}

func (e *env) writeMetrics(m *metrics.Run) {
	if e.cfg.MetricsFile == "" {
		return
	}
	if err := m.WriteTextfile(e.cfg.MetricsFile); err != nil {
		e.log.Warn("metrics textfile not written", zap.String("path", e.cfg.MetricsFile), zap.Error(err))
	}
}
