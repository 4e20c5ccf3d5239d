package app

import (
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"hicat/internal/catalog"
	"hicat/internal/grid"
	"hicat/internal/metrics"
	"hicat/internal/output"
	"hicat/internal/pipeline"
	"hicat/internal/version"
	"hicat/pkg/api"
)

// Files written into --workdir by run.
const (
	CoordFileName = "coord_subcubes.csv"
	ManifestName  = "manifest.json"
)

func newRunCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Plan, detect, merge and (optionally) filter in one go",
		Long: `run is grid, detect and merge chained together. The coordinate file and a
JSON manifest of the run are written into --workdir; the catalogue goes to
--output.`,
		Args: argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.checkFormat(); err != nil {
				return err
			}
			hdr, tiles, err := e.plan()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(e.cfg.WorkDir, 0o755); err != nil {
				return err
			}
			coords := filepath.Join(e.cfg.WorkDir, CoordFileName)
			if err := grid.WriteCoordFile(coords, tiles); err != nil {
				return err
			}
			e.log.Debug("coordinate file written", zap.String("path", coords))

			m := metrics.NewRun(e.runID)
			results, err := e.detect(cmd.Context(), hdr, tiles, m)
			if err != nil {
				return err
			}
			var records []catalog.DetectionRecord
			skipped := 0
			for _, r := range results {
				records = append(records, r.Records...)
				skipped += len(r.Skipped)
			}
			e.summarizeTiles(results)

			entries, res, err := e.merge(records, m)
			if err != nil {
				return err
			}
			merged := len(entries)
			if e.cfg.Filter {
				if entries, err = e.filter(entries, m); err != nil {
					return err
				}
			}
			if err := e.writeCatalog(entries); err != nil {
				return err
			}

			man := api.ManifestV1{
				RunID:      e.runID,
				Version:    version.Version,
				Cube:       e.cfg.Cube,
				Tiles:      output.ToAPITiles(tiles),
				Detections: len(records),
				Rejected:   skipped + len(res.Rejected),
				Pairs:      res.Pairs(),
				Dropped:    len(res.Drop),
				Sources:    len(entries),
				Filtered:   merged - len(entries),
			}
			if e.cfg.Output != "" && e.cfg.Output != "-" {
				man.Catalog = e.cfg.Output
			}
			if err := e.writeManifest(filepath.Join(e.cfg.WorkDir, ManifestName), man); err != nil {
				return err
			}
			e.writeMetrics(m)
			return nil
		},
	}
	addGridFlags(cmd.Flags())
	addDetectFlags(cmd.Flags())
	addMergeFlags(cmd.Flags())
	addFilterFlags(cmd.Flags(), true)
	addOutputFlags(cmd.Flags())
	return cmd
}

func (e *env) writeManifest(path string, man api.ManifestV1) error {
	w, done, err := e.create(path)
	if err != nil {
		return err
	}
	err = output.WriteManifest(w, man)
	if cerr := done(); err == nil {
		err = cerr
	}
	return err
}

// summarizeTiles logs how evenly detections spread over the tiles.
func (e *env) summarizeTiles(results []pipeline.TileResult) {
	if len(results) == 0 {
		return
	}
	counts := make([]float64, len(results))
	total := 0
	for i, r := range results {
		counts[i] = float64(len(r.Records))
		total += len(r.Records)
	}
	mean, std := stat.MeanStdDev(counts, nil)
	e.log.Info("detection complete",
		zap.Int("tiles", len(results)),
		zap.String("detections", humanize.Comma(int64(total))),
		zap.Float64("per_tile_mean", mean),
		zap.Float64("per_tile_std", std))
}
