package app

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hicat/internal/cliutil"
	"hicat/internal/grid"
	"hicat/internal/metrics"
	"hicat/internal/pipeline"
	"hicat/internal/wcs"
)

func newDetectCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Extract each tile and run the source finder on it",
		Long: `detect plans the grid, then for every tile runs the extract command (unless
the tile cube exists), renders the SoFiA parameter file, runs the detector
(unless its catalogue exists) and converts the catalogue to a detection
table. The paths of the detection tables are printed one per line.`,
		Args: argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			hdr, tiles, err := e.plan()
			if err != nil {
				return err
			}
			m := metrics.NewRun(e.runID)
			results, err := e.detect(cmd.Context(), hdr, tiles, m)
			if err != nil {
				return err
			}
			e.writeMetrics(m)
			for _, r := range results {
				if _, err := fmt.Fprintln(e.stdout, r.Job.Detections); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addGridFlags(cmd.Flags())
	addDetectFlags(cmd.Flags())
	cmd.Flags().String("coord-file", "", "take tile sky boxes from this coordinate file")
	return cmd
}

// detect runs the per-tile pipeline over the selected tiles.
func (e *env) detect(ctx context.Context, hdr wcs.Header, tiles []grid.TileSpec, m *metrics.Run) ([]pipeline.TileResult, error) {
	tiles, err := e.selectTiles(tiles)
	if err != nil {
		return nil, err
	}
	threads := e.cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	runner := &pipeline.ExecRunner{
		ExtractCommand: e.cfg.ExtractCommand,
		DetectCommand:  e.cfg.DetectCommand,
		ParamTemplate:  e.cfg.ParamTemplate,
		// Tool chatter goes to stderr; stdout carries results.
		Stdout: e.stderr,
		Stderr: e.stderr,
	}
	cfg := pipeline.Config{
		Threads: threads,
		Cube:    e.cfg.Cube,
		WorkDir: e.cfg.WorkDir,
		Header:  hdr,
		OnTile: func(r pipeline.TileResult) {
			m.ObserveTile(len(r.Records), len(r.Skipped), r.Elapsed)
			for _, s := range r.Skipped {
				e.log.Warn("skipped row", zap.Error(s))
			}
			e.log.Info("tile done",
				zap.Int("tile", r.Job.Tile.Index),
				zap.String("detections", humanize.Comma(int64(len(r.Records)))),
				zap.Duration("elapsed", r.Elapsed))
		},
	}
	e.log.Info("detecting", zap.Int("tiles", len(tiles)), zap.Int("threads", threads), zap.String("workdir", e.cfg.WorkDir))
	return pipeline.Run(ctx, cfg, tiles, runner)
}

// selectTiles applies --coord-file and --tiles.
func (e *env) selectTiles(tiles []grid.TileSpec) ([]grid.TileSpec, error) {
	if e.cfg.CoordFile != "" {
		boxes, err := grid.ReadCoordFile(e.cfg.CoordFile)
		if err != nil {
			return nil, err
		}
		if len(boxes) != len(tiles) {
			return nil, usagef("coordinate file %s has %d tiles, grid has %d", e.cfg.CoordFile, len(boxes), len(tiles))
		}
		for i := range tiles {
			tiles[i].XLo, tiles[i].YLo = boxes[i].XLo, boxes[i].YLo
			tiles[i].XHi, tiles[i].YHi = boxes[i].XHi, boxes[i].YHi
		}
	}
	if len(e.cfg.Tiles) == 0 {
		return tiles, nil
	}
	want, err := cliutil.ParseTiles(e.cfg.Tiles)
	if err != nil {
		return nil, usageError{err}
	}
	var out []grid.TileSpec
	for _, t := range tiles {
		if slices.Contains(want, t.Index) {
			out = append(out, t)
		}
	}
	for _, i := range want {
		if i >= len(tiles) {
			return nil, usagef("tile %d out of range (grid has %d tiles)", i, len(tiles))
		}
	}
	return out, nil
}
