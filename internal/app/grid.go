package app

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hicat/internal/grid"
	"hicat/internal/output"
	"hicat/internal/wcs"
)

func newGridCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Plan the tile grid and write the coordinate file",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, tiles, err := e.plan()
			if err != nil {
				return err
			}
			w, done, err := e.create(e.cfg.Output)
			if err != nil {
				return err
			}
			if e.cfg.Format == output.FormatJSON {
				err = output.WriteTiles(w, tiles)
			} else {
				err = grid.WriteCoords(w, tiles)
			}
			if cerr := done(); err == nil {
				err = cerr
			}
			return err
		},
	}
	addGridFlags(cmd.Flags())
	cmd.Flags().StringP("output", "o", "-", "coordinate file (- for stdout)")
	cmd.Flags().StringP("format", "f", "csv", "csv coordinate file or json")
	return cmd
}

// plan loads the header and lays out the grid from the current config.
func (e *env) plan() (wcs.Header, []grid.TileSpec, error) {
	if e.cfg.Header == "" {
		return wcs.Header{}, nil, usagef("--header is required")
	}
	hdr, err := wcs.Load(e.cfg.Header)
	if err != nil {
		return hdr, nil, err
	}
	npix := e.cfg.NPix
	if npix == 0 {
		npix = hdr.NPix()
	}
	tiles, err := grid.Plan(grid.Config{
		NPix:        npix,
		NumSubcubes: e.cfg.NumSubcubes,
		OverlapPix:  e.cfg.OverlapPix,
	}, hdr.PixelToWorld)
	if err != nil {
		return hdr, nil, err
	}
	e.log.Info("grid planned",
		zap.Int("npix", npix),
		zap.Int("tiles", len(tiles)),
		zap.Int("overlap_pix", e.cfg.OverlapPix))
	return hdr, tiles, nil
}
