package app

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hicat/internal/catalog"
	"hicat/internal/sofia"
	"hicat/internal/wcs"
)

func newAdaptCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adapt SOFIA_CATALOG",
		Short: "Convert one SoFiA catalogue to a detection table",
		Long: `adapt converts pixel positions to sky coordinates with the tile header,
drops rows with a non-positive kinematic position angle, orders the rest by
integrated flux and writes them as a detection table. The tile index is
taken from the file name (subcube_N_cat.txt) unless --tile is given.`,
		Args: argsRange(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Header == "" {
				return usagef("--header is required")
			}
			hdr, err := wcs.Load(e.cfg.Header)
			if err != nil {
				return err
			}
			tile, _ := cmd.Flags().GetInt("tile")
			if tile < 0 {
				if tile, err = sofia.TileIDFromName(args[0]); err != nil {
					return usagef("%v; pass --tile", err)
				}
			}
			raw, err := sofia.ReadRawCatalogFile(args[0])
			if err != nil {
				return err
			}
			records, skipped, err := sofia.Convert(raw, hdr, tile)
			if err != nil {
				return err
			}
			e.logSkipped(raw.Skipped)
			e.logSkipped(skipped)
			e.log.Info("adapted", zap.String("catalog", args[0]), zap.Int("tile", tile), zap.Int("detections", len(records)))

			w, done, err := e.create(e.cfg.Output)
			if err != nil {
				return err
			}
			err = catalog.WriteDetections(w, records)
			if cerr := done(); err == nil {
				err = cerr
			}
			return err
		},
	}
	cmd.Flags().String("header", "", "WCS header of the tile (YAML)")
	cmd.Flags().Int("tile", -1, "tile index [from the file name]")
	cmd.Flags().StringP("output", "o", "-", "detection table (- for stdout)")
	return cmd
}
