package app

import (
	"github.com/spf13/cobra"

	"hicat/internal/catalog"
)

func newFilterCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter CATALOG",
		Short: "Drop catalogue sources that sit off the HI size-mass relation",
		Long: `filter estimates HI mass and diameter for every source of a merged
catalogue and keeps those whose log diameter lies within the accepted band
around the relation. Ids are kept as they are.`,
		Args: argsRange(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.checkFormat(); err != nil {
				return err
			}
			entries, err := catalog.ReadFinalFile(args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return catalog.ErrEmptyCatalog
			}
			kept, err := e.filter(entries, nil)
			if err != nil {
				return err
			}
			return e.writeCatalog(kept)
		},
	}
	addFilterFlags(cmd.Flags(), false)
	addOutputFlags(cmd.Flags())
	return cmd
}
