package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"hicat/internal/output"
	"hicat/internal/version"
)

func newVersionCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if e.cfg.Format == "json" {
				return output.WriteDocument(e.stdout, info)
			}
			_, err := fmt.Fprintf(e.stdout, "hicat %s (commit %s, built %s, %s %s)\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			return err
		},
	}
	cmd.Flags().StringP("format", "f", "text", "text or json")
	return cmd
}
