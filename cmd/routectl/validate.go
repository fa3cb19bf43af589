package main

import (
	"github.com/spf13/cobra"
)

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Validate a route manifest",
		Long: `Load a manifest, compile its route tree and run every
structural check. All problems are reported at once.

Examples:
  routectl validate routes.yaml
  routectl validate s3://config/routes.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := a.manifestSource(args)
			if err != nil {
				return err
			}
			m, err := a.loadManifest(cmd.Context(), source)
			if err != nil {
				return err
			}
			if _, err := a.newRouter(m); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s: %d routes, valid", source, m.Count())
			return nil
		},
	}
}
