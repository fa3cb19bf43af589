package main

import (
	"github.com/spf13/cobra"
)

func treeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [manifest]",
		Short: "Print the compiled route tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := a.manifestSource(args)
			if err != nil {
				return err
			}
			m, err := a.loadManifest(cmd.Context(), source)
			if err != nil {
				return err
			}
			r, err := a.newRouter(m)
			if err != nil {
				return err
			}
			return r.Tree().Print(cmd.OutOrStdout())
		},
	}
}
