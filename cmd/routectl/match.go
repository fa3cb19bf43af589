package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/viewrouter/pkg/history"
	"github.com/vango-dev/viewrouter/pkg/router"
)

func matchCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "match [manifest] <url>",
		Short: "Show the route chain a URL selects",
		Long: `Run a transition to the URL against the manifest and print the
winning chain with its parameters. Resolvers are replaced by
placeholders.

Examples:
  routectl match routes.yaml /users/42
  routectl match /users/42            # manifest from routectl.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[len(args)-1]
			source, err := a.manifestSource(args[:len(args)-1])
			if err != nil {
				return err
			}
			m, err := a.loadManifest(cmd.Context(), source)
			if err != nil {
				return err
			}

			if !strings.HasPrefix(target, "/") {
				target = "/" + target
			}
			h, err := history.NewMemory("http://localhost" + target)
			if err != nil {
				return err
			}
			r, err := a.newRouter(m, router.WithHistory(h))
			if err != nil {
				return err
			}
			// Failures after the transition suspends never reach Mount.
			asyncErr := make(chan error, 1)
			r.OnAsyncError(func(err error) {
				select {
				case asyncErr <- err:
				default:
				}
			})
			if err := r.Mount(); err != nil {
				return err
			}
			defer r.Unmount()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := r.WaitIdle(ctx); err != nil {
				return err
			}
			select {
			case err := <-asyncErr:
				return err
			default:
			}

			return printChain(cmd, r)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "How long to wait for the transition")

	return cmd
}

func printChain(cmd *cobra.Command, r *router.Router) error {
	out := cmd.OutOrStdout()
	chain := r.CurrentFragments()
	if len(chain) == 0 {
		return fmt.Errorf("no route chain is active")
	}

	fmt.Fprintf(out, "%s\n\n", r.URL().RequestURI())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tKIND\tVALUE\tURL")
	for _, f := range chain {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ReadablePath(), f.Kind(), f.Value(), f.URLPath())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if params := r.Params(); len(params) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "params:")
		for _, p := range params {
			info(out, "%s = %s", p.Name, p.Value)
		}
	}
	return nil
}
