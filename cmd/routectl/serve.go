package main

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/viewrouter/internal/inspect"
	"github.com/vango-dev/viewrouter/pkg/history"
	"github.com/vango-dev/viewrouter/pkg/instrument"
	"github.com/vango-dev/viewrouter/pkg/manifest"
	"github.com/vango-dev/viewrouter/pkg/router"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(a *app) *cobra.Command {
	var (
		addr  string
		start string
	)

	cmd := &cobra.Command{
		Use:   "serve [manifest]",
		Short: "Serve a live router with an HTTP inspector",
		Long: `Mount a router for the manifest and serve the inspector.

Endpoints:
  GET  /routes        route tree
  GET  /routes/json   route tree as JSON
  GET  /state         active chain, params, transition flag
  POST /navigate      {"url": "/path", "replace": false}
  GET  /metrics       Prometheus metrics
  GET  /ws            WebSocket history feed

Examples:
  routectl serve routes.yaml
  routectl serve routes.yaml --addr=:8080 --start=/users/1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Inspect.Addr = addr
			}
			if start != "" {
				a.cfg.Inspect.StartURL = start
			}

			source, err := a.manifestSource(args)
			if err != nil {
				return err
			}
			m, err := a.loadManifest(cmd.Context(), source)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", a.cfg.Inspect.Addr)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Inspector listening on http://%s", ln.Addr())

			return a.serve(ctx, m, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&start, "start", "", "Initial URL path (default from config)")

	return cmd
}

// serve mounts a router for m and serves the inspector on ln until ctx
// is done.
func (a *app) serve(ctx context.Context, m *manifest.Manifest, ln net.Listener) error {
	startURL := a.cfg.Inspect.StartURL
	if base := a.basePath(m); base != "" && !strings.HasPrefix(startURL, base) {
		startURL = strings.TrimSuffix(base, "/") + startURL
	}
	mem, err := history.NewMemory("http://localhost" + startURL)
	if err != nil {
		return err
	}
	remote := history.NewRemote(mem, a.logger)
	defer remote.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	instr := instrument.Multi(
		instrument.NewMetrics(
			instrument.WithRegistry(reg),
			instrument.WithNamespace(a.cfg.Metrics.Namespace),
			instrument.WithSubsystem(a.cfg.Metrics.Subsystem),
		),
		instrument.NewTracer(
			instrument.WithTracerName(a.cfg.Tracing.Name),
			instrument.WithParentContext(ctx),
		),
	)

	r, err := a.newRouter(m,
		router.WithHistory(remote),
		router.WithInstrumentation(instr),
	)
	if err != nil {
		return err
	}
	r.OnAsyncError(func(err error) {
		a.logger.Error("transition failed", "error", err)
	})
	if err := r.Mount(); err != nil {
		return err
	}
	defer r.Unmount()

	srv := &http.Server{
		Handler: inspect.New(inspect.Config{
			Router:   r,
			Remote:   remote,
			Gatherer: reg,
			Logger:   a.logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down inspector")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	remote.Close()
	return srv.Shutdown(shutdownCtx)
}

func (a *app) basePath(m *manifest.Manifest) string {
	if a.cfg.BasePath != "" {
		return a.cfg.BasePath
	}
	return m.BasePath
}
