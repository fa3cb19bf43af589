package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/viewrouter/internal/config"
	"github.com/vango-dev/viewrouter/internal/errors"
	"github.com/vango-dev/viewrouter/pkg/manifest"
	"github.com/vango-dev/viewrouter/pkg/router"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries what every command needs once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "routectl",
		Short: "Inspect and exercise view router manifests",
		Long: `routectl works with declarative route manifests.

It validates route trees, prints them, shows which chain a URL
selects and serves a live router with an HTTP inspector.

Manifests are YAML or JSON files, or s3://bucket/key objects.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.Log.NewLogger(cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to "+config.ConfigFileName+" (default: working directory, optional)")

	rootCmd.AddCommand(
		validateCmd(a),
		treeCmd(a),
		matchCmd(a),
		serveCmd(a),
		versionCmd(),
	)

	return rootCmd
}

// manifestSource picks the manifest argument or the configured default.
func (a *app) manifestSource(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if a.cfg.Manifest != "" {
		return a.cfg.Manifest, nil
	}
	return "", errors.New("M003").
		WithDetail("no manifest given").
		WithSuggestion("Pass a manifest path or set \"manifest\" in " + config.ConfigFileName)
}

func (a *app) loadManifest(ctx context.Context, source string) (*manifest.Manifest, error) {
	var opts []manifest.LoadOption
	if a.cfg.S3.Region != "" {
		opts = append(opts, manifest.WithRegion(a.cfg.S3.Region))
	}
	if a.cfg.S3.Endpoint != "" {
		opts = append(opts, manifest.WithEndpoint(a.cfg.S3.Endpoint, a.cfg.S3.PathStyle))
	}

	m, err := manifest.Load(ctx, source, opts...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("manifest loaded", "source", source, "routes", m.Count())
	return m, nil
}

// newRouter builds a router for m with placeholder bindings.
func (a *app) newRouter(m *manifest.Manifest, opts ...router.Option) (*router.Router, error) {
	opts = append([]router.Option{router.WithLogger(a.logger)}, opts...)
	if a.cfg.BasePath != "" {
		opts = append(opts, router.WithBasePath(a.cfg.BasePath))
	}
	return m.NewRouter(manifest.NewPlaceholderRegistry(), opts...)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
