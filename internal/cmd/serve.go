package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/adamancini/neosearch/internal/changes"
	"github.com/adamancini/neosearch/internal/config"
	"github.com/adamancini/neosearch/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the repository API over HTTP",
		Long: `Serve repository management and search over HTTP.

Routes:
  POST /repositories/add      {"path": "<path-or-url>"}
  POST /repositories/delete   {"path": "<path-or-url>"}
  GET  /repositories/list
  GET  /search?keyword=...&field=...&repository=...&page=N&per_page=N
  GET  /health

The store is rebuilt after every change made through the API and whenever
the config file or a local repository changes on disk.

Examples:
  neosearch serve
  neosearch serve --addr :8080 --check-interval 10s
  NEOSEARCH_ADDR=0.0.0.0:8000 neosearch serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return runServe(ctx)
		},
	}

	cmd.Flags().String("addr", "127.0.0.1:8000", "Address to listen on")
	cmd.Flags().Duration("check-interval", 30*time.Second, "How often to check for changes on disk")

	return cmd
}

// runServe serves until ctx is cancelled. The HTTP server and the change
// watcher share a lifetime; either failing stops both.
func runServe(ctx context.Context) error {
	path, err := config.FindConfig(configPath)
	if err != nil {
		return err
	}

	loader := newLoader(newValidator())
	srv := server.New(path, loader,
		server.WithLogger(logger),
		server.WithPerPage(settings.PerPage),
	)
	if err := srv.Reload(ctx); err != nil {
		return err
	}

	detector := changes.NewDetector(path, loader, changes.WithLogger(logger))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, settings.Addr)
	})
	g.Go(func() error {
		return srv.Watch(gctx, detector, settings.CheckInterval)
	})
	return g.Wait()
}
