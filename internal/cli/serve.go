package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/osmium-toolchains/osmium-cli/internal/app"
	"github.com/osmium-toolchains/osmium-cli/internal/observability/metrics"
	"github.com/osmium-toolchains/osmium-cli/internal/router"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project to editor surfaces",
		Long: `Start the backend: editor surfaces connect to /channels/<name> over websocket,
collections are rebroadcast whenever their files change, and commands run on
behalf of the surface that issued them.`,
		Example: `  # Serve on the default address
  osmium serve

  # Serve on another port without metrics
  osmium serve --listen 127.0.0.1:9000 --metrics=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			metrics.Init(a.Config.Metrics)
			a.Bus.SetActivator(router.HostActivator(a.Bus))

			backend, err := app.InitBackend(a)
			if err != nil {
				return err
			}
			defer backend.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return backend.Watcher.Run(ctx) })
			g.Go(func() error { return backend.Server.Run(ctx) })

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("listen", "", "Address to serve channels on (default 127.0.0.1:7545)")
	cmd.Flags().String("rpc-url", "", "Endpoint used for gas estimation when none is given")
	cmd.Flags().Bool("metrics", true, "Expose Prometheus metrics at /metrics")

	return cmd
}
