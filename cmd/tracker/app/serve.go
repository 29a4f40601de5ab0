package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/carsharing-backend-go/internal/analysis"
	"github.com/jengzang/carsharing-backend-go/internal/api"
	"github.com/jengzang/carsharing-backend-go/internal/metrics"
	"github.com/jengzang/carsharing-backend-go/internal/pricing"
	"github.com/jengzang/carsharing-backend-go/internal/service"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recorded cars, states and trips over a read-only HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			resolver := pricing.NewResolver(nil)
			m := metrics.NewCollector()
			router := api.SetupRouter(e.cfg.Environment, e.log, api.Services{
				Cars:    service.NewCarService(e.db, resolver),
				Trips:   service.NewTripService(e.db, resolver, analysis.NewTripBuilder(e.cfg.Import.GlitchSeconds), e.log).WithMetrics(m),
				Stats:   service.NewStatsService(e.db),
				Metrics: m,
			})

			srv := &http.Server{
				Addr:              fmt.Sprintf("%s:%d", e.cfg.HTTP.Host, e.cfg.HTTP.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				e.log.Info().Str("addr", srv.Addr).Msg("starting http server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				e.log.Info().Msg("shutting down http server")
				return srv.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}

	fs := cmd.Flags()
	fs.String("host", "", "listen host (HTTP_HOST)")
	fs.Int("port", 0, "listen port (HTTP_PORT)")

	return cmd
}
