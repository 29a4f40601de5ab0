package app

import (
	"fmt"
	"os"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/jengzang/carsharing-backend-go/internal/analysis"
	"github.com/jengzang/carsharing-backend-go/internal/metrics"
	"github.com/jengzang/carsharing-backend-go/internal/pricing"
	"github.com/jengzang/carsharing-backend-go/internal/service"
)

func newTripsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trips",
		Short: "Rebuild the trips table from the recorded state changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			m := metrics.NewCollector()
			defer writeMetrics(e, m)

			return rebuildTrips(cmd, e, m)
		},
	}

	fs := cmd.Flags()
	fs.Int64("glitch", 0, "longest occupied interval in seconds treated as a glitch (TRIP_GLITCH_SECONDS)")
	fs.String("metrics-file", "", "write metrics to this textfile after the run (METRICS_TEXTFILE)")

	return cmd
}

func rebuildTrips(cmd *cobra.Command, e *env, m *metrics.Collector) error {
	builder := analysis.NewTripBuilder(e.cfg.Import.GlitchSeconds)
	summary, err := service.NewTripService(e.db, pricing.NewResolver(nil), builder, e.log).
		WithMetrics(m).
		Rebuild(cmd.Context())
	if err != nil {
		return err
	}

	table := uitable.New()
	table.AddRow("RUN", summary.RunID)
	table.AddRow("CARS ANALYSED", summary.Cars)
	table.AddRow("TRIPS FOUND", summary.Trips)
	table.AddRow("GLITCHES SKIPPED", summary.Glitches)
	table.AddRow("UNTERMINATED", summary.Unterminated)
	fmt.Fprintln(os.Stdout, table)
	return nil
}
